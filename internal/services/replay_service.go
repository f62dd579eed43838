package services

import (
	"errors"
	"time"

	"github.com/blox-tak/cot-replay/internal/models"
	"github.com/blox-tak/cot-replay/pkg/cot"
	"github.com/blox-tak/cot-replay/pkg/mirror"
	"github.com/blox-tak/cot-replay/pkg/tak"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// PositionScanner recovers position records from a flat log file.
type PositionScanner interface {
	Scan(path string, start, end time.Time) ([]models.Position, error)
}

// ReplayService replays logged positions as CoT events: scan the log
// for the requested window, then send each record in file order with
// a fixed pause between successful sends.
type ReplayService struct {
	// Configuration fields
	logFile       string
	interval      time.Duration
	satelliteID   int
	satelliteName string

	// Dependencies
	scanner PositionScanner
	sender  tak.Sender
	mirror  mirror.Publisher
	clock   clockwork.Clock
	logger  zerolog.Logger
}

// NewReplayService creates a new ReplayService instance with the
// provided configuration. The mirror may be nil; mirroring is then
// skipped entirely.
func NewReplayService(logFile string, interval time.Duration, satelliteID int, satelliteName string,
	scanner PositionScanner, sender tak.Sender, mirrorPub mirror.Publisher, clock clockwork.Clock,
	logger zerolog.Logger) *ReplayService {
	return &ReplayService{
		logFile:       logFile,
		interval:      interval,
		satelliteID:   satelliteID,
		satelliteName: satelliteName,
		scanner:       scanner,
		sender:        sender,
		mirror:        mirrorPub,
		clock:         clock,
		logger:        logger,
	}
}

// Run executes one replay over [start, end]. Scan failures and an
// empty window abort before any network activity. Send failures are
// logged and skipped; they never abort the loop and never trigger the
// inter-send pause. The returned summary reflects what was attempted.
func (r *ReplayService) Run(start, end time.Time) (models.ReplaySummary, error) {
	var summary models.ReplaySummary

	if !start.Before(end) {
		r.logger.Error().Msg("Start time is not before end time")
		return summary, errors.New("start time must be before end time")
	}

	positions, err := r.scanner.Scan(r.logFile, start, end)
	if err != nil {
		// a failed scan replays nothing; the run ends here
		r.logger.Error().Err(err).Str("log_file", r.logFile).Msg("Error parsing log file")
		return summary, err
	}
	if len(positions) == 0 {
		r.logger.Info().
			Time("start", start).
			Time("end", end).
			Msg("No positions found for the specified time range")
		return summary, nil
	}

	r.logger.Info().Int("count", len(positions)).Msg("Found positions to replay")

	for _, pos := range positions {
		summary.Attempted++

		// the event is built per send so the stale time reflects the
		// stale window from this position, not from scan time
		event := cot.NewSatelliteEvent(r.satelliteID, r.satelliteName,
			pos.Latitude, pos.Longitude, pos.Altitude, pos.Timestamp)

		payload, err := r.sender.Send(event)
		if err != nil {
			summary.Failed++
			if errors.Is(err, tak.ErrConnection) {
				r.logger.Error().Err(err).Msg("SSL connection error to TAK server")
			} else {
				r.logger.Error().Err(err).Msg("Unexpected error sending CoT")
			}
			r.logger.Error().Msg("Failed to send CoT, continuing to next position")
			continue
		}
		summary.Sent++

		r.mirrorEvent(payload)
		r.clock.Sleep(r.interval)
	}

	r.logger.Info().
		Int("attempted", summary.Attempted).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Msg("Replay finished")

	return summary, nil
}

// mirrorEvent republishes a sent event to the MQTT mirror. Mirror
// failures are warnings only and never affect the replay outcome.
func (r *ReplayService) mirrorEvent(payload []byte) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.Publish(payload); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to mirror CoT event")
	}
}
