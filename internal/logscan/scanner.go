// Package logscan recovers position reports from the agent's flat CoT
// log so they can be replayed later.
package logscan

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/blox-tak/cot-replay/internal/models"
	"github.com/rs/zerolog"
)

// positionTimeLayout matches the timestamp the log writer emits, with
// the millisecond part captured separately because of the comma.
const positionTimeLayout = "2006-01-02 15:04:05"

// positionPattern matches one logged position report:
// 2025-05-01 10:00:00,000 - INFO - CoT for NAME: lat=12.34, lon=56.78, alt=100.0
var positionPattern = regexp.MustCompile(
	`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}),(\d{3}) - INFO - CoT for .*: lat=(-?\d+\.\d+), lon=(-?\d+\.\d+), alt=(\d+\.\d+)`,
)

// Scanner extracts position records from a flat log file.
type Scanner struct {
	logger zerolog.Logger
}

// NewScanner creates a new Scanner instance.
func NewScanner(logger zerolog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan reads the log file at path and returns, in file order, every
// position whose timestamp falls inside [start, end] inclusive. Lines
// that do not match the position pattern are skipped silently. A
// missing file or a mid-scan read failure aborts the whole scan and
// returns the error; no partial result is returned.
func (s *Scanner) Scan(path string, start, end time.Time) ([]models.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("log file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var positions []models.Position

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		match := positionPattern.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		pos, err := parsePosition(match)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log line: %w", err)
		}

		if pos.Timestamp.Before(start) || pos.Timestamp.After(end) {
			continue
		}
		positions = append(positions, pos)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	s.logger.Debug().
		Str("path", path).
		Int("positions", len(positions)).
		Msg("Scanned log file for positions")

	return positions, nil
}

// parsePosition converts one regex match into a position record,
// keeping the millisecond part of the logged timestamp.
func parsePosition(match []string) (models.Position, error) {
	ts, err := time.Parse(positionTimeLayout, match[1])
	if err != nil {
		return models.Position{}, err
	}

	millis, err := strconv.Atoi(match[2])
	if err != nil {
		return models.Position{}, err
	}
	ts = ts.Add(time.Duration(millis) * time.Millisecond)

	lat, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return models.Position{}, err
	}
	lon, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return models.Position{}, err
	}
	alt, err := strconv.ParseFloat(match[5], 64)
	if err != nil {
		return models.Position{}, err
	}

	return models.Position{
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		Altitude:  alt,
	}, nil
}
