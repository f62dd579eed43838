package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blox-tak/cot-replay/internal/logscan"
	"github.com/blox-tak/cot-replay/internal/services"
	"github.com/blox-tak/cot-replay/internal/utils"
	"github.com/blox-tak/cot-replay/pkg/file"
	"github.com/blox-tak/cot-replay/pkg/mirror"
	"github.com/blox-tak/cot-replay/pkg/tak"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// promptTimeLayout is the form the user enters the window in.
const promptTimeLayout = "2006-01-02 15:04:05"

func main() {
	// Console-only logging until the configuration tells us where the
	// persistent log file lives
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log := zerolog.New(console).With().Timestamp().Logger()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	// Every log entry also lands in the append-only replay log
	logFile, err := os.OpenFile(config.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.Logging.File).Msg("Failed to open log file")
	}
	defer logFile.Close()

	// Tag every entry of this run with a unique replay ID
	runID := uuid.New().String()
	log = zerolog.New(zerolog.MultiLevelWriter(console, logFile)).
		With().Timestamp().Str("run_id", runID).Logger()

	start, end, err := promptTimeWindow(os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date format")
	}
	if !start.Before(end) {
		log.Fatal().Msg("Start time must be before end time")
	}

	// Initialize the CoT sender; certificate problems surface here,
	// before any network activity
	takClient, err := tak.NewClient(tak.ClientConfig{
		Host:            config.TAK.Host,
		Port:            config.TAK.Port,
		ClientCert:      config.TAK.ClientCertificate,
		ClientKey:       config.TAK.ClientKey,
		CACert:          config.TAK.CACertificate,
		ResponseTimeout: config.Replay.ResponseTimeout,
	}, fileClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize TAK client")
	}

	// Optional MQTT mirror for downstream CoT consumers
	var mirrorPub mirror.Publisher
	if config.Mirror.Enabled {
		clientID := config.Mirror.ClientID + "-" + runID
		m, err := mirror.NewMqttMirror(config.Mirror.Broker, clientID, config.Mirror.Topic,
			byte(config.Mirror.QOS), config.Mirror.CACertificate, fileClient, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize CoT mirror")
		}
		defer m.Disconnect(250)
		mirrorPub = m
	}

	replay := services.NewReplayService(
		config.Replay.LogFile,
		config.Replay.Interval,
		config.Satellite.CatalogID,
		config.Satellite.Name,
		logscan.NewScanner(log),
		takClient,
		mirrorPub,
		clockwork.NewRealClock(),
		log,
	)

	if _, err := replay.Run(start, end); err != nil {
		// already logged with context; terminate gracefully
		os.Exit(1)
	}
}

// promptTimeWindow interactively reads the replay window from in.
func promptTimeWindow(in *os.File) (time.Time, time.Time, error) {
	fmt.Println("Enter the time range for replaying CoT messages (format: YYYY-MM-DD HH:MM:SS)")
	reader := bufio.NewReader(in)

	start, err := promptTime(reader, "Start time: ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := promptTime(reader, "End time: ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func promptTime(reader *bufio.Reader, label string) (time.Time, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(promptTimeLayout, strings.TrimSpace(line))
}
