package utils

import (
	"errors"
	"time"

	"github.com/blox-tak/cot-replay/internal/constants"
	"github.com/blox-tak/cot-replay/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	TAK struct {
		Host              string `yaml:"host"`               // TAK server address
		Port              int    `yaml:"port"`               // TAK server TLS port
		ClientCertificate string `yaml:"client_certificate"` // Path to the client certificate (PEM)
		ClientKey         string `yaml:"client_key"`         // Path to the client private key (PEM)
		CACertificate     string `yaml:"ca_certificate"`     // Path to the server trust anchor (PEM)
	} `yaml:"tak"`

	Satellite struct {
		CatalogID int    `yaml:"catalog_id"` // NORAD catalog number, becomes uid SAT.<id>
		Name      string `yaml:"name"`       // Display callsign carried in the detail block
	} `yaml:"satellite"`

	Replay struct {
		LogFile         string        `yaml:"log_file"`         // Path to the position log to replay from
		Interval        time.Duration `yaml:"interval"`         // Pause between successful sends
		ResponseTimeout time.Duration `yaml:"response_timeout"` // Bounded wait for a server response per send
	} `yaml:"replay"`

	Mirror struct {
		Enabled       bool   `yaml:"enabled"`        // Enable/disable the MQTT mirror
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		Topic         string `yaml:"topic"`          // Topic CoT XML documents are mirrored to
		QOS           int    `yaml:"qos"`            // MQTT QoS level for mirrored events
		CACertificate string `yaml:"ca_certificate"` // Optional path to the broker CA certificate
	} `yaml:"mirror"`

	Logging struct {
		File string `yaml:"file"` // Path to the agent's own append-only log file
	} `yaml:"logging"`
}

// LoadConfig loads the YAML configuration from the specified file,
// applies defaults and validates the fields the replay cannot run
// without. It returns a pointer to the Config struct and an error if
// loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	if config.Replay.Interval <= 0 {
		config.Replay.Interval = constants.DefaultReplayInterval
	}
	if config.Replay.ResponseTimeout <= 0 {
		config.Replay.ResponseTimeout = constants.DefaultResponseTimeout
	}
	if config.Logging.File == "" {
		config.Logging.File = "cot_replay.log"
	}

	if config.TAK.Host == "" {
		return nil, errors.New("tak.host is required")
	}
	if config.TAK.Port <= 0 {
		return nil, errors.New("tak.port is required")
	}
	if config.Satellite.CatalogID <= 0 {
		return nil, errors.New("satellite.catalog_id is required")
	}
	if config.Replay.LogFile == "" {
		return nil, errors.New("replay.log_file is required")
	}
	if config.Mirror.Enabled && config.Mirror.Broker == "" {
		return nil, errors.New("mirror.broker is required when the mirror is enabled")
	}

	return &config, nil
}
