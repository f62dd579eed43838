package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blox-tak/cot-replay/internal/utils"
	"github.com/blox-tak/cot-replay/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
tak:
  host: 192.168.1.17
  port: 8089
  client_certificate: certs/client.pem
  client_key: certs/client.key
  ca_certificate: certs/truststore-root.pem

satellite:
  catalog_id: 6073
  name: COSMOS 482 DESCENT CRAFT

replay:
  log_file: cot.log
  interval: 15s
  response_timeout: 2s

mirror:
  enabled: true
  broker: ssl://broker:8883
  client_id: cot-replay
  topic: cot/replay
  qos: 1

logging:
  file: replay.log
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, fullConfig)

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.17", config.TAK.Host)
	assert.Equal(t, 8089, config.TAK.Port)
	assert.Equal(t, "certs/client.pem", config.TAK.ClientCertificate)
	assert.Equal(t, 6073, config.Satellite.CatalogID)
	assert.Equal(t, "COSMOS 482 DESCENT CRAFT", config.Satellite.Name)
	assert.Equal(t, "cot.log", config.Replay.LogFile)
	assert.Equal(t, 15*time.Second, config.Replay.Interval)
	assert.Equal(t, 2*time.Second, config.Replay.ResponseTimeout)
	assert.True(t, config.Mirror.Enabled)
	assert.Equal(t, "ssl://broker:8883", config.Mirror.Broker)
	assert.Equal(t, "replay.log", config.Logging.File)
}

// TestLoadConfig_Defaults verifies pacing, response timeout and log
// file fall back to their defaults when unset.
func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
tak:
  host: tak.local
  port: 8089
satellite:
  catalog_id: 1
replay:
  log_file: cot.log
`)

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, config.Replay.Interval)
	assert.Equal(t, 1*time.Second, config.Replay.ResponseTimeout)
	assert.Equal(t, "cot_replay.log", config.Logging.File)
	assert.False(t, config.Mirror.Enabled)
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing host",
			yaml:    "tak:\n  port: 8089\nsatellite:\n  catalog_id: 1\nreplay:\n  log_file: cot.log\n",
			wantErr: "tak.host",
		},
		{
			name:    "missing port",
			yaml:    "tak:\n  host: tak.local\nsatellite:\n  catalog_id: 1\nreplay:\n  log_file: cot.log\n",
			wantErr: "tak.port",
		},
		{
			name:    "missing catalog id",
			yaml:    "tak:\n  host: tak.local\n  port: 8089\nreplay:\n  log_file: cot.log\n",
			wantErr: "satellite.catalog_id",
		},
		{
			name:    "missing log file",
			yaml:    "tak:\n  host: tak.local\n  port: 8089\nsatellite:\n  catalog_id: 1\n",
			wantErr: "replay.log_file",
		},
		{
			name:    "mirror enabled without broker",
			yaml:    "tak:\n  host: tak.local\n  port: 8089\nsatellite:\n  catalog_id: 1\nreplay:\n  log_file: cot.log\nmirror:\n  enabled: true\n",
			wantErr: "mirror.broker",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			_, err := utils.LoadConfig(path, file.NewFileService())
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := utils.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), file.NewFileService())
	assert.Error(t, err)
}
