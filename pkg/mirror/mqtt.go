// Package mirror republishes sent CoT events to an MQTT topic so
// downstream consumers (gateway bridges, dashboards) can follow a
// replay without a TAK server connection.
package mirror

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/blox-tak/cot-replay/pkg/file"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Publisher mirrors one CoT XML document per successful send.
type Publisher interface {
	Publish(payload []byte) error
	Disconnect(quiesce uint)
}

// MqttMirror publishes CoT XML documents to a single MQTT topic.
type MqttMirror struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger zerolog.Logger
}

// NewMqttMirror connects to the broker and returns a ready mirror.
// An unreachable broker fails construction; mirroring is optional, so
// the caller decides whether that aborts the run.
func NewMqttMirror(broker, clientID, topic string, qos byte, caCertPath string,
	fileOps file.FileOperations, logger zerolog.Logger) (*MqttMirror, error) {

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	if caCertPath != "" {
		caCert, err := fileOps.ReadFileRaw(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read mirror CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to append mirror CA certificate")
		}
		opts.SetTLSConfig(&tls.Config{RootCAs: caCertPool})
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mirror broker: %w", token.Error())
	}

	logger.Info().
		Str("broker", broker).
		Str("topic", topic).
		Msg("CoT mirror connected")

	return &MqttMirror{
		client: client,
		topic:  topic,
		qos:    qos,
		logger: logger,
	}, nil
}

// Publish mirrors one CoT XML document to the configured topic.
func (m *MqttMirror) Publish(payload []byte) error {
	token := m.client.Publish(m.topic, m.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to mirror topic: %w", token.Error())
	}
	return nil
}

// Disconnect gracefully disconnects from the broker.
func (m *MqttMirror) Disconnect(quiesce uint) {
	m.client.Disconnect(quiesce)
}
