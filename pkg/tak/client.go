// Package tak delivers CoT events to a TAK server over mutually
// authenticated TLS, one connection per event.
package tak

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/blox-tak/cot-replay/pkg/cot"
	"github.com/blox-tak/cot-replay/pkg/file"
	"github.com/rs/zerolog"
)

// ErrConnection marks dial, TLS handshake and certificate failures so
// callers can distinguish them from unexpected send errors.
var ErrConnection = errors.New("TAK connection error")

// defaultResponseTimeout bounds the single response read per send.
const defaultResponseTimeout = 1 * time.Second

// Sender delivers one CoT event and returns the XML document that
// went over the wire.
type Sender interface {
	Send(event cot.Event) ([]byte, error)
}

// dialTimeout bounds the TCP connect plus TLS handshake per send.
const dialTimeout = 10 * time.Second

// ClientConfig holds the server address and certificate material paths.
type ClientConfig struct {
	Host            string
	Port            int
	ClientCert      string
	ClientKey       string
	CACert          string
	ResponseTimeout time.Duration
}

// Client sends CoT events to a single TAK server. Each Send opens,
// uses and closes its own connection; nothing is shared across calls.
type Client struct {
	config    ClientConfig
	tlsConfig *tls.Config
	logger    zerolog.Logger
}

// NewClient loads the client keypair and trust anchor and returns a
// ready Client. Unreadable or invalid PEM material is a configuration
// error and fails construction, before any network activity.
func NewClient(config ClientConfig, fileOps file.FileOperations, logger zerolog.Logger) (*Client, error) {
	certPEM, err := fileOps.ReadFileRaw(config.ClientCert)
	if err != nil {
		return nil, fmt.Errorf("failed to read client certificate: %w", err)
	}
	keyPEM, err := fileOps.ReadFileRaw(config.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read client key: %w", err)
	}
	keyPair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load client keypair: %w", err)
	}

	caCert, err := fileOps.ReadFileRaw(config.CACert)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to append CA certificate from %s", config.CACert)
	}

	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = defaultResponseTimeout
	}

	return &Client{
		config: config,
		tlsConfig: &tls.Config{
			Certificates: []tls.Certificate{keyPair},
			RootCAs:      caCertPool,
			ServerName:   config.Host,
		},
		logger: logger,
	}, nil
}

// Send delivers event to the TAK server over a fresh TLS connection.
// One bounded read is attempted for a server response; a read timeout
// is not an error and is logged as "no response". The connection is
// closed on every path. The returned bytes are the XML document that
// was written.
func (c *Client) Send(event cot.Event) ([]byte, error) {
	payload, err := event.Marshal()
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.Port))
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: dialTimeout}, "tcp", addr, c.tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to send CoT event: %w", err)
	}

	c.logger.Info().
		Str("uid", event.UID).
		Str("callsign", event.Detail.Contact.Callsign).
		Float64("lat", event.Point.Lat).
		Float64("lon", event.Point.Lon).
		Float64("alt", event.Point.Hae).
		Str("time", event.Time).
		Msg("Sent CoT position")

	if err := c.readResponse(conn, addr); err != nil {
		return nil, err
	}
	return payload, nil
}

// readResponse performs the single bounded response read. A timeout
// means the server chose not to answer and is logged as "no
// response"; any other read failure is an unexpected error.
func (c *Client) readResponse(conn net.Conn, addr string) error {
	if err := conn.SetReadDeadline(time.Now().Add(c.config.ResponseTimeout)); err != nil {
		return fmt.Errorf("failed to set response read deadline: %w", err)
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			c.logger.Info().Str("server", addr).Msg("Sent SSL CoT, no response")
			return nil
		case errors.Is(err, io.EOF):
			// server accepted the event and hung up without answering
			c.logger.Info().Str("server", addr).Msg("Sent SSL CoT, connection closed by server")
			return nil
		default:
			return fmt.Errorf("failed to read server response: %w", err)
		}
	}

	c.logger.Info().
		Str("server", addr).
		Str("response", string(buf[:n])).
		Msg("Sent SSL CoT, server responded")
	return nil
}
