package constants

import "time"

const (
	// DefaultReplayInterval is the pause between successful sends
	DefaultReplayInterval = 10 * time.Second
	// DefaultResponseTimeout bounds the per-send server response read
	DefaultResponseTimeout = 1 * time.Second
)
