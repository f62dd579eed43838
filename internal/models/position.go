package models

import (
	"time"
)

// Position represents a single logged position report recovered from
// the flat CoT log
type Position struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
}

// ReplaySummary captures the outcome of one replay run
type ReplaySummary struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
