// Package cot models Cursor-on-Target 2.0 events and serializes them
// to the XML documents a TAK server ingests. The field set is the
// wire contract: every attribute below is emitted on every event.
package cot

import (
	"encoding/xml"
	"fmt"
	"time"
)

// TimeFormat is the ISO 8601 UTC layout CoT timestamps are rendered in.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Protocol codes emitted for replayed satellite positions
const (
	// Version is the CoT schema version carried on every event
	Version = "2.0"
	// TypeSpaceAsset identifies a neutral unmanned space-domain asset
	TypeSpaceAsset = "a-n-G-U-U-S-R-S"
	// AccessUndefined is the access level carried on every event
	AccessUndefined = "Undefined"
	// HowMachineGPS marks the position as machine-derived GPS data
	HowMachineGPS = "m-g"
	// QoSCode is the fixed quality-of-service code for replayed events
	QoSCode = "2-i-c"
)

const (
	// ErrorUnknown is the sentinel circular/linear error value for
	// positions with no error estimate
	ErrorUnknown = 9999999

	// StaleWindow is how long past its start time an event stays valid
	StaleWindow = 5 * time.Minute
)

// Event is a CoT 2.0 event document.
type Event struct {
	XMLName xml.Name `xml:"event"`
	Version string   `xml:"version,attr"`
	Type    string   `xml:"type,attr"`
	Access  string   `xml:"access,attr"`
	UID     string   `xml:"uid,attr"`
	Time    string   `xml:"time,attr"`
	Start   string   `xml:"start,attr"`
	Stale   string   `xml:"stale,attr"`
	How     string   `xml:"how,attr"`
	QoS     string   `xml:"qos,attr"`
	Point   Point    `xml:"point"`
	Detail  Detail   `xml:"detail"`
}

// Point carries the position: lat/lon in decimal degrees, hae in
// meters above the ellipsoid, ce/le circular and linear error in
// meters (9999999 means unknown).
type Point struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
	Hae float64 `xml:"hae,attr"`
	// ce/le are whole meters; keeping them integral avoids the
	// scientific notation Go would use for the 9999999 sentinel
	Ce int `xml:"ce,attr"`
	Le int `xml:"le,attr"`
}

// Detail holds the event's free-form detail block.
type Detail struct {
	Contact Contact `xml:"contact"`
}

// Contact carries the display callsign shown on TAK clients.
type Contact struct {
	Callsign string `xml:"callsign,attr"`
}

// NewSatelliteEvent builds the CoT event for one replayed satellite
// position. The uid is SAT.<catalogID> and the stale time is always
// exactly the stale window past the position's timestamp.
func NewSatelliteEvent(catalogID int, callsign string, lat, lon, alt float64, at time.Time) Event {
	ts := at.UTC()
	return Event{
		Version: Version,
		Type:    TypeSpaceAsset,
		Access:  AccessUndefined,
		UID:     fmt.Sprintf("SAT.%d", catalogID),
		Time:    ts.Format(TimeFormat),
		Start:   ts.Format(TimeFormat),
		Stale:   ts.Add(StaleWindow).Format(TimeFormat),
		How:     HowMachineGPS,
		QoS:     QoSCode,
		Point: Point{
			Lat: lat,
			Lon: lon,
			Hae: alt,
			Ce:  ErrorUnknown,
			Le:  ErrorUnknown,
		},
		Detail: Detail{
			Contact: Contact{Callsign: callsign},
		},
	}
}

// Marshal renders the event as a standalone UTF-8 XML document.
func (e Event) Marshal() ([]byte, error) {
	body, err := xml.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CoT event: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
