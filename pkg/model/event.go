package model

import "time"

// EventType tags a server-pushed stream event.
type EventType string

const (
	EventSeatOpen    EventType = "seat_open"
	EventHoldTaken   EventType = "hold_taken"
	EventHoldExpired EventType = "hold_expired"
)

// Known reports whether the type is one the client understands.
func (t EventType) Known() bool {
	switch t {
	case EventSeatOpen, EventHoldTaken, EventHoldExpired:
		return true
	}
	return false
}

// StreamEvent is the sole channel through which server state changes become
// visible without polling.
type StreamEvent struct {
	EventType EventType      `json:"eventType" validate:"required,oneof=seat_open hold_taken hold_expired"`
	SectionID string         `json:"sectionId" validate:"required"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// SeatCount extracts the available-seat count from a seat_open payload,
// tolerating both key spellings and JSON's float64 numbers.
func (e StreamEvent) SeatCount() (int, bool) {
	for _, key := range []string{"availableSeats", "available_seats"} {
		v, ok := e.Data[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n >= 0 {
				return int(n), true
			}
		case int:
			if n >= 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// HolderID extracts the claiming user from a hold_taken payload, if present.
func (e StreamEvent) HolderID() (string, bool) {
	for _, key := range []string{"userId", "user_id"} {
		if v, ok := e.Data[key]; ok {
			if id, ok := v.(string); ok && id != "" {
				return id, true
			}
		}
	}
	return "", false
}
