package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeSection_SnakeCase(t *testing.T) {
	payload := `{
		"id": "1",
		"course_id": "CS101",
		"title": "CS101 - Section A",
		"instructor": "Dr. Smith",
		"time_slot": "9:00 AM - 10:30 AM",
		"days": ["Monday", "Wednesday", "Friday"],
		"available_seats": 5,
		"total_capacity": 30,
		"location": "Room 101",
		"last_updated": "2026-08-30T09:00:00Z"
	}`

	s, err := DecodeSection([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CourseID != "CS101" {
		t.Errorf("expected courseId CS101, got %s", s.CourseID)
	}
	if s.AvailableSeats != 5 || s.TotalCapacity != 30 {
		t.Errorf("unexpected seat counts: %d/%d", s.AvailableSeats, s.TotalCapacity)
	}
	if len(s.Days) != 3 || s.Days[0] != "Monday" {
		t.Errorf("unexpected days: %v", s.Days)
	}
	if s.LastUpdated.IsZero() {
		t.Errorf("expected lastUpdated to be parsed")
	}
}

func TestDecodeSection_CamelCase(t *testing.T) {
	payload := `{
		"id": "2",
		"courseId": "CS101",
		"title": "CS101 - Section B",
		"availableSeats": 0,
		"totalCapacity": 25
	}`

	s, err := DecodeSection([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CourseID != "CS101" {
		t.Errorf("expected courseId CS101, got %s", s.CourseID)
	}
	if !s.Full() {
		t.Errorf("section with zero seats should report Full")
	}
}

func TestDecodeSection_Failures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantIn  string
	}{
		{
			name:    "missing required fields",
			payload: `{"id": "3", "title": "orphan"}`,
			wantIn:  `missing required field "course_id"`,
		},
		{
			name:    "wrong field type",
			payload: `{"id": "3", "course_id": "CS101", "title": "x", "available_seats": "five", "total_capacity": 30}`,
			wantIn:  `field "available_seats" is not an integer`,
		},
		{
			name:    "seats exceed capacity",
			payload: `{"id": "3", "course_id": "CS101", "title": "x", "available_seats": 40, "total_capacity": 30}`,
			wantIn:  "AvailableSeats",
		},
		{
			name:    "zero capacity",
			payload: `{"id": "3", "course_id": "CS101", "title": "x", "available_seats": 0, "total_capacity": 0}`,
			wantIn:  "TotalCapacity",
		},
		{
			name:    "not an object",
			payload: `[1, 2, 3]`,
			wantIn:  "not a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSection([]byte(tt.payload))
			if err == nil {
				t.Fatalf("expected decode to fail")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantIn)
			}
		})
	}
}

func TestDecodeSections(t *testing.T) {
	payload := `[
		{"id": "1", "course_id": "CS101", "title": "A", "available_seats": 1, "total_capacity": 10},
		{"id": "2", "courseId": "CS101", "title": "B", "availableSeats": 2, "totalCapacity": 10}
	]`

	sections, err := DecodeSections([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	bad := `[{"id": "1", "title": "no course"}]`
	if _, err := DecodeSections([]byte(bad)); err == nil {
		t.Errorf("expected a bad item to fail the whole listing")
	}
}

func TestDecodeHold(t *testing.T) {
	payload := `{
		"user_id": "u1",
		"section_id": "CS101-A",
		"claimed_at": "2026-08-30T10:00:00Z",
		"expires_at": "2026-08-30T10:02:00Z"
	}`

	h, err := DecodeHold([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.ExpiresAt.Sub(h.ClaimedAt) != 2*time.Minute {
		t.Errorf("expected a 2 minute window, got %s", h.ExpiresAt.Sub(h.ClaimedAt))
	}

	inverted := `{
		"user_id": "u1",
		"section_id": "CS101-A",
		"claimed_at": "2026-08-30T10:02:00Z",
		"expires_at": "2026-08-30T10:00:00Z"
	}`
	if _, err := DecodeHold([]byte(inverted)); err == nil {
		t.Errorf("expected expiry before claim to fail validation")
	}
}

func TestDecodeStreamEvent(t *testing.T) {
	payload := `{
		"event_type": "seat_open",
		"section_id": "CS101-B",
		"data": {"available_seats": 3},
		"timestamp": "2026-08-30T10:00:00.123456"
	}`

	e, err := DecodeStreamEvent([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.EventType != EventSeatOpen {
		t.Errorf("expected seat_open, got %s", e.EventType)
	}
	seats, ok := e.SeatCount()
	if !ok || seats != 3 {
		t.Errorf("expected seat count 3, got %d (ok=%v)", seats, ok)
	}
	if e.Timestamp.IsZero() {
		t.Errorf("expected naive timestamp to be parsed")
	}
}

func TestDecodeStreamEvent_UnknownType(t *testing.T) {
	payload := `{"event_type": "heartbeat", "section_id": "x"}`
	if _, err := DecodeStreamEvent([]byte(payload)); err == nil {
		t.Errorf("expected unknown event type to be rejected")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339", "2026-08-30T10:00:00Z", true},
		{"rfc3339 fractional", "2026-08-30T10:00:00.123456789Z", true},
		{"naive", "2026-08-30T10:00:00", true},
		{"naive fractional", "2026-08-30T10:00:00.123456", true},
		{"garbage", "yesterday", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp(tt.input)
			if (err == nil) != tt.ok {
				t.Errorf("ParseTimestamp(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}

func TestHoldActiveAndRemaining(t *testing.T) {
	claimed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	h := Hold{
		UserID:    "u1",
		SectionID: "CS101-A",
		ClaimedAt: claimed,
		ExpiresAt: claimed.Add(2 * time.Minute),
	}

	if !h.Active(claimed.Add(90 * time.Second)) {
		t.Errorf("hold should be active 90s in")
	}
	if h.Active(claimed.Add(2 * time.Minute)) {
		t.Errorf("hold should be inactive exactly at expiry")
	}
	if got := h.Remaining(claimed.Add(30 * time.Second)); got != 90*time.Second {
		t.Errorf("expected 90s remaining, got %s", got)
	}
	if got := h.Remaining(claimed.Add(3 * time.Minute)); got != 0 {
		t.Errorf("remaining should floor at zero, got %s", got)
	}
}
