package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// The backend emits snake_case field names while older payloads and fixtures
// use camelCase. Decoding accepts exactly those two spellings per field and
// nothing else: a payload missing a required field under both spellings is a
// typed DecodeError, never a silently defaulted struct.

// DecodeError reports everything wrong with a payload at once.
type DecodeError struct {
	Entity   string
	Problems []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %s", e.Entity, strings.Join(e.Problems, "; "))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	// Naive datetimes (no zone) come from the backend's local clock and are
	// read as UTC.
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp accepts RFC3339 timestamps with or without a zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

type objectDecoder struct {
	entity   string
	fields   map[string]json.RawMessage
	problems []string
}

func newObjectDecoder(entity string, data []byte) (*objectDecoder, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Entity: entity, Problems: []string{"not a JSON object: " + err.Error()}}
	}
	return &objectDecoder{entity: entity, fields: fields}, nil
}

func (d *objectDecoder) problem(format string, args ...any) {
	d.problems = append(d.problems, fmt.Sprintf(format, args...))
}

// pick returns the raw value under the first present, non-null key spelling.
func (d *objectDecoder) pick(required bool, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if v, ok := d.fields[key]; ok && string(v) != "null" {
			return v, true
		}
	}
	if required {
		d.problem("missing required field %q", keys[0])
	}
	return nil, false
}

func (d *objectDecoder) str(required bool, keys ...string) string {
	raw, ok := d.pick(required, keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.problem("field %q is not a string", keys[0])
		return ""
	}
	return s
}

func (d *objectDecoder) strs(required bool, keys ...string) []string {
	raw, ok := d.pick(required, keys...)
	if !ok {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		d.problem("field %q is not a string array", keys[0])
		return nil
	}
	return out
}

func (d *objectDecoder) integer(required bool, keys ...string) int {
	raw, ok := d.pick(required, keys...)
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		d.problem("field %q is not an integer", keys[0])
		return 0
	}
	return n
}

func (d *objectDecoder) timestamp(required bool, keys ...string) time.Time {
	s := d.str(required, keys...)
	if s == "" {
		return time.Time{}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		d.problem("field %q: %v", keys[0], err)
		return time.Time{}
	}
	return t
}

func (d *objectDecoder) anyMap(required bool, keys ...string) map[string]any {
	raw, ok := d.pick(required, keys...)
	if !ok {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		d.problem("field %q is not an object", keys[0])
		return nil
	}
	return m
}

func (d *objectDecoder) err() error {
	if len(d.problems) > 0 {
		return &DecodeError{Entity: d.entity, Problems: d.problems}
	}
	return nil
}

// DecodeSection parses one section record and validates its invariants.
func DecodeSection(data []byte) (Section, error) {
	d, err := newObjectDecoder("section", data)
	if err != nil {
		return Section{}, err
	}

	s := Section{
		ID:              d.str(true, "id"),
		CourseID:        d.str(true, "course_id", "courseId"),
		Title:           d.str(true, "title"),
		Instructor:      d.str(false, "instructor"),
		TimeSlot:        d.str(false, "time_slot", "timeSlot"),
		Days:            d.strs(false, "days"),
		AvailableSeats:  d.integer(true, "available_seats", "availableSeats"),
		TotalCapacity:   d.integer(true, "total_capacity", "totalCapacity"),
		EnrollmentTotal: d.integer(false, "enrollment_total", "enrollmentTotal"),
		Location:        d.str(false, "location"),
		LastUpdated:     d.timestamp(false, "last_updated", "lastUpdated"),
	}
	if err := d.err(); err != nil {
		return Section{}, err
	}
	if err := Validate(s); err != nil {
		return Section{}, &DecodeError{Entity: "section", Problems: []string{err.Error()}}
	}
	return s, nil
}

// DecodeSections parses a listing response.
func DecodeSections(data []byte) ([]Section, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &DecodeError{Entity: "sections", Problems: []string{"not a JSON array: " + err.Error()}}
	}
	sections := make([]Section, 0, len(items))
	for i, item := range items {
		s, err := DecodeSection(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// DecodeHold parses one hold record.
func DecodeHold(data []byte) (Hold, error) {
	d, err := newObjectDecoder("hold", data)
	if err != nil {
		return Hold{}, err
	}

	h := Hold{
		UserID:    d.str(true, "user_id", "userId"),
		SectionID: d.str(true, "section_id", "sectionId"),
		ClaimedAt: d.timestamp(true, "claimed_at", "claimedAt"),
		ExpiresAt: d.timestamp(true, "expires_at", "expiresAt"),
	}
	if err := d.err(); err != nil {
		return Hold{}, err
	}
	if err := Validate(h); err != nil {
		return Hold{}, &DecodeError{Entity: "hold", Problems: []string{err.Error()}}
	}
	return h, nil
}

// DecodeNotification parses one registration record.
func DecodeNotification(data []byte) (Notification, error) {
	d, err := newObjectDecoder("notification", data)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		UserID:    d.str(true, "user_id", "userId"),
		SectionID: d.str(true, "section_id", "sectionId"),
		AddedAt:   d.timestamp(false, "added_at", "addedAt"),
	}
	if err := d.err(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// DecodeStreamEvent parses a pushed event payload.
func DecodeStreamEvent(data []byte) (StreamEvent, error) {
	d, err := newObjectDecoder("stream event", data)
	if err != nil {
		return StreamEvent{}, err
	}

	e := StreamEvent{
		EventType: EventType(d.str(true, "event_type", "eventType")),
		SectionID: d.str(true, "section_id", "sectionId"),
		Data:      d.anyMap(false, "data"),
		Timestamp: d.timestamp(false, "timestamp"),
	}
	if err := d.err(); err != nil {
		return StreamEvent{}, err
	}
	if !e.EventType.Known() {
		return StreamEvent{}, &DecodeError{
			Entity:   "stream event",
			Problems: []string{fmt.Sprintf("unknown event type %q", e.EventType)},
		}
	}
	return e, nil
}
