package model

import "time"

// Hold is a time-boxed, user-scoped claim of intent to enroll in a section's
// seat. At most one active hold exists per (user, section) pair.
type Hold struct {
	UserID    string    `json:"userId" validate:"required"`
	SectionID string    `json:"sectionId" validate:"required"`
	ClaimedAt time.Time `json:"claimedAt" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required,gtfield=ClaimedAt"`
}

// Active reports whether the hold has not yet expired at the given instant.
func (h Hold) Active(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}

// Remaining is the time left before expiry, floored at zero.
func (h Hold) Remaining(now time.Time) time.Duration {
	r := h.ExpiresAt.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}
