package model

import "time"

// WatchlistItem marks passive, client-local interest in a section. It has no
// backend counterpart and no expiry.
type WatchlistItem struct {
	UserID    string    `json:"userId" validate:"required"`
	SectionID string    `json:"sectionId" validate:"required"`
	AddedAt   time.Time `json:"addedAt"`
}

// Notification is an active "notify me" registration. Unlike WatchlistItem it
// has a server-side counterpart and is only considered durable after the
// backend acknowledges it.
type Notification struct {
	UserID    string    `json:"userId" validate:"required"`
	SectionID string    `json:"sectionId" validate:"required"`
	AddedAt   time.Time `json:"addedAt"`
}
