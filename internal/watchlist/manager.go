// Package watchlist tracks two independent kinds of interest in a section:
// passive watches, which are purely client-local, and notification
// registrations, which exist server-side and are only committed locally after
// the backend acknowledges them.
package watchlist

import (
	"context"
	"time"

	"seatwatch/internal/store"
	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

// API is the backend registration surface for notifications.
type API interface {
	RegisterNotification(ctx context.Context, userID, sectionID, email string) (model.Notification, error)
	UnregisterNotification(ctx context.Context, userID, sectionID string) error
	Notifications(ctx context.Context, userID string) ([]model.Notification, error)
}

type Manager struct {
	store *store.Store
	api   API
	email string
	log   *logger.Logger
	now   func() time.Time
}

func New(st *store.Store, api API, email string, log *logger.Logger) *Manager {
	return &Manager{
		store: st,
		api:   api,
		email: email,
		log:   log.Component("watchlist"),
		now:   time.Now,
	}
}

// AddWatch marks a section as watched. Local only, idempotent. Watchlist
// state does not survive a reload: there is no backend contract for it.
func (m *Manager) AddWatch(sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("adding to watchlist")
	}
	if m.store.Watching(u.ID, sectionID) {
		return nil
	}
	m.store.PutWatch(model.WatchlistItem{
		UserID:    u.ID,
		SectionID: sectionID,
		AddedAt:   m.now(),
	})
	return nil
}

// RemoveWatch unmarks a watched section. Idempotent.
func (m *Manager) RemoveWatch(sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("removing from watchlist")
	}
	m.store.RemoveWatch(u.ID, sectionID)
	return nil
}

// EnableNotification registers a seat-open alert with the backend and commits
// the local marker only on success. Already-enabled is a no-op with no
// network call.
func (m *Manager) EnableNotification(ctx context.Context, sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("enabling a notification")
	}
	if m.store.Notifying(u.ID, sectionID) {
		return nil
	}

	n, err := m.api.RegisterNotification(ctx, u.ID, sectionID, m.email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			// The server already has this registration; adopt it locally.
			m.store.PutNotification(model.Notification{
				UserID:    u.ID,
				SectionID: sectionID,
				AddedAt:   m.now(),
			})
			return nil
		}
		m.log.Warn("Notification registration failed",
			"section_id", sectionID,
			"error", err,
		)
		return err
	}

	m.store.PutNotification(n)
	m.log.Info("Notification enabled", "section_id", sectionID)
	return nil
}

// DisableNotification unregisters server-side and removes the local marker
// only after success. Already-disabled is a no-op with no network call.
func (m *Manager) DisableNotification(ctx context.Context, sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("disabling a notification")
	}
	if !m.store.Notifying(u.ID, sectionID) {
		return nil
	}

	if err := m.api.UnregisterNotification(ctx, u.ID, sectionID); err != nil {
		m.log.Warn("Notification unregistration failed",
			"section_id", sectionID,
			"error", err,
		)
		return err
	}

	m.store.RemoveNotification(u.ID, sectionID)
	m.log.Info("Notification disabled", "section_id", sectionID)
	return nil
}

// RefreshNotifications replaces local markers with the server's confirmed
// registrations, e.g. after sign-in.
func (m *Manager) RefreshNotifications(ctx context.Context) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("refreshing notifications")
	}

	items, err := m.api.Notifications(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, n := range items {
		m.store.PutNotification(n)
	}
	return nil
}
