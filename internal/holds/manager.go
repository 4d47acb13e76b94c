// Package holds enforces the one-active-hold-per-section rule locally and
// keeps countdowns accurate against the wall clock.
package holds

import (
	"context"
	"sync"
	"time"

	"seatwatch/internal/store"
	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

// API is the optional backend mirror for claims and releases. The client is
// optimistic either way; mirror failures are logged, not rolled back, because
// the server reconciles through the stream.
type API interface {
	CreateHold(ctx context.Context, userID, sectionID string) (model.Hold, error)
	DeleteHold(ctx context.Context, userID, sectionID string) error
}

type Manager struct {
	store *store.Store
	api   API
	log   *logger.Logger
	ttl   time.Duration
	tick  time.Duration
	now   func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a manager. api may be nil for a purely local (offline) client.
func New(st *store.Store, api API, ttl, tick time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		store: st,
		api:   api,
		log:   log.Component("holds"),
		ttl:   ttl,
		tick:  tick,
		now:   time.Now,
	}
}

// Claim places a hold on the section for the signed-in user. Idempotent while
// an active hold exists. Seat-count enforcement is the server's job; the
// caller is expected to have filtered for availability.
func (m *Manager) Claim(ctx context.Context, sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("claiming a hold")
	}

	now := m.now()
	if h, ok := m.store.Hold(u.ID, sectionID); ok && h.Active(now) {
		return nil
	}

	h := model.Hold{
		UserID:    u.ID,
		SectionID: sectionID,
		ClaimedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.store.PutHold(h)
	m.log.Info("Hold claimed",
		"section_id", sectionID,
		"expires_at", h.ExpiresAt,
	)

	if m.api != nil {
		m.mirror(ctx, "create", func(mctx context.Context) error {
			_, err := m.api.CreateHold(mctx, u.ID, sectionID)
			if apperrors.HasCode(err, apperrors.CodeConflict) {
				// The server already has a live hold for this pair.
				return nil
			}
			return err
		})
	}
	return nil
}

// Release removes the user's hold on the section. Idempotent on a
// non-existent hold, with no mirror call in that case.
func (m *Manager) Release(ctx context.Context, sectionID string) error {
	u := m.store.User()
	if u == nil {
		return apperrors.Unauthenticated("releasing a hold")
	}

	if !m.store.RemoveHold(u.ID, sectionID) {
		return nil
	}
	m.log.Info("Hold released", "section_id", sectionID)

	if m.api != nil {
		m.mirror(ctx, "delete", func(mctx context.Context) error {
			return m.api.DeleteHold(mctx, u.ID, sectionID)
		})
	}
	return nil
}

// mirror runs a backend call in the background, detached from the UI action's
// cancellation but still bounded.
func (m *Manager) mirror(ctx context.Context, op string, call func(context.Context) error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := call(mctx); err != nil {
			m.log.Warn("Hold mirror call failed", "op", op, "error", err)
		}
	}()
}

// Remaining is the countdown for the user's hold on the section, zero when
// there is none.
func (m *Manager) Remaining(sectionID string) time.Duration {
	u := m.store.User()
	if u == nil {
		return 0
	}
	h, ok := m.store.Hold(u.ID, sectionID)
	if !ok {
		return 0
	}
	return h.Remaining(m.now())
}

// Start launches the expiry loop. No-op when already running; Stop makes it
// restartable. The loop reads the wall clock every tick rather than counting
// ticks, so it stays correct when the process is suspended.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.tick)
		defer t.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-t.C:
				m.expireDue(m.now())
			}
		}
	}()
}

// Stop cancels the expiry loop and waits for in-flight work.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// expireDue removes every hold whose countdown has reached zero.
func (m *Manager) expireDue(now time.Time) int {
	expired := 0
	for _, h := range m.store.Holds() {
		if h.Active(now) {
			continue
		}
		if m.store.RemoveHold(h.UserID, h.SectionID) {
			expired++
			m.log.Info("Hold expired locally",
				"section_id", h.SectionID,
				"claimed_at", h.ClaimedAt,
			)
		}
	}
	return expired
}

// HandleEvent reconciles local hold state against a server-pushed event.
// A server-confirmed expiry wins immediately over the local timer.
func (m *Manager) HandleEvent(ev model.StreamEvent) {
	switch ev.EventType {
	case model.EventHoldExpired:
		u := m.store.User()
		if u == nil {
			return
		}
		if m.store.RemoveHold(u.ID, ev.SectionID) {
			m.log.Info("Hold expired by server", "section_id", ev.SectionID)
		}
	case model.EventHoldTaken:
		// Informational: the seat is now contended. A hold belonging to the
		// current user stands until released or expired.
		if holder, ok := ev.HolderID(); ok {
			m.log.Debug("Seat held elsewhere",
				"section_id", ev.SectionID,
				"holder", holder,
			)
		}
	case model.EventSeatOpen:
		// Seat counts are catalog state; holds are unaffected.
		m.store.ApplySeatOpen(ev)
	}
}
