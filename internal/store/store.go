// Package store is the single mutable container for client state. It is
// constructor-injected rather than a process-wide singleton, so tests and
// embedders can run isolated instances. All mutation goes through its
// methods; other components never reach into each other's state.
package store

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

// pairKey identifies user-scoped, per-section state.
type pairKey struct {
	userID    string
	sectionID string
}

type intelKey struct {
	course string
	term   string
}

type Store struct {
	log *logger.Logger

	mu            sync.RWMutex
	user          *model.User
	sections      map[string]model.Section
	holds         map[pairKey]model.Hold
	watchlist     map[pairKey]model.WatchlistItem
	notifications map[pairKey]model.Notification
	intel         map[intelKey]model.CourseIntel
	focus         string
	loading       bool
	lastErr       string
	streamState   string
	subs          map[string]func()
}

func New(log *logger.Logger) *Store {
	return &Store{
		log:           log.Component("store"),
		sections:      make(map[string]model.Section),
		holds:         make(map[pairKey]model.Hold),
		watchlist:     make(map[pairKey]model.WatchlistItem),
		notifications: make(map[pairKey]model.Notification),
		intel:         make(map[intelKey]model.CourseIntel),
		streamState:   "disconnected",
		subs:          make(map[string]func()),
	}
}

// Subscribe registers a change listener, invoked after every mutation.
// Returns an id for Unsubscribe.
func (s *Store) Subscribe(fn func()) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs[id] = fn
	s.mu.Unlock()
	return id
}

func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// notify must be called without the lock held.
func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// --- identity ---

// SetUser replaces the signed-in identity. Changing identity clears all
// user-scoped collections; sections are catalog state and survive.
func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	s.user = u
	s.holds = make(map[pairKey]model.Hold)
	s.watchlist = make(map[pairKey]model.WatchlistItem)
	s.notifications = make(map[pairKey]model.Notification)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated is always derived from the user, never set independently.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// --- sections ---

// SetFocus records which course the caller is currently looking at. Section
// loads keyed to a different course are dropped as stale.
func (s *Store) SetFocus(courseID string) {
	s.mu.Lock()
	s.focus = courseID
	s.mu.Unlock()
}

func (s *Store) Focus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// SetSections merges a listing response into the catalog. forCourse is the
// course the response was fetched for; empty means a catalog-wide load. A
// response that no longer matches the focus returns a STALE_RESPONSE error
// and changes nothing.
func (s *Store) SetSections(forCourse string, sections []model.Section) error {
	s.mu.Lock()
	if forCourse != "" && forCourse != s.focus {
		s.mu.Unlock()
		return apperrors.Stale("sections", forCourse)
	}
	for _, sec := range sections {
		s.sections[sec.ID] = sec
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Section(id string) (model.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sections[id]
	return sec, ok
}

func (s *Store) Sections() []model.Section {
	s.mu.RLock()
	out := make([]model.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		out = append(out, sec)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApplySeatOpen folds a seat_open event into the catalog. A known section is
// mutated in place; an unknown one is admitted only if the payload carries a
// complete section record.
func (s *Store) ApplySeatOpen(ev model.StreamEvent) {
	seats, hasCount := ev.SeatCount()

	s.mu.Lock()
	sec, known := s.sections[ev.SectionID]
	if known && hasCount {
		sec.AvailableSeats = seats
		if !ev.Timestamp.IsZero() {
			sec.LastUpdated = ev.Timestamp
		}
		s.sections[ev.SectionID] = sec
		s.mu.Unlock()
		s.notify()
		return
	}
	s.mu.Unlock()

	if known {
		return
	}
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	full, err := model.DecodeSection(raw)
	if err != nil || full.ID != ev.SectionID {
		s.log.Debug("seat_open for unknown section without full record",
			"section_id", ev.SectionID,
		)
		return
	}
	s.mu.Lock()
	s.sections[full.ID] = full
	s.mu.Unlock()
	s.notify()
}

// --- holds ---

func (s *Store) PutHold(h model.Hold) {
	s.mu.Lock()
	s.holds[pairKey{h.UserID, h.SectionID}] = h
	s.mu.Unlock()
	s.notify()
}

// RemoveHold reports whether a hold was present.
func (s *Store) RemoveHold(userID, sectionID string) bool {
	key := pairKey{userID, sectionID}
	s.mu.Lock()
	_, ok := s.holds[key]
	delete(s.holds, key)
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

func (s *Store) Hold(userID, sectionID string) (model.Hold, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holds[pairKey{userID, sectionID}]
	return h, ok
}

func (s *Store) Holds() []model.Hold {
	s.mu.RLock()
	out := make([]model.Hold, 0, len(s.holds))
	for _, h := range s.holds {
		out = append(out, h)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out
}

// --- watchlist ---

func (s *Store) PutWatch(w model.WatchlistItem) {
	s.mu.Lock()
	s.watchlist[pairKey{w.UserID, w.SectionID}] = w
	s.mu.Unlock()
	s.notify()
}

func (s *Store) RemoveWatch(userID, sectionID string) bool {
	key := pairKey{userID, sectionID}
	s.mu.Lock()
	_, ok := s.watchlist[key]
	delete(s.watchlist, key)
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

func (s *Store) Watching(userID, sectionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.watchlist[pairKey{userID, sectionID}]
	return ok
}

func (s *Store) Watchlist() []model.WatchlistItem {
	s.mu.RLock()
	out := make([]model.WatchlistItem, 0, len(s.watchlist))
	for _, w := range s.watchlist {
		out = append(out, w)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out
}

// --- notifications ---

func (s *Store) PutNotification(n model.Notification) {
	s.mu.Lock()
	s.notifications[pairKey{n.UserID, n.SectionID}] = n
	s.mu.Unlock()
	s.notify()
}

func (s *Store) RemoveNotification(userID, sectionID string) bool {
	key := pairKey{userID, sectionID}
	s.mu.Lock()
	_, ok := s.notifications[key]
	delete(s.notifications, key)
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

func (s *Store) Notifying(userID, sectionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.notifications[pairKey{userID, sectionID}]
	return ok
}

func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out
}

// --- course intel ---

func (s *Store) SetIntel(ci model.CourseIntel) {
	s.mu.Lock()
	s.intel[intelKey{ci.Course, ci.Term}] = ci
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Intel(course, term string) (model.CourseIntel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ci, ok := s.intel[intelKey{course, term}]
	return ci, ok
}

// --- UI flags ---

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.notify()
}

func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetStreamState mirrors the push channel's connection state for the
// connectivity indicator.
func (s *Store) SetStreamState(state string) {
	s.mu.Lock()
	s.streamState = state
	s.mu.Unlock()
	s.notify()
}

func (s *Store) StreamState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamState
}
