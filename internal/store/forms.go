package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claimdesk/internal/upload"
)

// ErrFull is returned by Create when every session slot holds a form with
// a submission in flight.
var ErrFull = errors.New("too many active form sessions")

type formEntry struct {
	form     *upload.Form
	lastSeen time.Time
}

// FormStore keeps one upload form per browser session in memory. Sessions
// idle for longer than the TTL are dropped; nothing survives a restart.
// At most maxSessions forms are held; a new session evicts the least
// recently used idle one.
type FormStore struct {
	ttl         time.Duration
	maxSessions int
	newForm     func() *upload.Form
	now         func() time.Time

	mu    sync.Mutex
	forms map[string]*formEntry
}

// NewFormStore returns a store whose sessions expire after ttl. A
// maxSessions of zero or less means no cap.
func NewFormStore(ttl time.Duration, maxSessions int, newForm func() *upload.Form) *FormStore {
	return &FormStore{
		ttl:         ttl,
		maxSessions: maxSessions,
		newForm:     newForm,
		now:         time.Now,
		forms:       make(map[string]*formEntry),
	}
}

// Create starts a new session and returns its ID. When the store is full
// the least recently used idle session is dropped; ErrFull means every
// session has a submission in flight.
func (s *FormStore) Create() (string, *upload.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.forms) >= s.maxSessions && !s.evictLocked() {
		return "", nil, ErrFull
	}

	id := uuid.NewString()
	form := s.newForm()
	s.forms[id] = &formEntry{form: form, lastSeen: s.now()}

	slog.Debug("form session created", "session_id", id)
	return id, form, nil
}

// evictLocked frees at least one slot, preferring expired sessions over the
// oldest idle one. s.mu must be held.
func (s *FormStore) evictLocked() bool {
	if s.deleteExpiredLocked() > 0 {
		return true
	}

	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.forms {
		if e.form.InFlight() {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.forms, oldestID)
	slog.Debug("form session evicted", "session_id", oldestID)
	return true
}

// Get returns the form for a live session and refreshes its expiry.
func (s *FormStore) Get(id string) (*upload.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.forms[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.forms, id)
		return nil, false
	}
	e.lastSeen = now
	return e.form, true
}

// Len returns the number of tracked sessions.
func (s *FormStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// DeleteExpired removes idle sessions. Forms with a submission in flight
// are kept until it resolves.
func (s *FormStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteExpiredLocked()
}

func (s *FormStore) deleteExpiredLocked() int {
	now := s.now()
	removed := 0
	for id, e := range s.forms {
		if now.Sub(e.lastSeen) > s.ttl && !e.form.InFlight() {
			delete(s.forms, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls DeleteExpired every interval until ctx is cancelled.
func (s *FormStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.DeleteExpired(); n > 0 {
				slog.Info("form sessions expired", "count", n)
			}
		}
	}
}
