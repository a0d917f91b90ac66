package tracking

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/florbal-stats/internal/store"
)

// Broadcaster is notified with a snapshot after every session change.
type Broadcaster interface {
	Broadcast(sessionID string, payload interface{})
}

// Event is what subscribers receive.
type Event struct {
	Type    string   `json:"type"`
	Session *Session `json:"session"`
}

const (
	EventUpdated  = "session_updated"
	EventFinished = "session_finished"
)

// Registry keeps live sessions in memory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	notify   Broadcaster
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewRegistry creates an empty registry. notify may be nil.
func NewRegistry(notify Broadcaster, log logrus.FieldLogger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		notify:   notify,
		now:      time.Now,
		log:      log.WithField("component", "tracking"),
	}
}

// Add registers a session and returns a snapshot of it.
func (r *Registry) Add(s *Session) *Session {
	r.mu.Lock()
	r.sessions[s.ID] = s
	snapshot := s.clone()
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"session": s.ID,
		"players": len(s.Players),
	}).Info("session started")
	r.publish(EventUpdated, snapshot)
	return snapshot
}

// Get returns a snapshot of a session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.clone(), nil
}

// List returns snapshots of all sessions, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s.clone())
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

// Update applies fn to a session. Subscribers are notified only when fn succeeds;
// a failing fn must leave the session untouched.
func (r *Registry) Update(id string, fn func(*Session) error) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err := fn(s); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	snapshot := s.clone()
	r.mu.Unlock()

	r.publish(EventUpdated, snapshot)
	return snapshot, nil
}

// Finish turns a session into a completed match and hands it to save. The session
// is removed and EventFinished published only when save succeeds; on failure it
// stays registered so the finish can be retried. save may be nil.
func (r *Registry) Finish(id string, save func(store.CompletedMatch) error) (store.CompletedMatch, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.RUnlock()
		return store.CompletedMatch{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	match := s.Finish(r.now())
	r.mu.RUnlock()

	if save != nil {
		if err := save(match); err != nil {
			r.log.WithError(err).WithField("session", id).Warn("finished match not saved, session kept")
			return store.CompletedMatch{}, err
		}
	}

	r.mu.Lock()
	s, ok = r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		// Finished concurrently; the match was saved either way.
		return match, nil
	}

	r.log.WithFields(logrus.Fields{
		"session": id,
		"score":   fmt.Sprintf("%d:%d", match.OurScore, match.OpponentScore),
	}).Info("session finished")
	r.publish(EventFinished, s.clone())
	return match, nil
}

func (r *Registry) publish(eventType string, s *Session) {
	if r.notify == nil {
		return
	}
	r.notify.Broadcast(s.ID, Event{Type: eventType, Session: s})
}
