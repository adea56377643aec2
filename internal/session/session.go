// Package session keeps per-caller demo state: which sample applicant is
// loaded, where the intake simulation stands, and the resulting decision.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/zendalabs/zenda/pkg/types"
)

type Stage string

const (
	StageIdle       Stage = "idle"
	StageProcessing Stage = "processing"
	StageDecided    Stage = "decided"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrProcessing = errors.New("session already processing")
)

// Session is a single demo walkthrough. Decision and DecisionID are set
// only once Stage is decided.
type Session struct {
	SessionID  string           `json:"session_id"`
	Stage      Stage            `json:"stage"`
	Step       string           `json:"step,omitempty"`
	Applicant  *types.Applicant `json:"applicant,omitempty"`
	DecisionID string           `json:"decision_id,omitempty"`
	Decision   *types.Decision  `json:"decision,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

type StoreOpt func(*Store)

func WithClock(now func() time.Time) StoreOpt {
	return func(s *Store) { s.now = now }
}

// Store is an in-memory session registry. Sessions are throwaway demo
// state, so there is no persistence behind it.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewStore(opts ...StoreOpt) *Store {
	s := &Store{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Format(time.RFC3339)
	sess := Session{
		SessionID: newSessionID(),
		Stage:     StageIdle,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.sessions[sess.SessionID] = sess
	return sess
}

func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	return sess, ok
}

func (s *Store) List() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

// Update applies fn to the session under the store lock so concurrent
// intake steps cannot interleave partial writes.
func (s *Store) Update(sessionID string, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	fn(&sess)
	sess.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	s.sessions[sessionID] = sess
	return sess, nil
}

// Transition applies fn under the store lock, letting fn veto the
// change. If fn returns an error the session is left untouched, so a
// stage check and the stage change are a single atomic step.
func (s *Store) Transition(sessionID string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	updated := sess
	if err := fn(&updated); err != nil {
		return Session{}, err
	}
	updated.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	s.sessions[sessionID] = updated
	return updated, nil
}

// Reset returns a session to idle, dropping the applicant and decision.
func (s *Store) Reset(sessionID string) (Session, error) {
	return s.Update(sessionID, func(sess *Session) {
		sess.Stage = StageIdle
		sess.Step = ""
		sess.Applicant = nil
		sess.DecisionID = ""
		sess.Decision = nil
		sess.Error = ""
	})
}

func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func newSessionID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "sess-" + time.Now().UTC().Format("20060102150405.000000000")
	}
	return "sess-" + hex.EncodeToString(buf)
}
