package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do"
)

// State is the per-conversation-session store. It acts as a cache and an
// inter-stage channel: stages write their results here and later stages read
// them back instead of re-fetching. It carries no correctness logic of its own.
type State struct {
	mu      sync.RWMutex
	id      string
	records map[string]Record

	// turnMu serializes pipeline executions for this session. Concurrent
	// turns for the same session must not interleave stage writes.
	turnMu sync.Mutex
}

func newState(id string) *State {
	return &State{
		id:      id,
		records: make(map[string]Record),
	}
}

func (s *State) ID() string {
	return s.id
}

func (s *State) Get(stage string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[stage]
	return rec, ok
}

func (s *State) Put(stage string, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[stage] = rec
}

// BeginTurn acquires the session's turn lock and returns the release func.
func (s *State) BeginTurn() func() {
	s.turnMu.Lock()
	return s.turnMu.Unlock
}

// Snapshot returns a copy of the extracted summaries per stage.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(s.records))
	for stage, rec := range s.records {
		result[stage] = rec.Extracted
	}

	return result
}

// Extracted reads a typed stage summary from the state.
func Extracted[T any](s *State, stage string) (T, bool) {
	var zero T

	rec, ok := s.Get(stage)
	if !ok {
		return zero, false
	}

	value, ok := rec.Extracted.(T)
	if !ok {
		return zero, false
	}

	return value, true
}

// Service owns the session states. Lifetime of a state is the conversation
// session: created on first use, dropped at session teardown.
type Service struct {
	mu     sync.RWMutex
	states map[string]*State
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		states: make(map[string]*State),
	}, nil
}

// Obtain returns the state for the given session, creating it when absent.
// An empty session id allocates a fresh session.
func (s *Service) Obtain(sessionID string) *State {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		state = newState(sessionID)
		s.states[sessionID] = state
	}

	return state
}

// Lookup returns the state for the given session without creating one.
func (s *Service) Lookup(sessionID string) (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[sessionID]
	return state, ok
}

// Drop discards a session state at teardown.
func (s *Service) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, sessionID)
}
