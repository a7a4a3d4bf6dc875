package chatbot

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"smartshop-labs/smartshop/internal/models"
)

// Exchange is one user turn and what was extracted from it.
type Exchange struct {
	At        time.Time
	Message   string
	Extracted models.Requirements
}

// Conversation is the per-session state the engine accumulates. The engine
// holds mu for the whole turn, so concurrent requests on one session id are
// serialized rather than interleaving their mutations.
type Conversation struct {
	mu sync.Mutex

	SessionID      string
	StartTime      time.Time
	Requirements   models.Requirements
	History        []Exchange
	Clarifications []string
	EducationShown bool
	Contradictions int
}

// Store keeps conversations in memory, keyed by session id.
type Store struct {
	mu sync.RWMutex
	m  map[string]*Conversation
}

func NewStore() *Store {
	return &Store{m: make(map[string]*Conversation)}
}

// GetOrCreate returns the conversation for id, creating it (and minting a
// session id when the caller did not supply one).
func (s *Store) GetOrCreate(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if c, ok := s.m[id]; ok {
			return c
		}
	} else {
		id = uuid.NewString()
	}
	c := &Conversation{
		SessionID: id,
		StartTime: time.Now(),
	}
	s.m[id] = c
	return c
}

// Get returns an existing conversation, or nil.
func (s *Store) Get(id string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[id]
}

// Reset drops a conversation so the next message starts fresh.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
