package mission

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.Mutex
	missions map[string]Mission
	messages map[string][]Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		missions: make(map[string]Mission),
		messages: make(map[string][]Message),
	}
}

func (s *MemoryStore) EnsureDefault(title string) (Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.missions[DefaultMissionID]; ok {
		return m, nil
	}
	now := time.Now()
	m := Mission{ID: DefaultMissionID, Title: title, CreatedAt: now, LastActivity: now}
	s.missions[m.ID] = m
	return m, nil
}

func (s *MemoryStore) CreateMission(title string) (Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	m := Mission{ID: uuid.NewString(), Title: title, CreatedAt: now, LastActivity: now}
	s.missions[m.ID] = m
	return m, nil
}

func (s *MemoryStore) Missions() ([]Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mission, 0, len(s.missions))
	for _, m := range s.missions {
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) Mission(id string) (Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[id]
	if !ok {
		return Mission{}, ErrMissionNotFound
	}
	return m, nil
}

func (s *MemoryStore) DeleteMission(id string) error {
	if id == DefaultMissionID {
		return ErrDefaultMission
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.missions[id]; !ok {
		return ErrMissionNotFound
	}
	delete(s.missions, id)
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) AppendMessage(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[msg.MissionID]
	if !ok {
		return ErrMissionNotFound
	}
	m.LastActivity = msg.Timestamp
	s.missions[m.ID] = m
	s.messages[msg.MissionID] = append(s.messages[msg.MissionID], msg)
	return nil
}

func (s *MemoryStore) Messages(missionID string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[missionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
