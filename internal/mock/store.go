package mock

import (
	"sync"
	"time"

	"github.com/studiowebux/usertabs/internal/types"
)

// entry is one stored user as served by GET
type entry struct {
	raw       bool
	event     string
	timestamp string
	data      map[string]any
}

// Store holds the users served by the webhook
type Store struct {
	mu    sync.RWMutex
	users map[string]entry
	last  string // user_id most recently fetched or written
}

// NewStore creates a store holding the seed users
func NewStore(seed []SeedUser, now time.Time) *Store {
	s := &Store{users: make(map[string]entry)}
	for _, u := range seed {
		id, _ := u.Data["user_id"].(string)
		s.users[id] = entry{
			raw:       u.Raw,
			event:     types.EventUserCreated,
			timestamp: types.FormatTimestamp(now),
			data:      cloneMap(u.Data),
		}
	}
	return s
}

// Get returns the response body for id
func (s *Store) Get(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[id]
	if !ok {
		return nil, false
	}
	s.last = id
	if e.raw {
		return cloneMap(e.data), true
	}
	return map[string]any{
		"event":     e.event,
		"timestamp": e.timestamp,
		"data":      cloneMap(e.data),
	}, true
}

// Put stores data under its user_id
func (s *Store) Put(event, timestamp string, data map[string]any) string {
	id, _ := data["user_id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = entry{
		event:     event,
		timestamp: timestamp,
		data:      cloneMap(data),
	}
	s.last = id
	return id
}

// DeleteLast removes the user fetched or written most recently. Delete
// requests carry no id; clients load the user right before deleting it.
func (s *Store) DeleteLast() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == "" {
		return "", false
	}
	id := s.last
	delete(s.users, id)
	s.last = ""
	return id, true
}

// Delete removes id from the store
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	if s.last == id {
		s.last = ""
	}
	return true
}

// Has reports whether id is stored
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// Len returns the number of stored users
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
