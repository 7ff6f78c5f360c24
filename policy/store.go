package policy

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store manages policy persistence and retrieval.
type Store interface {
	// Get a policy by ID.
	Get(id string) (*Policy, error)

	// List all policies, ordered by ID.
	List() ([]*Policy, error)

	// Save inserts or replaces a policy and maintains its timestamps.
	Save(p *Policy) error

	// Delete a policy.
	Delete(id string) error
}

// InMemoryStore implements Store using an in-memory map. Thread-safe
// with an RWMutex.
type InMemoryStore struct {
	policies map[string]*Policy
	mu       sync.RWMutex
}

// NewInMemoryStore creates a new in-memory policy store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		policies: make(map[string]*Policy),
	}
}

// Get retrieves a policy by ID.
func (s *InMemoryStore) Get(id string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.policies[id]
	if !exists {
		return nil, fmt.Errorf("policy %s not found", id)
	}
	return p, nil
}

// List returns all policies ordered by ID.
func (s *InMemoryStore) List() ([]*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Policy, 0, len(s.policies))
	for _, p := range s.policies {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Save inserts or replaces a policy. CreatedAt is preserved across
// replacements; UpdatedAt always moves forward.
func (s *InMemoryStore) Save(p *Policy) error {
	if p.ID == "" {
		return fmt.Errorf("policy ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, exists := s.policies[p.ID]; exists {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.policies[p.ID] = p
	return nil
}

// Delete removes a policy from the store.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[id]; !exists {
		return fmt.Errorf("policy %s not found", id)
	}
	delete(s.policies, id)
	return nil
}
