package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps fact records in process memory. Records are deep-copied
// on both Load and Save so callers never share a mutable record with the
// store. Suitable for tests and single-process deployments; it holds
// everything until Delete, there is no eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*FactRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*FactRecord),
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*FactRecord, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	return copyRecord(rec)
}

func (s *MemoryStore) Save(_ context.Context, rec *FactRecord) error {
	if rec == nil {
		return ErrNilFactRecord
	}
	id := strings.TrimSpace(rec.SessionID)
	if id == "" {
		return ErrInvalidSession
	}

	stored, err := copyRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[id] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// copyRecord round-trips through JSON so nested tool result data is
// detached as well.
func copyRecord(rec *FactRecord) (*FactRecord, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("copy fact record: %w", err)
	}
	var out FactRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copy fact record: %w", err)
	}
	return &out, nil
}
