package auth

import (
	"context"
	"sync"
	"time"
)

// ElevationStore registra los tokens de elevación ya consumidos (por jti).
type ElevationStore interface {
	// Consume marca jti como usado durante ttl. false si ya se había usado.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// MemoryElevationStore ElevationStore de un solo proceso; se usa cuando no hay Redis.
type MemoryElevationStore struct {
	mu   sync.Mutex
	used map[string]time.Time
	now  func() time.Time
}

// NewMemoryElevationStore crea el registro en memoria.
func NewMemoryElevationStore() *MemoryElevationStore {
	return &MemoryElevationStore{used: make(map[string]time.Time), now: time.Now}
}

// Consume implementa ElevationStore. Las entradas vencidas se purgan en cada llamada.
func (s *MemoryElevationStore) Consume(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, until := range s.used {
		if !now.Before(until) {
			delete(s.used, k)
		}
	}
	if _, ok := s.used[jti]; ok {
		return false, nil
	}
	s.used[jti] = now.Add(ttl)
	return true, nil
}
