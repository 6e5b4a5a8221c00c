package idempotency

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It backs the development API.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Reserve claims key for fingerprint unless a live record already holds it.
func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	key = strings.TrimSpace(key)
	now = now.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[key]
	switch {
	case !ok || existing.expired(now):
		s.records[key] = Record{
			Key:         key,
			Fingerprint: fingerprint,
			ExpiresAt:   now.Add(normalizeTTL(ttl)),
		}
		return Reservation{State: ReservationStateNew}, nil
	case existing.Fingerprint != fingerprint:
		return Reservation{}, ErrFingerprintMismatch
	case existing.Done:
		return Reservation{State: ReservationStateCompleted, Record: existing}, nil
	default:
		return Reservation{State: ReservationStatePending}, nil
	}
}

// SaveResponse completes the record for key and restarts its TTL.
func (s *MemoryStore) SaveResponse(_ context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok && existing.Fingerprint != fingerprint {
		return ErrFingerprintMismatch
	}
	s.records[key] = Record{
		Key:         key,
		Fingerprint: fingerprint,
		Done:        true,
		Response: Response{
			Status:  resp.Status,
			Headers: replayableHeaders(resp.Headers),
			Body:    append([]byte(nil), resp.Body...),
		},
		ExpiresAt: now.UTC().Add(normalizeTTL(ttl)),
	}
	return nil
}

// Release forgets key so the client may retry. A different fingerprint leaves the record alone.
func (s *MemoryStore) Release(_ context.Context, key, fingerprint string) error {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok && existing.Fingerprint == fingerprint {
		delete(s.records, key)
	}
	return nil
}

// CleanupExpired drops up to limit expired records; limit <= 0 means all.
func (s *MemoryStore) CleanupExpired(_ context.Context, now time.Time, limit int) (int, error) {
	now = now.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.records {
		if limit > 0 && removed >= limit {
			break
		}
		if record.expired(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
