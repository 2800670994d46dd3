package memory

import (
	"context"
	"sync"
	"time"

	"fundry/contexts/funding-core/activity-feed-service/domain/entities"
)

// Store is the in-process adapter backing the activity feed in tests and
// single-binary deployments.
type Store struct {
	mu         sync.RWMutex
	entries    map[int64][]entities.ActivityEntry
	eventDedup map[string]string
	now        *time.Time
}

func NewStore() *Store {
	return &Store{
		entries:    make(map[int64][]entities.ActivityEntry),
		eventDedup: make(map[string]string),
	}
}

// SetNow pins the clock for tests; a nil receiver time falls back to UTC now.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned := now.UTC()
	s.now = &pinned
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func (s *Store) AppendEntry(_ context.Context, entry entities.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.CampaignID] = append(s.entries[entry.CampaignID], entry)
	return nil
}

func (s *Store) ListEntries(_ context.Context, campaignID int64, limit int, offset int) ([]entities.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[campaignID]
	if offset >= len(all) {
		return []entities.ActivityEntry{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	page := make([]entities.ActivityEntry, end-offset)
	copy(page, all[offset:end])
	return page, nil
}

func (s *Store) CountEntries(_ context.Context, campaignID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries[campaignID])), nil
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.eventDedup[eventID]; ok {
		return true, nil
	}
	s.eventDedup[eventID] = payloadHash
	return false, nil
}
