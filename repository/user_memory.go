package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-telebox/domains/user"
)

// MemoryUserStore keeps user records in a mutex-guarded map. This is the
// default backend; data is lost on restart.
type MemoryUserStore struct {
	mu      sync.RWMutex
	records map[int64]user.UserRecord
	now     func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		records: make(map[int64]user.UserRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryUserStore) Init(ctx context.Context) error {
	return nil
}

func (s *MemoryUserStore) GetOrCreate(ctx context.Context, id int64, firstName, username string) (user.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[id]; ok {
		return rec, nil
	}

	rec := user.UserRecord{
		ID:            id,
		FirstName:     firstName,
		Username:      username,
		AccessExpires: time.Unix(0, 0).UTC(),
		JoinDate:      s.now(),
	}
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryUserStore) GrantAccess(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		// Unknown identities get a record fabricated on the spot.
		rec = user.UserRecord{ID: id, JoinDate: s.now()}
	}

	rec.AccessExpires = s.now().Add(user.AccessWindow)
	rec.TotalGrants++
	s.records[id] = rec
	return nil
}

func (s *MemoryUserStore) HasAccess(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	return rec.HasAccessAt(s.now()), nil
}

func (s *MemoryUserStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *MemoryUserStore) ListIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}
