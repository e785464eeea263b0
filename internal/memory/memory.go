// Package memory provides an in-process theme archive used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/knoguchi/themefather/internal/repository"
)

// Store keeps the most recent themes per user in memory.
type Store struct {
	mu         sync.RWMutex
	themes     map[int64][]*repository.ThemeRecord
	maxPerUser int
	ttl        time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewStore creates a store keeping at most maxPerUser records per user,
// dropping records older than ttl. A zero ttl keeps records until evicted by count.
func NewStore(maxPerUser int, ttl time.Duration) *Store {
	s := &Store{
		themes:     make(map[int64][]*repository.ThemeRecord),
		maxPerUser: maxPerUser,
		ttl:        ttl,
		done:       make(chan struct{}),
	}

	if ttl > 0 {
		go s.cleanupLoop()
	}

	return s
}

// DefaultStore creates a store with sensible defaults.
// - Max 10 themes per user
// - 24 hour TTL
func DefaultStore() *Store {
	return NewStore(10, 24*time.Hour)
}

// Save adds a record for its user.
func (s *Store) Save(_ context.Context, rec *repository.ThemeRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	cp := *rec

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.themes[rec.UserID], &cp)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	// Trim old records if exceeding max (keep recent ones)
	if s.maxPerUser > 0 && len(list) > s.maxPerUser {
		list = list[len(list)-s.maxPerUser:]
	}
	s.themes[rec.UserID] = list
	return nil
}

// ListByUser returns up to limit records for the user, newest first.
func (s *Store) ListByUser(_ context.Context, userID int64, limit int) ([]*repository.ThemeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.themes[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}

	// Return copies to avoid race conditions
	out := make([]*repository.ThemeRecord, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Close stops the cleanup goroutine.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// cleanupLoop periodically removes expired records.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup(time.Now())
		}
	}
}

func (s *Store) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for user, list := range s.themes {
		kept := list[:0]
		for _, rec := range list {
			if now.Sub(rec.CreatedAt) <= s.ttl {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(s.themes, user)
			continue
		}
		s.themes[user] = kept
	}
}

var _ repository.ThemeRepository = (*Store)(nil)
