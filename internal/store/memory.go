package store

import (
	"sync"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// MemoryStore holds the one dataset loaded for this process.
type MemoryStore struct {
	mu       sync.RWMutex
	ds       *models.Dataset
	loadedAt time.Time
	source   string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put replaces the dataset. The dataset must not be mutated afterwards.
func (s *MemoryStore) Put(ds *models.Dataset, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.source = source
	s.loadedAt = time.Now().UTC()
}

// Reset drops the dataset, e.g. after a failed reload.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = nil
	s.source = ""
	s.loadedAt = time.Time{}
}

func (s *MemoryStore) Dataset() (*models.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.ds != nil
}

func (s *MemoryStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds != nil
}

func (s *MemoryStore) Source() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.loadedAt
}

// Window is RevealWindow over the stored dataset.
func (s *MemoryStore) Window(mode Mode) []models.WeekEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RevealWindow(s.ds, mode)
}

// StaleCache reports whether latest_week disagrees with the last history entry.
func (s *MemoryStore) StaleCache() (latest int, cached int, stale bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last, ok := s.ds.Latest()
	if !ok {
		return 0, 0, false
	}
	return last.Week, s.ds.LatestWeek, s.ds.LatestWeek != last.Week
}
