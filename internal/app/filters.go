package app

import (
	"sync"

	"easystay/internal/domain"
)

// FilterStore is the shared search-filter state. It is an explicit,
// injectable container rather than a package singleton so tests and
// multiple surfaces can hold independent instances.
type FilterStore struct {
	mu sync.Mutex
	f  domain.SearchFilters
}

func NewFilterStore() *FilterStore {
	return &FilterStore{}
}

func (s *FilterStore) SetCity(city, adcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.City, s.f.Adcode = city, adcode
}

func (s *FilterStore) SetKeyword(keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Keyword = keyword
}

// ToggleTag flips membership of tag in the (unordered) tag set.
func (s *FilterStore) ToggleTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.f.Tags {
		if t == tag {
			s.f.Tags = append(s.f.Tags[:i], s.f.Tags[i+1:]...)
			return
		}
	}
	s.f.Tags = append(s.f.Tags, tag)
}

func (s *FilterStore) ClearTags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Tags = nil
}

func (s *FilterStore) SetDateRange(dr domain.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Dates = dr
}

// Reset returns every filter to its zero value. Only explicit user
// action calls this.
func (s *FilterStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f = domain.SearchFilters{}
}

// Snapshot returns a copy safe to read while other goroutines mutate.
func (s *FilterStore) Snapshot() domain.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.f
	out.Tags = append([]string(nil), s.f.Tags...)
	return out
}
