package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"easystay/internal/domain"
)

// Hotels serves the search/list/detail flows: it snapshots the filter
// store, queries the booking service, normalizes whatever shape comes
// back, and keeps a short-lived response cache in front of it.
type Hotels struct {
	api      domain.BookingAPI
	cache    domain.Cache
	filters  *FilterStore
	cacheTTL time.Duration
	pageSize int

	mu       sync.Mutex
	page     int
	items    []domain.HotelSummary
	inFlight bool
}

func NewHotels(api domain.BookingAPI, cache domain.Cache, filters *FilterStore, ttl time.Duration, pageSize int) *Hotels {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Hotels{api: api, cache: cache, filters: filters, cacheTTL: ttl, pageSize: pageSize}
}

// Search resets pagination and loads the first page for the current
// filters.
func (s *Hotels) Search(ctx context.Context) (domain.HotelsPage, error) {
	items, err := s.fetchPage(ctx, 1)
	if err != nil {
		// degrade to an empty list, never a partial one
		s.mu.Lock()
		s.page, s.items = 0, nil
		s.mu.Unlock()
		return domain.HotelsPage{Items: []domain.HotelSummary{}}, err
	}
	s.mu.Lock()
	s.page, s.items = 1, items
	out := s.snapshotLocked()
	s.mu.Unlock()
	return out, nil
}

// LoadMore fetches the next sequential page and appends it. An
// in-flight guard de-duplicates rapid repeated triggers: while one
// load is running, further calls return the current page unchanged
// with loaded=false.
func (s *Hotels) LoadMore(ctx context.Context) (domain.HotelsPage, bool, error) {
	s.mu.Lock()
	if s.inFlight {
		out := s.snapshotLocked()
		s.mu.Unlock()
		return out, false, nil
	}
	s.inFlight = true
	next := s.page + 1
	s.mu.Unlock()

	items, err := s.fetchPage(ctx, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return s.snapshotLocked(), false, err
	}
	if len(items) == 0 {
		// past the last page; don't advance
		return s.snapshotLocked(), false, nil
	}
	s.page = next
	s.items = append(s.items, items...)
	return s.snapshotLocked(), true, nil
}

// Results returns the accumulated result set.
func (s *Hotels) Results() domain.HotelsPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Detail returns the normalized hotel detail, cached per id.
func (s *Hotels) Detail(ctx context.Context, id string) (domain.Hotel, error) {
	key := "hotel:" + id
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	raw, err := s.api.HotelDetail(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	h = mapHotel(raw, id)
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

// Prefetch warms the detail cache for a batch of hotel ids with
// bounded concurrency. Individual misses are logged, not fatal.
func (s *Hotels) Prefetch(ctx context.Context, ids []string, workers int) error {
	if workers <= 0 {
		workers = 4
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)
			if _, err := s.Detail(ctx, hotelID); err != nil {
				log.Warn().Str("id", hotelID).Err(err).Msg("prefetch failed")
				return
			}
			log.Info().Str("id", hotelID).Msg("prefetch ok")
		}(id)
	}
	wg.Wait()
	return nil
}

func (s *Hotels) fetchPage(ctx context.Context, page int) ([]domain.HotelSummary, error) {
	f := s.filters.Snapshot()
	q := domain.SearchQuery{
		Page:     page,
		PageSize: s.pageSize,
		City:     f.City,
		Keyword:  f.Keyword,
	}
	if f.Dates.CheckIn != nil {
		q.CheckIn = *f.Dates.CheckIn
	}
	if f.Dates.CheckOut != nil {
		q.CheckOut = *f.Dates.CheckOut
	}

	key := searchKey(q, f.Tags)
	var cached []domain.HotelSummary
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	raw, err := s.api.SearchHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	items := mapHotelSummaries(raw)
	items = filterByTags(items, f.Tags)
	_ = s.cache.Set(ctx, key, items, int(s.cacheTTL.Seconds()))
	return items, nil
}

// filterByTags keeps hotels matching every selected amenity tag. The
// backend has no tag parameter, so this stays client-side.
func filterByTags(in []domain.HotelSummary, tags []string) []domain.HotelSummary {
	if len(tags) == 0 {
		return in
	}
	out := make([]domain.HotelSummary, 0, len(in))
	for _, h := range in {
		if hasAllTags(h.Tags, tags) {
			out = append(out, h)
		}
	}
	return out
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func searchKey(q domain.SearchQuery, tags []string) string {
	return fmt.Sprintf("hotels:%s:%s:%s:%s:%s:%d:%d",
		q.City, q.Keyword, q.CheckIn, q.CheckOut, strings.Join(tags, ","), q.Page, q.PageSize)
}

func (s *Hotels) snapshotLocked() domain.HotelsPage {
	return domain.HotelsPage{
		Items: append([]domain.HotelSummary(nil), s.items...),
		Page:  s.page,
	}
}
