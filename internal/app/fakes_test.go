package app_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"easystay/internal/domain"
)

// ---- fakes ----

type fakeAPI struct {
	mu sync.Mutex

	loginRes  map[string]any
	loginErr  error
	regErr    error
	infoRes   map[string]any
	infoErr   error
	searchRes any
	searchErr error
	detailRes any
	detailErr error
	createRes map[string]any
	createErr error
	listRes   any
	listErr   error
	orderRes  any

	searchCalls   int
	detailCalls   int
	createPayload map[string]any
	listEmail     string
	statusUpdates []string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (map[string]any, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, reg domain.Registration) (map[string]any, error) {
	return map[string]any{"success": true}, f.regErr
}

func (f *fakeAPI) UserInfo(ctx context.Context) (map[string]any, error) {
	return f.infoRes, f.infoErr
}

func (f *fakeAPI) SearchHotels(ctx context.Context, q domain.SearchQuery) (any, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	return f.searchRes, f.searchErr
}

func (f *fakeAPI) HotelDetail(ctx context.Context, id string) (any, error) {
	f.mu.Lock()
	f.detailCalls++
	f.mu.Unlock()
	return f.detailRes, f.detailErr
}

func (f *fakeAPI) CreateOrder(ctx context.Context, payload map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.createPayload = payload
	f.mu.Unlock()
	return f.createRes, f.createErr
}

func (f *fakeAPI) ListOrders(ctx context.Context, email string) (any, error) {
	f.mu.Lock()
	f.listEmail = email
	f.mu.Unlock()
	return f.listRes, f.listErr
}

func (f *fakeAPI) OrderDetail(ctx context.Context, orderNo string) (any, error) {
	return f.orderRes, nil
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, orderNo, status string) error {
	f.mu.Lock()
	f.statusUpdates = append(f.statusUpdates, orderNo+":"+status)
	f.mu.Unlock()
	return nil
}

type fakeState struct {
	mu      sync.Mutex
	token   string
	profile *domain.Profile
}

func (s *fakeState) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
func (s *fakeState) SetToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	return nil
}
func (s *fakeState) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
func (s *fakeState) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}
func (s *fakeState) SetProfile(p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	return nil
}
func (s *fakeState) ClearProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	return nil
}

// fakeCache round-trips through JSON so any cacheable type works.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// mintToken builds an unsigned JWT-shaped token for session tests.
func mintToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	b, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func freshToken(t *testing.T, email string) string {
	return mintToken(t, map[string]any{
		"email": email,
		"exp":   float64(time.Now().Add(time.Hour).Unix()),
	})
}
