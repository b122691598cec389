package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"easystay/internal/domain"
	"easystay/internal/token"
)

// Session is the single source of truth for "am I logged in, and as
// whom". A token can exist locally yet be rejected by the backend
// (revoked, malformed server-side); CheckLoginStatus is the one place
// that detects this and self-heals by evicting it.
type Session struct {
	api   domain.BookingAPI
	state domain.StateStore

	checking atomic.Bool

	mu      sync.Mutex
	profile *domain.Profile
}

func NewSession(api domain.BookingAPI, state domain.StateStore) *Session {
	s := &Session{api: api, state: state}
	// warm the in-memory profile from the persisted copy
	if p, ok := state.Profile(); ok {
		s.profile = &p
	}
	return s
}

// Checking reports whether a verification round-trip is in flight.
func (s *Session) Checking() bool { return s.checking.Load() }

// Profile returns the backend-confirmed profile, if logged in.
func (s *Session) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}

// Token exposes the persisted token for the backend client.
func (s *Session) Token() string { return s.state.Token() }

// CheckLoginStatus reconciles the locally persisted token with the
// backend. No token → logged out. A definitive backend rejection
// (401 or a business failure) evicts the token; a transport failure
// only clears the in-memory profile and keeps the token for retry.
func (s *Session) CheckLoginStatus(ctx context.Context) error {
	tok := s.state.Token()
	if tok == "" {
		s.setProfile(nil)
		return nil
	}

	s.checking.Store(true)
	defer s.checking.Store(false)

	info, err := s.api.UserInfo(ctx)
	if err != nil {
		var berr *domain.BusinessError
		if errors.Is(err, domain.ErrUnauthorized) || errors.As(err, &berr) {
			s.evict()
			return nil
		}
		s.setProfile(nil)
		return err
	}

	p := mapProfile(info)
	if err := s.state.SetProfile(p); err != nil {
		log.Warn().Err(err).Msg("persist profile failed")
	}
	s.setProfile(&p)
	return nil
}

// LoginWithEmail posts credentials and, on success, persists the token
// and re-runs CheckLoginStatus so the profile has exactly one source.
// A business failure surfaces the backend's own message and reports
// false; transport failures are returned as-is.
func (s *Session) LoginWithEmail(ctx context.Context, email, password string) (bool, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		var berr *domain.BusinessError
		if errors.As(err, &berr) {
			return false, berr
		}
		return false, err
	}

	tok := loginToken(res)
	if tok == "" {
		return false, fmt.Errorf("login response carried no token")
	}
	if err := s.state.SetToken(tok); err != nil {
		return false, err
	}
	if err := s.CheckLoginStatus(ctx); err != nil {
		// logged in; the profile will populate on the next check
		log.Warn().Err(err).Msg("post-login profile fetch failed")
	}
	return true, nil
}

// Register forwards a registration; the backend message is surfaced on
// business failure.
func (s *Session) Register(ctx context.Context, reg domain.Registration) error {
	_, err := s.api.Register(ctx, reg)
	return err
}

// Logout evicts the persisted token and clears the profile.
func (s *Session) Logout() {
	s.evict()
}

// RequireIdentifier is the route guard for order flows: it returns the
// user-identifying claim from the persisted token, evicting the token
// and reporting ErrLoginRequired when it is absent, expired, or
// undecodable.
func (s *Session) RequireIdentifier() (string, error) {
	tok := s.state.Token()
	if tok == "" {
		return "", domain.ErrLoginRequired
	}
	if token.IsExpired(tok) {
		s.evict()
		return "", domain.ErrLoginRequired
	}
	id, ok := token.ExtractIdentifier(tok)
	if !ok {
		s.evict()
		return "", domain.ErrLoginRequired
	}
	return id, nil
}

func (s *Session) evict() {
	if err := s.state.ClearToken(); err != nil {
		log.Warn().Err(err).Msg("clear token failed")
	}
	if err := s.state.ClearProfile(); err != nil {
		log.Warn().Err(err).Msg("clear profile failed")
	}
	s.setProfile(nil)
}

func (s *Session) setProfile(p *domain.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}
