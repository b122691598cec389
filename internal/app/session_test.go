package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"easystay/internal/app"
	"easystay/internal/domain"
)

func TestCheckLoginStatus_NoToken(t *testing.T) {
	s := app.NewSession(&fakeAPI{}, &fakeState{})
	if err := s.CheckLoginStatus(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := s.Profile(); ok {
		t.Fatalf("expected logged out")
	}
}

func TestCheckLoginStatus_PopulatesProfile(t *testing.T) {
	api := &fakeAPI{infoRes: map[string]any{
		"success": true,
		"data":    map[string]any{"username": "张三", "email": "a@b.com", "phone": "13800000000"},
	}}
	st := &fakeState{token: freshToken(t, "a@b.com")}
	s := app.NewSession(api, st)

	if err := s.CheckLoginStatus(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	p, ok := s.Profile()
	if !ok || p.Username != "张三" || p.Email != "a@b.com" {
		t.Fatalf("unexpected profile: %+v ok=%v", p, ok)
	}
	// persisted too
	if pp, ok := st.Profile(); !ok || pp.Username != "张三" {
		t.Fatalf("profile not persisted: %+v", pp)
	}
}

func TestCheckLoginStatus_401EvictsToken(t *testing.T) {
	api := &fakeAPI{infoErr: domain.ErrUnauthorized}
	st := &fakeState{token: freshToken(t, "a@b.com")}
	st.profile = &domain.Profile{Username: "stale"}
	s := app.NewSession(api, st)

	if err := s.CheckLoginStatus(context.Background()); err != nil {
		t.Fatalf("401 must self-heal, not error: %v", err)
	}
	if st.Token() != "" {
		t.Fatalf("token should be evicted")
	}
	if _, ok := s.Profile(); ok {
		t.Fatalf("profile should be cleared")
	}
}

func TestCheckLoginStatus_BusinessFailureEvicts(t *testing.T) {
	api := &fakeAPI{infoErr: &domain.BusinessError{Code: 403, Message: "invalid token"}}
	st := &fakeState{token: freshToken(t, "a@b.com")}
	s := app.NewSession(api, st)

	if err := s.CheckLoginStatus(context.Background()); err != nil {
		t.Fatalf("business rejection must self-heal: %v", err)
	}
	if st.Token() != "" {
		t.Fatalf("token should be evicted")
	}
}

func TestCheckLoginStatus_TransportErrorKeepsToken(t *testing.T) {
	api := &fakeAPI{infoErr: errors.New("dial tcp: timeout")}
	tok := freshToken(t, "a@b.com")
	st := &fakeState{token: tok}
	s := app.NewSession(api, st)

	if err := s.CheckLoginStatus(context.Background()); err == nil {
		t.Fatalf("expected transport error to surface")
	}
	if st.Token() != tok {
		t.Fatalf("transport failure must not evict the token")
	}
	if _, ok := s.Profile(); ok {
		t.Fatalf("in-memory profile should be cleared")
	}
}

func TestLoginWithEmail_Success(t *testing.T) {
	tok := freshToken(t, "a@b.com")
	api := &fakeAPI{
		loginRes: map[string]any{"success": true, "data": map[string]any{"token": tok}},
		infoRes:  map[string]any{"success": true, "data": map[string]any{"username": "u", "email": "a@b.com"}},
	}
	st := &fakeState{}
	s := app.NewSession(api, st)

	ok, err := s.LoginWithEmail(context.Background(), "a@b.com", "pw")
	if err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}
	if st.Token() != tok {
		t.Fatalf("token not persisted")
	}
	if p, ok := s.Profile(); !ok || p.Email != "a@b.com" {
		t.Fatalf("profile not populated via CheckLoginStatus: %+v", p)
	}
}

func TestLoginWithEmail_BusinessFailure(t *testing.T) {
	api := &fakeAPI{loginErr: &domain.BusinessError{Message: "密码错误"}}
	s := app.NewSession(api, &fakeState{})

	ok, err := s.LoginWithEmail(context.Background(), "a@b.com", "bad")
	if ok {
		t.Fatalf("expected ok=false")
	}
	if err == nil || err.Error() != "密码错误" {
		t.Fatalf("expected the backend message, got %v", err)
	}
}

func TestLoginWithEmail_MissingToken(t *testing.T) {
	api := &fakeAPI{loginRes: map[string]any{"success": true, "data": map[string]any{}}}
	s := app.NewSession(api, &fakeState{})
	if ok, err := s.LoginWithEmail(context.Background(), "a@b.com", "pw"); ok || err == nil {
		t.Fatalf("tokenless success body must fail: ok=%v err=%v", ok, err)
	}
}

func TestLogout(t *testing.T) {
	st := &fakeState{token: freshToken(t, "a@b.com")}
	st.profile = &domain.Profile{Username: "u"}
	s := app.NewSession(&fakeAPI{}, st)

	s.Logout()
	if st.Token() != "" {
		t.Fatalf("token should be evicted")
	}
	if _, ok := s.Profile(); ok {
		t.Fatalf("profile should be cleared")
	}
}

func TestRequireIdentifier(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		st := &fakeState{token: freshToken(t, "a@b.com")}
		s := app.NewSession(&fakeAPI{}, st)
		id, err := s.RequireIdentifier()
		if err != nil || id != "a@b.com" {
			t.Fatalf("got %q err=%v", id, err)
		}
	})

	t.Run("absent", func(t *testing.T) {
		s := app.NewSession(&fakeAPI{}, &fakeState{})
		if _, err := s.RequireIdentifier(); !errors.Is(err, domain.ErrLoginRequired) {
			t.Fatalf("expected ErrLoginRequired, got %v", err)
		}
	})

	t.Run("expired evicts", func(t *testing.T) {
		st := &fakeState{token: mintToken(t, map[string]any{
			"email": "a@b.com",
			"exp":   float64(time.Now().Add(-time.Minute).Unix()),
		})}
		s := app.NewSession(&fakeAPI{}, st)
		if _, err := s.RequireIdentifier(); !errors.Is(err, domain.ErrLoginRequired) {
			t.Fatalf("expected ErrLoginRequired, got %v", err)
		}
		if st.Token() != "" {
			t.Fatalf("expired token should be evicted")
		}
	})

	t.Run("undecodable evicts", func(t *testing.T) {
		st := &fakeState{token: "garbage"}
		s := app.NewSession(&fakeAPI{}, st)
		if _, err := s.RequireIdentifier(); !errors.Is(err, domain.ErrLoginRequired) {
			t.Fatalf("expected ErrLoginRequired, got %v", err)
		}
		if st.Token() != "" {
			t.Fatalf("undecodable token should be evicted")
		}
	})
}
