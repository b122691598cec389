package statefile_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"easystay/internal/adapters/statefile"
	"easystay/internal/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := statefile.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("fresh store should have no token")
	}
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.SetProfile(domain.Profile{Username: "张三", Email: "a@b.com"}); err != nil {
		t.Fatalf("set profile: %v", err)
	}

	// reopen and verify persistence
	s2, err := statefile.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.Token() != "tok" {
		t.Fatalf("token not persisted, got %q", s2.Token())
	}
	p, ok := s2.Profile()
	if !ok || p.Username != "张三" {
		t.Fatalf("profile not persisted: %+v ok=%v", p, ok)
	}

	if err := s2.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	s3, _ := statefile.Open(path)
	if s3.Token() != "" {
		t.Fatalf("token eviction not persisted")
	}
}

func TestStore_CorruptFileIsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := statefile.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("corrupt state must read as logged out")
	}
}

func TestStore_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "state.json")
	s, _ := statefile.Open(path)
	if err := s.SetToken("secret"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("state file mode = %v, want 0600", st.Mode().Perm())
	}
}
