package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"github.com/chukwumela909/project-bolt/internal/config"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	if tok, _ := m.Load(); tok != "" {
		t.Errorf("expected empty store, got %q", tok)
	}
	if err := m.Save("abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := m.Load(); tok != "abc" {
		t.Errorf("expected abc, got %q", tok)
	}
	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if tok, _ := m.Load(); tok != "" {
		t.Errorf("expected cleared store, got %q", tok)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")
	f := NewFileStore(path)

	if tok, err := f.Load(); err != nil || tok != "" {
		t.Fatalf("missing file should load empty, got %q, %v", tok, err)
	}
	if err := f.Save("tok-123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600, got %o", perm)
	}

	if tok, _ := f.Load(); tok != "tok-123" {
		t.Errorf("expected tok-123, got %q", tok)
	}
	if err := f.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := f.Clear(); err != nil {
		t.Errorf("clearing twice should succeed: %v", err)
	}
}

func TestKeyringStore(t *testing.T) {
	ks := NewKeyringStore(keyring.NewArrayKeyring(nil), "test keyring")

	if tok, err := ks.Load(); err != nil || tok != "" {
		t.Fatalf("empty keyring should load empty, got %q, %v", tok, err)
	}
	if err := ks.Save("secret"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := ks.Load(); tok != "secret" {
		t.Errorf("expected secret, got %q", tok)
	}
	if err := ks.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := ks.Clear(); err != nil {
		t.Errorf("clearing a missing key should succeed: %v", err)
	}
	if ks.Name() != "test keyring" {
		t.Errorf("unexpected name %q", ks.Name())
	}
}

func TestSession_LoginLogout(t *testing.T) {
	t.Setenv(EnvToken, "")
	store := NewMemoryStore()
	s := New(store)

	if tok, _ := s.Token(); tok != "" {
		t.Errorf("expected logged out, got %q", tok)
	}
	if err := s.Login("  tok  "); err != nil {
		t.Fatal(err)
	}
	if tok, _ := s.Token(); tok != "tok" {
		t.Errorf("expected trimmed token, got %q", tok)
	}
	if stored, _ := store.Load(); stored != "tok" {
		t.Errorf("token not persisted, got %q", stored)
	}
	if err := s.Login(" "); err == nil {
		t.Error("expected error for empty token")
	}

	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if tok, _ := s.Token(); tok != "" {
		t.Errorf("expected empty token after logout, got %q", tok)
	}
}

func TestSession_LoadsPersistedToken(t *testing.T) {
	t.Setenv(EnvToken, "")
	store := NewMemoryStore()
	_ = store.Save("persisted")

	s := New(store)
	if tok, _ := s.Token(); tok != "persisted" {
		t.Errorf("expected persisted, got %q", tok)
	}
	if s.Source() != "memory" {
		t.Errorf("unexpected source %q", s.Source())
	}
}

func TestSession_EnvOverride(t *testing.T) {
	t.Setenv(EnvToken, "from-env")
	store := NewMemoryStore()
	_ = store.Save("persisted")

	s := New(store)
	if tok, _ := s.Token(); tok != "from-env" {
		t.Errorf("expected env token, got %q", tok)
	}
	if !strings.Contains(s.Source(), EnvToken) {
		t.Errorf("source should mention %s, got %q", EnvToken, s.Source())
	}
}

func TestOpenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")

	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"memory", "memory", false},
		{"file", "file " + path, false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			store, err := OpenStore(config.SessionConfig{Backend: tt.backend, Service: "stakedash-test", FilePath: path})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.Name() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, store.Name())
			}
		})
	}
}
