package session

import (
	"path/filepath"
	"testing"

	"github.com/msgtrik/trik/internal/chat"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s, err := OpenSnapshot(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testSnapshot(t)

	u := &User{
		Access:  "acc-1",
		Refresh: "ref-1",
		ID:      7,
		Email:   "alice@msgtrik.example",
		Profile: chat.Profile{Name: "Alice", AvatarColor: "#aabbcc"},
	}
	if err := s.Save(u); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil, want user")
	}
	if got.ID != 7 || got.Email != u.Email || got.Profile.Name != "Alice" {
		t.Errorf("loaded user = %+v", got)
	}
	if got.Access != "acc-1" || got.Refresh != "ref-1" {
		t.Errorf("tokens = %q/%q", got.Access, got.Refresh)
	}
}

func TestSnapshotEmptyMeansLoggedOut(t *testing.T) {
	s := testSnapshot(t)

	u, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("Load() = %+v, want nil for fresh snapshot", u)
	}
}

func TestSnapshotClear(t *testing.T) {
	s := testSnapshot(t)

	if err := s.Save(&User{Access: "a", ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	u, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("Load() after Clear = %+v, want nil", u)
	}
}

func TestSnapshotUpdateTokens(t *testing.T) {
	s := testSnapshot(t)

	if err := s.Save(&User{Access: "old", Refresh: "keep", ID: 3, Email: "b@x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTokens("new", ""); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	u, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if u.Access != "new" {
		t.Errorf("Access = %q, want new", u.Access)
	}
	if u.Refresh != "keep" {
		t.Errorf("Refresh = %q, want keep (empty refresh must not overwrite)", u.Refresh)
	}
	if u.ID != 3 || u.Email != "b@x" {
		t.Errorf("identity lost on token update: %+v", u)
	}
}

func TestSnapshotUpdateTokensWithoutSession(t *testing.T) {
	s := testSnapshot(t)

	if err := s.UpdateTokens("x", "y"); err == nil {
		t.Error("UpdateTokens() on empty snapshot expected error")
	}
}
