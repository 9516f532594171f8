package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/parleychat/parley-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFetchUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" || created.Username != "alice" || created.IsGuest {
		t.Fatalf("unexpected user: %+v", created)
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected username: %s", byID.Username)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("id mismatch: %s != %s", byName.ID, created.ID)
	}
}

func TestDuplicateUsernameFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "hash2"); err == nil {
		t.Fatalf("duplicate username accepted")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateGuestUser(t *testing.T) {
	s := newTestStore(t)

	guest, err := s.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	if !guest.IsGuest {
		t.Fatalf("guest flag not set")
	}
	if guest.Username == "" {
		t.Fatalf("guest has no username")
	}
}

func TestGetUsersByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	b, err := s.CreateUser(ctx, "bob", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	users, err := s.GetUsersByIDs(ctx, []string{a.ID, b.ID, "unknown"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected order: %s, %s", users[0].Username, users[1].Username)
	}

	none, err := s.GetUsersByIDs(ctx, nil)
	if err != nil || none != nil {
		t.Fatalf("empty id list should be a no-op, got %v, %v", none, err)
	}
}
