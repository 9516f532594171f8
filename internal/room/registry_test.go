package room

import (
	"errors"
	"slices"
	"testing"
)

func TestCreateRegistersRoom(t *testing.T) {
	reg := NewRegistry()

	r := reg.Create("u1")
	if r.ID == "" {
		t.Fatalf("created room has no id")
	}
	if !slices.Equal(r.Players, []string{"u1"}) {
		t.Fatalf("unexpected players: %v", r.Players)
	}
	if len(r.Chat) != 0 {
		t.Fatalf("new room has chat entries: %v", r.Chat)
	}

	got, ok := reg.Get(r.ID)
	if !ok || got != r {
		t.Fatalf("created room not reachable via Get")
	}

	other := reg.Create("u2")
	if other.ID == r.ID {
		t.Fatalf("two rooms share an id")
	}
}

func TestApplyJoinUnknownRoom(t *testing.T) {
	reg := NewRegistry()

	_, _, err := reg.ApplyJoin("missing", "u1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyJoinDuplicateReportsUnchanged(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("u1")

	got, changed, err := reg.ApplyJoin(r.ID, "u1")
	if err != nil {
		t.Fatalf("duplicate join errored: %v", err)
	}
	if changed {
		t.Fatalf("duplicate join reported a change")
	}
	if got != r {
		t.Fatalf("duplicate join replaced the stored room")
	}
}

func TestLeaveToEmptyDestroysRoom(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("u1")

	out := reg.ApplyLeave("u1", r.ID)
	if !out.Changed || !out.Destroyed {
		t.Fatalf("last leave did not destroy: %+v", out)
	}
	if _, ok := reg.Get(r.ID); ok {
		t.Fatalf("destroyed room still reachable")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry not empty after destruction")
	}
}

func TestLeaveKeepsRoomWhenOthersRemain(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("u1")
	if _, _, err := reg.ApplyJoin(r.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	out := reg.ApplyLeave("u1", r.ID)
	if !out.Changed || out.Destroyed {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !slices.Equal(out.Room.Players, []string{"u2"}) {
		t.Fatalf("unexpected players: %v", out.Room.Players)
	}

	got, ok := reg.Get(r.ID)
	if !ok || got != out.Room {
		t.Fatalf("registry does not hold the post-leave room")
	}
}

func TestLeaveAbsorbsMissingRoom(t *testing.T) {
	reg := NewRegistry()
	reg.Create("u1")

	out := reg.ApplyLeave("u1", "missing")
	if out.Changed || out.Destroyed || out.Room != nil {
		t.Fatalf("leave of a missing room had an effect: %+v", out)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry state altered by missing-room leave")
	}
}

func TestApplyMessageScopedToItsRoom(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create("u1")
	b := reg.Create("u2")

	got, err := reg.ApplyMessage(ChatMessage{RoomID: a.ID, UserID: "u1", Body: "hi"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(got.Chat) != 1 || got.Chat[0].Body != "hi" {
		t.Fatalf("unexpected chat log: %v", got.Chat)
	}

	other, _ := reg.Get(b.ID)
	if len(other.Chat) != 0 {
		t.Fatalf("message leaked into another room: %v", other.Chat)
	}

	if _, err := reg.ApplyMessage(ChatMessage{RoomID: "missing", UserID: "u1", Body: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOnRoomChangeObserver(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("u1")

	var fired int
	reg.OnRoomChange(func(*Room) { fired++ })

	if _, _, err := reg.ApplyJoin(r.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := reg.ApplyJoin(r.ID, "u2"); err != nil { // duplicate, no change
		t.Fatalf("join: %v", err)
	}
	reg.ApplyLeave("u2", r.ID)

	if fired != 2 {
		t.Fatalf("observer fired %d times, want 2", fired)
	}
}
