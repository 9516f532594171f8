package room

import (
	"slices"
	"testing"
)

func TestJoinAppendsInOrder(t *testing.T) {
	join := NewJoinUpdater()
	r := &Room{ID: "r1", Players: []string{"u1"}}

	res := join.Apply(r, "u2")
	if !res.Changed {
		t.Fatalf("join of a new player reported no change")
	}
	if !slices.Equal(res.Value.Players, []string{"u1", "u2"}) {
		t.Fatalf("unexpected players: %v", res.Value.Players)
	}
	if !slices.Equal(r.Players, []string{"u1"}) {
		t.Fatalf("input room was mutated: %v", r.Players)
	}
}

func TestJoinIdempotent(t *testing.T) {
	join := NewJoinUpdater()
	r := &Room{ID: "r1", Players: []string{"u1", "u2"}}

	res := join.Apply(r, "u1")
	if res.Changed {
		t.Fatalf("duplicate join reported a change")
	}
	if res.Value != r {
		t.Fatalf("duplicate join returned a new room value")
	}
}

func TestLeaveRemovesPlayer(t *testing.T) {
	leave := NewLeaveUpdater()
	r := &Room{ID: "r1", Players: []string{"u1", "u2", "u3"}}

	res := leave.Apply(r, "u2")
	if !res.Changed {
		t.Fatalf("leave of a member reported no change")
	}
	if !slices.Equal(res.Value.Players, []string{"u1", "u3"}) {
		t.Fatalf("unexpected players: %v", res.Value.Players)
	}
	if !slices.Equal(r.Players, []string{"u1", "u2", "u3"}) {
		t.Fatalf("input room was mutated: %v", r.Players)
	}
}

func TestLeaveAbsentPlayerNoOp(t *testing.T) {
	leave := NewLeaveUpdater()
	r := &Room{ID: "r1", Players: []string{"u1"}}

	res := leave.Apply(r, "ghost")
	if res.Changed {
		t.Fatalf("leave of a non-member reported a change")
	}
	if res.Value != r {
		t.Fatalf("no-op leave returned a new room value")
	}
}

func TestAppendMessage(t *testing.T) {
	appendMsg := NewAppendUpdater()
	r := &Room{ID: "r1", Players: []string{"u1"}}

	msg := ChatMessage{RoomID: "r1", UserID: "u1", Body: "hi"}
	res := appendMsg.Apply(r, msg)
	if !res.Changed {
		t.Fatalf("append reported no change")
	}
	if len(res.Value.Chat) != 1 || res.Value.Chat[0] != msg {
		t.Fatalf("unexpected chat log: %v", res.Value.Chat)
	}
	if len(r.Chat) != 0 {
		t.Fatalf("input room chat was mutated: %v", r.Chat)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	r := &Room{ID: "r1", Players: []string{"u1"}, Chat: []ChatMessage{{RoomID: "r1", UserID: "u1", Body: "hi"}}}

	snap := r.Snapshot()
	snap.Players[0] = "zz"
	snap.Chat[0].Body = "edited"

	if r.Players[0] != "u1" || r.Chat[0].Body != "hi" {
		t.Fatalf("snapshot shares backing arrays with the room")
	}
}
