package room

import (
	"errors"

	"github.com/google/uuid"

	"github.com/parleychat/parley-server/internal/updater"
)

// ErrNotFound is returned when an operation targets a room id that is
// not (or no longer) registered.
var ErrNotFound = errors.New("room not found")

// Registry is the process-wide map of live rooms and the sole authority
// for their creation and destruction.
//
// It is not safe for concurrent use. All access must stay on a single
// goroutine (the hub's event loop); anyone adding concurrent callers must
// put their own per-room mutual exclusion in front of it first.
type Registry struct {
	rooms map[string]*Room

	join   *updater.Updater[*Room, string]
	leave  *updater.Updater[*Room, string]
	append *updater.Updater[*Room, ChatMessage]
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		join:   NewJoinUpdater(),
		leave:  NewLeaveUpdater(),
		append: NewAppendUpdater(),
	}
}

// OnRoomChange registers an observer fired after every transition that
// actually changed a room.
func (g *Registry) OnRoomChange(fn func(*Room)) {
	g.join.OnChange(fn)
	g.leave.OnChange(fn)
	g.append.OnChange(fn)
}

// Get looks up a live room by id.
func (g *Registry) Get(roomID string) (*Room, bool) {
	r, ok := g.rooms[roomID]
	return r, ok
}

// Len reports the number of live rooms.
func (g *Registry) Len() int {
	return len(g.rooms)
}

// Create registers a new room with userID as its sole player and a fresh
// id.
func (g *Registry) Create(userID string) *Room {
	r := &Room{
		ID:      uuid.NewString(),
		Players: []string{userID},
	}
	g.rooms[r.ID] = r
	return r
}

// ApplyJoin adds userID to the room's player list. A missing room is an
// error: joining a nonexistent room means the caller is operating on stale
// or invalid data. The returned flag reports whether the player list
// actually changed (false for a duplicate join).
func (g *Registry) ApplyJoin(roomID, userID string) (*Room, bool, error) {
	r, ok := g.rooms[roomID]
	if !ok {
		return nil, false, ErrNotFound
	}
	res := g.join.Apply(r, userID)
	if res.Changed {
		g.rooms[roomID] = res.Value
	}
	return res.Value, res.Changed, nil
}

// LeaveOutcome describes the effect of ApplyLeave.
type LeaveOutcome struct {
	Room      *Room // post-leave state; nil when the room was unknown or destroyed
	Changed   bool
	Destroyed bool
}

// ApplyLeave removes userID from the room. A missing room is not an
// error: the room may have just been closed by another member's departure,
// and leave must absorb that race silently. Removing the last player
// deletes the room from the registry; that is the only destruction
// trigger.
func (g *Registry) ApplyLeave(userID, roomID string) LeaveOutcome {
	r, ok := g.rooms[roomID]
	if !ok {
		return LeaveOutcome{}
	}
	res := g.leave.Apply(r, userID)
	if !res.Changed {
		return LeaveOutcome{Room: r}
	}
	if len(res.Value.Players) == 0 {
		delete(g.rooms, roomID)
		return LeaveOutcome{Changed: true, Destroyed: true}
	}
	g.rooms[roomID] = res.Value
	return LeaveOutcome{Room: res.Value, Changed: true}
}

// ApplyMessage appends msg to the room it names; the lookup by the
// message's own room id is what keeps a message from ever landing in
// another room's log. An unknown room is a caller error.
func (g *Registry) ApplyMessage(msg ChatMessage) (*Room, error) {
	r, ok := g.rooms[msg.RoomID]
	if !ok {
		return nil, ErrNotFound
	}
	res := g.append.Apply(r, msg)
	g.rooms[msg.RoomID] = res.Value
	return res.Value, nil
}
