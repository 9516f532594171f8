// Package room holds the domain model for ephemeral multiplayer rooms and
// the registry that owns their lifecycle.
package room

import (
	"slices"

	"github.com/parleychat/parley-server/internal/updater"
)

// Room is an ephemeral multiplayer session. Values are treated as
// immutable: every mutation goes through an updater that returns a fresh
// value, so a pointer comparison is enough to detect a no-op.
type Room struct {
	ID      string
	Players []string // join order, no duplicates
	Chat    []ChatMessage
}

// ChatMessage is a single chat entry, immutable once appended. It belongs
// to exactly one room's log.
type ChatMessage struct {
	RoomID string
	UserID string
	Body   string
}

// Snapshot returns a deep copy safe to hand to another goroutine.
func (r *Room) Snapshot() *Room {
	return &Room{
		ID:      r.ID,
		Players: slices.Clone(r.Players),
		Chat:    slices.Clone(r.Chat),
	}
}

// HasPlayer reports whether userID is in the player list.
func (r *Room) HasPlayer(userID string) bool {
	return slices.Contains(r.Players, userID)
}

// NewJoinUpdater builds the join operation: appends userID to the player
// list, or no-ops when the user is already a member.
func NewJoinUpdater() *updater.Updater[*Room, string] {
	return updater.New(func(r *Room, userID string) (*Room, bool) {
		if r.HasPlayer(userID) {
			return r, false
		}
		next := *r
		next.Players = append(slices.Clip(slices.Clone(r.Players)), userID)
		return &next, true
	})
}

// NewLeaveUpdater builds the leave operation: removes userID from the
// player list, or no-ops when the user is not a member. Destroying an
// emptied room is the registry's job, not the transition's.
func NewLeaveUpdater() *updater.Updater[*Room, string] {
	return updater.New(func(r *Room, userID string) (*Room, bool) {
		i := slices.Index(r.Players, userID)
		if i < 0 {
			return r, false
		}
		next := *r
		next.Players = slices.Delete(slices.Clone(r.Players), i, i+1)
		return &next, true
	})
}

// NewAppendUpdater builds the message operation: appends a chat message to
// the log. Always a change. The caller validates that the message targets
// this room before applying.
func NewAppendUpdater() *updater.Updater[*Room, ChatMessage] {
	return updater.New(func(r *Room, msg ChatMessage) (*Room, bool) {
		next := *r
		next.Chat = append(slices.Clip(slices.Clone(r.Chat)), msg)
		return &next, true
	})
}
