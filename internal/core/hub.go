package core

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/parleychat/parley-server/internal/room"
)

type hubMsg interface{ isHubMsg() }

type registerMsg struct{ client *Client }
type unregisterMsg struct{ client *Client }
type commandMsg struct {
	client *Client
	cmd    *Command
}

func (registerMsg) isHubMsg()   {}
func (unregisterMsg) isHubMsg() {}
func (commandMsg) isHubMsg()    {}

// Hub routes connection commands to the room registry and fans the
// resulting events back out to transport groups.
//
// All state the hub touches (its own maps, the registry, client Rooms
// sets) is owned by the single goroutine running Run. Commands are
// processed strictly one at a time; that ordering, not a mutex, is what
// keeps the registry safe.
type Hub struct {
	registry *room.Registry
	log      *zerolog.Logger

	inbox   chan hubMsg
	clients map[*Client]struct{}
	// groups maps a room id to the connections subscribed to its
	// broadcasts. A user with two tabs contributes two entries.
	groups map[string]map[*Client]struct{}
}

// NewHub constructs a hub over the given registry.
func NewHub(registry *room.Registry, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		registry: registry,
		log:      logger,
		inbox:    make(chan hubMsg, 64),
		clients:  make(map[*Client]struct{}),
		groups:   make(map[string]map[*Client]struct{}),
	}
	registry.OnRoomChange(func(r *room.Room) {
		logger.Debug().Str("room_id", r.ID).Int("players", len(r.Players)).Int("chat", len(r.Chat)).Msg("room state changed")
	})
	return h
}

// RegisterClient adds a connection to the hub and starts forwarding its
// commands into the event loop.
func (h *Hub) RegisterClient(c *Client) {
	h.inbox <- registerMsg{client: c}
	go func() {
		for cmd := range c.Commands {
			h.inbox <- commandMsg{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient removes a disconnected connection. The caller should
// close c.Commands first so the forwarding goroutine stops.
func (h *Hub) UnregisterClient(c *Client) {
	h.inbox <- unregisterMsg{client: c}
}

// Run processes hub messages until the context is cancelled. It must be
// the only goroutine touching hub and registry state.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.inbox:
			switch msg := m.(type) {
			case registerMsg:
				h.clients[msg.client] = struct{}{}
				h.log.Debug().Str("conn_id", msg.client.ConnID).Msg("client registered")
			case unregisterMsg:
				h.handleDisconnect(msg.client)
			case commandMsg:
				h.handleCommand(msg.client, msg.cmd)
			}
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	// A command can arrive interleaved with its connection's unregister;
	// once the client is gone its Events channel is closed, so drop it.
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandHello:
		// Rebinding an authenticated connection would strand the old
		// identity in its rooms, so the first hello wins.
		if c.Authenticated() {
			h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "connection already authenticated")})
			return
		}
		c.UserID = cmd.User
		c.Name = cmd.Name
		h.log.Info().Str("conn_id", c.ConnID).Str("user_id", c.UserID).Msg("client authenticated")
	case CommandCreateRoom:
		h.handleCreate(c)
	case CommandJoinRoom:
		h.handleJoin(c, cmd.RoomID)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd.RoomID)
	case CommandSendMessage:
		h.handleMessage(c, cmd.RoomID, cmd.Body)
	}
}

func (h *Hub) handleCreate(c *Client) {
	if !c.Authenticated() {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeUnauthorized, "authenticate before creating a room")})
		return
	}
	r := h.registry.Create(c.UserID)
	h.addToGroup(r.ID, c)
	h.send(c, &Event{Kind: EventRoomInfo, RoomID: r.ID, Room: r.Snapshot()})
	h.log.Info().Str("room_id", r.ID).Str("user_id", c.UserID).Msg("room created")
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	if !c.Authenticated() {
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeUnauthorized, "authenticate before joining a room")})
		return
	}
	r, changed, err := h.registry.ApplyJoin(roomID, c.UserID)
	if err != nil {
		// Joining a nonexistent room means the caller holds a stale or
		// bogus link; surface it loudly.
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeRoomNotFound, "room not found")})
		return
	}
	// The connection always enters the group, even on a duplicate join:
	// a second tab still needs the room's broadcasts.
	h.addToGroup(roomID, c)
	h.send(c, &Event{Kind: EventRoomInfo, RoomID: roomID, Room: r.Snapshot()})
	if changed {
		h.broadcastGroup(roomID, &Event{Kind: EventPlayersUpdate, RoomID: roomID, Players: slices.Clone(r.Players)}, c)
	}
	h.log.Info().Str("room_id", roomID).Str("user_id", c.UserID).Bool("changed", changed).Msg("join room")
}

func (h *Hub) handleLeave(c *Client, roomID string) {
	h.removeFromGroup(roomID, c)
	h.applyLeave(c.UserID, roomID)
}

func (h *Hub) handleMessage(c *Client, roomID, body string) {
	if !c.Authenticated() {
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeUnauthorized, "authenticate before sending messages")})
		return
	}
	if _, ok := c.Rooms[roomID]; !ok {
		if _, exists := h.registry.Get(roomID); !exists {
			h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeRoomNotFound, "room not found")})
			return
		}
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeRoomMismatch, "not subscribed to that room")})
		return
	}
	msg := room.ChatMessage{RoomID: roomID, UserID: c.UserID, Body: body}
	if _, err := h.registry.ApplyMessage(msg); err != nil {
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeRoomNotFound, "room not found")})
		return
	}
	// The sender already shows the message locally; only the rest of the
	// group needs the rebroadcast.
	h.broadcastGroup(roomID, &Event{Kind: EventMessage, RoomID: roomID, Message: msg}, c)
}

// handleDisconnect tears down a connection. The logical player only
// leaves a room when no other connection of the same user remains in its
// group, so closing one of two tabs does not evict the user.
func (h *Hub) handleDisconnect(c *Client) {
	for roomID := range c.Rooms {
		h.removeFromGroup(roomID, c)
		if h.userInGroup(roomID, c.UserID) {
			continue
		}
		h.applyLeave(c.UserID, roomID)
	}
	delete(h.clients, c)
	close(c.Events)
	h.log.Debug().Str("conn_id", c.ConnID).Msg("client unregistered")
}

// applyLeave runs the logical leave and fans out its consequences. A
// missing room is a benign race with another member's departure and is
// absorbed silently.
func (h *Hub) applyLeave(userID, roomID string) {
	out := h.registry.ApplyLeave(userID, roomID)
	switch {
	case out.Destroyed:
		// The group itself is being torn down, so the closure notice
		// goes to every connection rather than the room's group.
		for cl := range h.groups[roomID] {
			delete(cl.Rooms, roomID)
		}
		delete(h.groups, roomID)
		for cl := range h.clients {
			h.send(cl, &Event{Kind: EventRoomClosed, RoomID: roomID})
		}
		h.log.Info().Str("room_id", roomID).Msg("room closed")
	case out.Changed:
		h.broadcastGroup(roomID, &Event{Kind: EventPlayersUpdate, RoomID: roomID, Players: slices.Clone(out.Room.Players)}, nil)
		h.log.Info().Str("room_id", roomID).Str("user_id", userID).Msg("left room")
	}
}

func (h *Hub) addToGroup(roomID string, c *Client) {
	g, ok := h.groups[roomID]
	if !ok {
		g = make(map[*Client]struct{})
		h.groups[roomID] = g
	}
	g[c] = struct{}{}
	c.Rooms[roomID] = struct{}{}
}

func (h *Hub) removeFromGroup(roomID string, c *Client) {
	if g, ok := h.groups[roomID]; ok {
		delete(g, c)
		if len(g) == 0 {
			delete(h.groups, roomID)
		}
	}
	delete(c.Rooms, roomID)
}

func (h *Hub) userInGroup(roomID, userID string) bool {
	for cl := range h.groups[roomID] {
		if cl.UserID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) broadcastGroup(roomID string, event *Event, except *Client) {
	for cl := range h.groups[roomID] {
		if cl == except {
			continue
		}
		h.send(cl, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("conn_id", c.ConnID).Msg("dropping event for slow client")
	}
}
