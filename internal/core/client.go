package core

// Client is one transport connection as seen by the hub. A user with
// several tabs open has several Clients sharing the same UserID.
type Client struct {
	ConnID string
	UserID string // empty until the connection authenticates
	Name   string

	Commands chan *Command
	Events   chan *Event

	// Rooms tracks which transport groups this connection belongs to.
	// Owned by the hub goroutine.
	Rooms map[string]struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string) *Client {
	return &Client{
		ConnID:   connID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		Rooms:    make(map[string]struct{}),
	}
}

// Authenticated reports whether the connection has presented an identity.
func (c *Client) Authenticated() bool {
	return c.UserID != ""
}
