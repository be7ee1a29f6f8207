package core

// Client is one live connection as seen by the core layer. Identity is
// bound later by a register command; until then every other command is
// rejected.
type Client struct {
	ConnID   string
	Commands chan *Command
	Events   chan *Event

	closed chan struct{}
}

// NewClient constructs a client with initialized channels. queue bounds
// the outbound event buffer; events beyond it are dropped for slow
// consumers.
func NewClient(connID string, queue int) *Client {
	if queue <= 0 {
		queue = 32
	}
	return &Client{
		ConnID:   connID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, queue),
		closed:   make(chan struct{}),
	}
}

// Closed is signalled once the hub has processed the client's disconnect.
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}
