package comms

import "github.com/nitzanf/fakergame-go/internal/model"

// Event is one item on the server's single ordered event queue. The game
// loop goroutine consumes events one at a time; this is what serializes all
// roster and game-state mutation without locks.
type Event interface {
	isEvent()
}

// MessageEvent is a fully decoded application message from an open connection
type MessageEvent struct {
	ConnID model.ConnID
	Text   string
}

// JoinEvent is a username request from a connection that completed the key
// exchange. The game loop must pass it to Server.ResolveJoin, which replies
// to the client and unblocks its reader.
type JoinEvent struct {
	Username string

	c *conn
}

// LeaveEvent reports that a connection's reader terminated. The game loop
// must pass it to Server.HandleLeave.
type LeaveEvent struct {
	ConnID model.ConnID

	c *conn
}

func (MessageEvent) isEvent() {}
func (JoinEvent) isEvent()    {}
func (LeaveEvent) isEvent()   {}
