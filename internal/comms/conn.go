package comms

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/nitzanf/fakergame-go/internal/keyexch"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/wire"
)

// conn is one live socket. Its reader goroutine walks the lifecycle
// PendingKey -> PendingUsername -> Open, pushing events onto the server's
// queue. After the connection is Open, all writes come from the game loop
// goroutine; the reader only reads.
type conn struct {
	id   model.ConnID
	nc   net.Conn
	addr string
	r    *bufio.Reader

	// Set once during the key exchange, read-only afterwards
	sessionKey []byte
	cipher     *keyexch.SessionCipher

	// joinReply carries the loop's verdict on a join request back to the
	// reader goroutine
	joinReply chan bool

	closeOnce sync.Once
}

func newConn(id model.ConnID, nc net.Conn) *conn {
	addr := ""
	if ra := nc.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &conn{
		id:        id,
		nc:        nc,
		addr:      addr,
		r:         bufio.NewReader(nc),
		joinReply: make(chan bool, 1),
	}
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		_ = c.nc.Close()
	})
}

// handshake performs the server side of the key exchange: receive the
// client's fixed-size public key frame, reply with the encrypted session
// key. Runs on the conn's own goroutine so a slow peer never delays others.
func (c *conn) handshake(s *Server) error {
	keyFrame := make([]byte, keyexch.PublicKeyFrameSize)
	if _, err := io.ReadFull(c.r, keyFrame); err != nil {
		return err
	}
	pub, err := keyexch.ParsePublicKey(keyFrame)
	if err != nil {
		return err
	}

	sessionKey := keyexch.NewSessionKey(s.random)
	reply, err := keyexch.EncryptSessionKey(pub, sessionKey)
	if err != nil {
		return err
	}
	if _, err := c.nc.Write(reply); err != nil {
		return err
	}

	cipher, err := keyexch.NewSessionCipher(sessionKey, s.random)
	if err != nil {
		return err
	}
	c.sessionKey = sessionKey
	c.cipher = cipher
	return nil
}

// awaitUsername reads username requests until one is accepted or the socket
// dies. Rejected attempts leave the connection in place for a retry; frames
// that are not a username request are dropped.
func (c *conn) awaitUsername(s *Server) error {
	for {
		msg, err := wire.ReadFrame(c.r)
		if err != nil {
			return err
		}
		if len(msg) < 2 || msg[0] != 'U' {
			continue
		}
		s.events <- JoinEvent{Username: msg[1:], c: c}
		if <-c.joinReply {
			return nil
		}
	}
}

// readLoop decodes framed application messages (plain or announced as
// encrypted) and enqueues them until the socket dies
func (c *conn) readLoop(s *Server) error {
	for {
		msg, err := wire.ReadFrame(c.r)
		if err != nil {
			return err
		}
		if msg == wire.EncSentinel {
			body, err := wire.ReadEncryptedBody(c.r)
			if err != nil {
				return err
			}
			msg, err = c.cipher.Decrypt(body)
			if err != nil {
				return err
			}
		}
		if msg == "" {
			continue
		}
		s.events <- MessageEvent{ConnID: c.id, Text: msg}
	}
}
