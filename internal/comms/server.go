// Package comms owns every live socket: the listener, the per-connection
// lifecycle (key exchange, username approval, open message decoding) and all
// send operations the game loop uses. It is the only package that touches
// the network.
//
// Concurrency model: one reader goroutine per connection feeds a single
// buffered event channel. Everything else (join approval, roster mutation,
// broadcasts, disconnect cleanup) runs on the game loop goroutine via the
// exported methods, so the roster has exactly one writer.
package comms

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/registry"
	"github.com/nitzanf/fakergame-go/internal/wire"
)

// Rejection reasons sent in N replies
const (
	reasonTaken      = "Username is already taken, please choose another"
	reasonInProgress = "Game is already in progress"
)

// Config holds listener settings
type Config struct {
	// Addr is the TCP listen address, e.g. ":7878"
	Addr string

	// EventBuffer is the capacity of the event queue. Readers block when
	// it is full, which backpressures onto the peers' sockets.
	EventBuffer int
}

// DefaultConfig returns sensible defaults for the comms server
func DefaultConfig() Config {
	return Config{
		Addr:        ":7878",
		EventBuffer: 256,
	}
}

// Server is the connection multiplexer
type Server struct {
	cfg      Config
	registry *registry.Registry
	random   random.Random
	logger   *slog.Logger

	listener net.Listener
	events   chan Event
	nextID   atomic.Int64

	// Loop-owned state: touched only from the game loop goroutine
	conns         map[model.ConnID]*conn
	inProgress    bool
	hasDisconnect bool
}

// New creates a comms server. The registry is shared with the game loop,
// which is the only goroutine allowed to call the send and roster methods.
func New(cfg Config, reg *registry.Registry, rnd random.Random, logger *slog.Logger) *Server {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	return &Server{
		cfg:      cfg,
		registry: reg,
		random:   rnd,
		logger:   logger,
		events:   make(chan Event, cfg.EventBuffer),
		conns:    make(map[model.ConnID]*conn),
	}
}

// Events returns the queue the game loop consumes
func (s *Server) Events() <-chan Event {
	return s.events
}

// Addr returns the bound listen address, useful with a ":0" config
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Start binds the listener and begins accepting connections
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))

	go s.acceptLoop()
	return nil
}

// Close stops accepting new connections. Live connections terminate through
// their readers as peers notice the server going away.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}
		c := newConn(model.ConnID(s.nextID.Add(1)), nc)
		s.logger.Info("connected", slog.String("addr", c.addr))
		go s.serveConn(c)
	}
}

// serveConn drives one connection through its lifecycle on its own
// goroutine. A failure at any stage affects only this socket.
func (s *Server) serveConn(c *conn) {
	if err := c.handshake(s); err != nil {
		s.logger.Info("handshake failed",
			slog.String("addr", c.addr),
			slog.String("error", err.Error()),
		)
		c.close()
		return
	}
	if err := c.awaitUsername(s); err != nil {
		s.logger.Info("disconnected before joining", slog.String("addr", c.addr))
		s.events <- LeaveEvent{ConnID: c.id, c: c}
		return
	}
	err := c.readLoop(s)
	if err != nil {
		s.logger.Debug("reader stopped",
			slog.String("addr", c.addr),
			slog.String("error", err.Error()),
		)
	}
	s.events <- LeaveEvent{ConnID: c.id, c: c}
}

// SetInProgress marks whether a game is running, which blocks new joins
func (s *Server) SetInProgress(v bool) {
	s.inProgress = v
}

// PopDisconnect reports whether any open connection dropped since the last
// call, and clears the flag
func (s *Server) PopDisconnect() bool {
	v := s.hasDisconnect
	s.hasDisconnect = false
	return v
}

// ResolveJoin decides a pending username request: during a game every join
// is refused, otherwise the name must be free among open connections. The
// reply always goes out before the reader is unblocked.
func (s *Server) ResolveJoin(e JoinEvent) {
	c := e.c
	if s.inProgress {
		s.reject(c, reasonInProgress)
		return
	}
	if s.registry.ByUsername(e.Username) != nil {
		s.reject(c, reasonTaken)
		return
	}

	if err := s.writeFrame(c, "Y"); err != nil {
		c.close()
		c.joinReply <- false
		return
	}

	s.conns[c.id] = c
	s.registry.Add(&model.Player{
		ConnID:     c.id,
		Addr:       c.addr,
		Username:   e.Username,
		SessionKey: c.sessionKey,
	})
	s.logger.Info("player joined",
		slog.String("addr", c.addr),
		slog.String("username", e.Username),
		slog.Int("players", s.registry.Count()),
	)
	s.broadcastRoster()
	c.joinReply <- true
}

func (s *Server) reject(c *conn, reason string) {
	if err := s.writeFrame(c, "N"+reason); err != nil {
		c.close()
	}
	c.joinReply <- false
}

// HandleLeave finishes a dead connection: closes the socket and, if it was
// open, removes the player, tells everyone and raises the disconnect flag.
// Reports whether the connection was open.
func (s *Server) HandleLeave(e LeaveEvent) bool {
	c := e.c
	c.close()
	if _, ok := s.conns[c.id]; !ok {
		return false
	}
	s.removeOpen(c)
	return true
}

// removeOpen drops an open connection from the roster and notifies the rest
func (s *Server) removeOpen(c *conn) {
	delete(s.conns, c.id)
	p := s.registry.Remove(c.id)
	username := ""
	if p != nil {
		username = p.Username
	}
	s.logger.Info("player disconnected",
		slog.String("addr", c.addr),
		slog.String("username", username),
		slog.Int("players", s.registry.Count()),
	)
	s.broadcastRoster()
	s.hasDisconnect = true
}

// drop tears down an open connection after a send failure
func (s *Server) drop(c *conn) {
	c.close()
	if _, ok := s.conns[c.id]; ok {
		s.removeOpen(c)
	}
}

// broadcastRoster sends the full player list to every open connection
func (s *Server) broadcastRoster() {
	s.SendAll("L" + strings.Join(s.registry.Usernames(), "&"))
}

// UsernameToConn resolves a username to its open connection id
func (s *Server) UsernameToConn(username string) (model.ConnID, bool) {
	p := s.registry.ByUsername(username)
	if p == nil {
		return 0, false
	}
	return p.ConnID, true
}

// SendOne sends a plain message to one open connection
func (s *Server) SendOne(id model.ConnID, text string) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	if err := s.writeFrame(c, text); err != nil {
		s.drop(c)
	}
}

// SendOneEncrypted sends an encrypted message to one open connection
func (s *Server) SendOneEncrypted(id model.ConnID, text string) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	if err := s.writeEncrypted(c, text); err != nil {
		s.drop(c)
	}
}

// SendAll sends a plain message to every open connection
func (s *Server) SendAll(text string) {
	s.SendAllExcept(text, 0)
}

// SendAllExcept sends a plain message to every open connection but one
func (s *Server) SendAllExcept(text string, except model.ConnID) {
	for _, c := range s.openSnapshot() {
		if c.id == except {
			continue
		}
		if _, ok := s.conns[c.id]; !ok {
			// Dropped by an earlier send failure in this same broadcast
			continue
		}
		if err := s.writeFrame(c, text); err != nil {
			s.drop(c)
		}
	}
}

// SendAllExceptEncrypted sends an encrypted message to every open
// connection but one. Each connection gets ciphertext under its own session
// key.
func (s *Server) SendAllExceptEncrypted(text string, except model.ConnID) {
	for _, c := range s.openSnapshot() {
		if c.id == except {
			continue
		}
		if _, ok := s.conns[c.id]; !ok {
			continue
		}
		if err := s.writeEncrypted(c, text); err != nil {
			s.drop(c)
		}
	}
}

// openSnapshot returns the open connections in roster order, so broadcasts
// can survive mid-iteration disconnects
func (s *Server) openSnapshot() []*conn {
	out := make([]*conn, 0, len(s.conns))
	for _, id := range s.registry.IDs() {
		if c, ok := s.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) writeFrame(c *conn, text string) error {
	if err := wire.WriteFrame(c.nc, text); err != nil {
		if errors.Is(err, wire.ErrPayloadSize) {
			// Oversized payload is a server bug, not a peer failure;
			// skip the send rather than dropping the peer
			s.logger.Error("payload exceeds plain frame limit",
				slog.Int("size", len(text)),
			)
			return nil
		}
		return err
	}
	return nil
}

func (s *Server) writeEncrypted(c *conn, text string) error {
	if err := wire.WriteEncryptedFrame(c.nc, c.cipher.Encrypt(text)); err != nil {
		if errors.Is(err, wire.ErrPayloadSize) {
			s.logger.Error("payload exceeds encrypted frame limit",
				slog.Int("size", len(text)),
			)
			return nil
		}
		return err
	}
	return nil
}
