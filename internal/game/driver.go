// Package game implements the phase-driven state machine that turns decoded
// client messages into broadcasts, scores and phase transitions. A single
// driver goroutine owns all game state; it is the only consumer of the comms
// event queue and the only mutator of the player registry.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nitzanf/fakergame-go/internal/comms"
	"github.com/nitzanf/fakergame-go/internal/dependencies/clock"
	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/registry"
	"github.com/nitzanf/fakergame-go/internal/tasks"
)

// Multiplexer is the slice of the comms server the game loop drives
type Multiplexer interface {
	ResolveJoin(e comms.JoinEvent)
	HandleLeave(e comms.LeaveEvent) bool
	PopDisconnect() bool
	SetInProgress(v bool)
	SendOne(id model.ConnID, text string)
	SendOneEncrypted(id model.ConnID, text string)
	SendAll(text string)
	SendAllExcept(text string, except model.ConnID)
	SendAllExceptEncrypted(text string, except model.ConnID)
}

var _ Multiplexer = (*comms.Server)(nil)

// Config holds the game rules and the fixed client-side reveal pauses
type Config struct {
	// MinPlayers is the open-connection floor for any non-lobby phase
	MinPlayers int
	// MaxRounds caps rounds per game; the effective cap is
	// min(player count, MaxRounds)
	MaxRounds int
	// TaskCycles is how many task cycles the faker must survive to win
	// a round
	TaskCycles int

	// Pauses give clients time to run reveal animations. They block the
	// whole loop; every connected client sees the same freeze.
	MajorityPause    time.Duration
	NoMajorityPause  time.Duration
	RoundPointsPause time.Duration
	FinalPause       time.Duration
}

// DefaultConfig returns the standard game rules
func DefaultConfig() Config {
	return Config{
		MinPlayers:       4,
		MaxRounds:        5,
		TaskCycles:       3,
		MajorityPause:    7500 * time.Millisecond,
		NoMajorityPause:  5500 * time.Millisecond,
		RoundPointsPause: 6500 * time.Millisecond,
		FinalPause:       14 * time.Second,
	}
}

// Phase transition instructions, queued by phases and drained by the driver
// between events
type instruction interface {
	isInstruction()
}

type startNewRound struct{}
type backToLobby struct{}
type startRound struct {
	category model.Category
}

func (startNewRound) isInstruction() {}
func (backToLobby) isInstruction()   {}
func (startRound) isInstruction()    {}

// phase is one variant of the state machine. Exactly one is active at a
// time, and all methods run on the driver goroutine.
type phase interface {
	name() string
	// handleMessage consumes one decoded application message. Out-of-turn
	// or malformed messages are dropped without reply.
	handleMessage(id model.ConnID, code byte, body string)
	// onDisconnect runs once after an open connection was removed
	onDisconnect()
}

// PlayerStatus is one roster entry in a status snapshot
type PlayerStatus struct {
	Username        string `json:"username"`
	DetectivePoints int    `json:"detective_points"`
	FakerPoints     int    `json:"faker_points"`
	TotalPoints     int    `json:"total_points"`
	Ready           bool   `json:"ready"`
}

// Status is a point-in-time snapshot of the game for the admin endpoints
type Status struct {
	Phase           string         `json:"phase"`
	Players         []PlayerStatus `json:"players"`
	CompletedRounds int            `json:"completed_rounds"`
	InProgress      bool           `json:"in_progress"`
}

// Driver runs the game loop
type Driver struct {
	cfg    Config
	mux    Multiplexer
	events <-chan comms.Event
	reg    *registry.Registry
	tasks  tasks.ServiceInterface
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	ctx          context.Context
	instructions []instruction

	current         phase
	lobby           *lobbyPhase
	category        *categoryPhase
	round           *roundPhase
	final           *finalPhase
	completedRounds int
	inProgress      bool

	statusMu sync.Mutex
	status   Status
}

// New creates a driver consuming the given event queue
func New(
	cfg Config,
	mux Multiplexer,
	events <-chan comms.Event,
	reg *registry.Registry,
	taskService tasks.ServiceInterface,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Driver {
	d := &Driver{
		cfg:    cfg,
		mux:    mux,
		events: events,
		reg:    reg,
		tasks:  taskService,
		clock:  clk,
		random: rnd,
		logger: logger.With(slog.String("component", "game")),
	}
	d.lobby = &lobbyPhase{d: d}
	d.category = &categoryPhase{d: d}
	d.round = newRoundPhase(d)
	d.final = &finalPhase{d: d}
	d.current = d.lobby
	d.publishStatus()
	return d
}

// Run consumes events until the context is cancelled. It must be the only
// goroutine touching the registry and the phases.
func (d *Driver) Run(ctx context.Context) error {
	d.ctx = ctx
	d.logger.Info("game loop started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("game loop stopped")
			return ctx.Err()
		case ev := <-d.events:
			d.handleEvent(ev)
		}
	}
}

func (d *Driver) handleEvent(ev comms.Event) {
	switch e := ev.(type) {
	case comms.JoinEvent:
		d.mux.ResolveJoin(e)
	case comms.LeaveEvent:
		d.mux.HandleLeave(e)
	case comms.MessageEvent:
		if len(e.Text) > 0 {
			body := ""
			if len(e.Text) > 1 {
				body = e.Text[1:]
			}
			d.current.handleMessage(e.ConnID, e.Text[0], body)
		}
	}

	// An open connection may have dropped, either via the leave event
	// above or mid-broadcast inside the active phase
	for d.mux.PopDisconnect() {
		d.current.onDisconnect()
	}

	d.drainInstructions()
	d.publishStatus()
}

func (d *Driver) enqueue(instr instruction) {
	d.instructions = append(d.instructions, instr)
}

func (d *Driver) drainInstructions() {
	for len(d.instructions) > 0 {
		instr := d.instructions[0]
		d.instructions = d.instructions[1:]

		switch in := instr.(type) {
		case backToLobby:
			d.toLobby()
		case startNewRound:
			d.toNextRound()
		case startRound:
			d.toRound(in.category)
		}
	}
}

// toLobby forces everyone back to the lobby and resets all per-game state
func (d *Driver) toLobby() {
	d.logger.Info("returning to lobby")
	d.mux.SendAll("Q")
	d.setInProgress(false)
	d.current = d.lobby
	d.round.resetPickedIDs()
	d.completedRounds = 0
	for _, p := range d.reg.Players() {
		p.ResetForLobby()
	}
}

// toNextRound either enters category choice for the next round, or the
// final screen once the round cap is reached
func (d *Driver) toNextRound() {
	// A disconnect between queueing and draining can empty the table
	if d.reg.Count() < d.cfg.MinPlayers {
		d.toLobby()
		return
	}
	d.setInProgress(true)
	if d.completedRounds == min(d.reg.Count(), d.cfg.MaxRounds) {
		d.current = d.final
		d.final.broadcastResults()
		return
	}
	d.current = d.category
	d.category.start()
	d.completedRounds++
}

func (d *Driver) toRound(category model.Category) {
	d.current = d.round
	d.round.begin(category)
}

// enoughToContinue checks the live player count before any phase action that
// assumes a running game. On shortfall it queues the lobby reset.
func (d *Driver) enoughToContinue() bool {
	if d.reg.Count() < d.cfg.MinPlayers {
		d.logger.Info("not enough players to continue",
			slog.Int("players", d.reg.Count()),
			slog.Int("min", d.cfg.MinPlayers),
		)
		d.completedRounds = 0
		d.enqueue(backToLobby{})
		return false
	}
	return true
}

func (d *Driver) setInProgress(v bool) {
	d.inProgress = v
	d.mux.SetInProgress(v)
}

func (d *Driver) publishStatus() {
	players := make([]PlayerStatus, 0, d.reg.Count())
	for _, p := range d.reg.Players() {
		players = append(players, PlayerStatus{
			Username:        p.Username,
			DetectivePoints: p.DetectivePoints,
			FakerPoints:     p.FakerPoints,
			TotalPoints:     p.TotalPoints(),
			Ready:           p.Ready,
		})
	}

	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.status = Status{
		Phase:           d.current.name(),
		Players:         players,
		CompletedRounds: d.completedRounds,
		InProgress:      d.inProgress,
	}
}

// Status returns a snapshot for the admin API. Safe to call from any
// goroutine.
func (d *Driver) Status() Status {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	return d.status
}
