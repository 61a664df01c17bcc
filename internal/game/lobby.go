package game

import "github.com/nitzanf/fakergame-go/internal/model"

// lobbyPhase is the initial phase and the reset target. It only tracks
// ready toggles.
type lobbyPhase struct {
	d *Driver
}

func (p *lobbyPhase) name() string { return "lobby" }

func (p *lobbyPhase) handleMessage(id model.ConnID, code byte, body string) {
	if code != 'R' {
		return
	}
	player := p.d.reg.Get(id)
	if player == nil {
		return
	}

	var ready bool
	switch body {
	case "Y":
		ready = true
	case "N":
		ready = false
	default:
		return
	}
	if player.Ready == ready {
		// A redundant toggle must not re-trigger the start check, or a
		// stray ready message after the game condition is already met
		// would queue a second round start
		return
	}
	player.Ready = ready
	p.checkAllReady()
}

func (p *lobbyPhase) onDisconnect() {}

// checkAllReady starts the game once enough players are connected and every
// one of them is ready
func (p *lobbyPhase) checkAllReady() {
	if p.d.reg.Count() < p.d.cfg.MinPlayers {
		return
	}
	for _, player := range p.d.reg.Players() {
		if !player.Ready {
			return
		}
	}
	p.d.logger.Info("all players ready, starting game")
	p.d.enqueue(startNewRound{})
}
