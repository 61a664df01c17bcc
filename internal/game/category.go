package game

import (
	"log/slog"

	"github.com/nitzanf/fakergame-go/internal/model"
)

// categoryPhase selects one player to choose the round's task category and
// waits for their pick
type categoryPhase struct {
	d *Driver

	chooser model.ConnID
}

func (p *categoryPhase) name() string { return "category" }

// start picks the chooser and announces them. Runs on phase entry and again
// if the chooser disconnects.
func (p *categoryPhase) start() {
	players := p.d.reg.Players()

	// Prefer players that have not chosen a category this game; once
	// everyone has, anyone may be picked again
	available := make([]*model.Player, 0, len(players))
	for _, player := range players {
		if !player.ChoseCategory {
			available = append(available, player)
		}
	}
	if len(available) == 0 {
		available = players
	}

	chosen := available[p.d.random.Intn(len(available))]
	chosen.ChoseCategory = true
	p.chooser = chosen.ConnID

	p.d.logger.Info("category chooser selected",
		slog.String("username", chosen.Username),
	)
	p.d.mux.SendAllExcept("C&"+chosen.Username, p.chooser)
	p.d.mux.SendOne(p.chooser, "CY")
}

func (p *categoryPhase) handleMessage(id model.ConnID, code byte, body string) {
	if code != 'C' || id != p.chooser {
		return
	}
	category, ok := model.ParseCategory(body)
	if !ok {
		return
	}
	p.d.enqueue(startRound{category: category})
}

func (p *categoryPhase) onDisconnect() {
	if !p.d.enoughToContinue() {
		return
	}
	if p.d.reg.Get(p.chooser) == nil {
		// The chooser left; rerun the selection among whoever remains
		p.start()
	}
}
