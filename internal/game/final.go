package game

import (
	"fmt"
	"strings"

	"github.com/nitzanf/fakergame-go/internal/model"
)

// finalPhase shows the game's standings. No client messages are processed;
// after the reveal pause everyone goes back to the lobby.
type finalPhase struct {
	d *Driver
}

func (p *finalPhase) name() string { return "final" }

func (p *finalPhase) handleMessage(id model.ConnID, code byte, body string) {}

func (p *finalPhase) onDisconnect() {}

// broadcastResults sends the best faker, best detective and overall winner
// with their scores. Ties go to the earlier player in roster order.
func (p *finalPhase) broadcastResults() {
	players := p.d.reg.Players()

	var bestFaker, bestDetective, bestOverall *model.Player
	fakerMax, detectiveMax, overallMax := 0, 0, 0
	for _, player := range players {
		if player.FakerPoints > fakerMax {
			bestFaker, fakerMax = player, player.FakerPoints
		}
		if player.DetectivePoints > detectiveMax {
			bestDetective, detectiveMax = player, player.DetectivePoints
		}
		if player.TotalPoints() > overallMax {
			bestOverall, overallMax = player, player.TotalPoints()
		}
	}

	// An all-zero game still needs faker and detective titles; hand them
	// to random players with a zero score
	if bestFaker == nil {
		bestFaker = players[p.d.random.Intn(len(players))]
	}
	if bestDetective == nil {
		bestDetective = players[p.d.random.Intn(len(players))]
	}

	var b strings.Builder
	b.WriteByte('W')
	fmt.Fprintf(&b, "%04d%s&", fakerMax, bestFaker.Username)
	fmt.Fprintf(&b, "%04d%s&", detectiveMax, bestDetective.Username)
	if bestOverall != nil {
		fmt.Fprintf(&b, "%04d%s", overallMax, bestOverall.Username)
	} else {
		b.WriteString("0000NOONE")
	}
	p.d.mux.SendAll(b.String())

	p.d.clock.Sleep(p.d.cfg.FinalPause)
	p.d.enqueue(backToLobby{})
}
