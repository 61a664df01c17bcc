package game

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/nitzanf/fakergame-go/internal/model"
)

// FakerTask is what the faker sees instead of the real task. The task
// broadcasts are encrypted so nobody can learn who got this message by
// watching raw traffic.
const FakerTask = "You are the faker!  try to blend in..."

// roundPhase runs the task cycles of one round: task setting, answering,
// voting and scoring
type roundPhase struct {
	d *Driver

	// pickedIDs tracks task ids used this game, per category, so a task
	// never repeats until the next game
	pickedIDs map[model.Category]map[model.TaskID]bool

	faker     model.ConnID
	fakerName string
	category  model.Category
	taskText  string
	cycle     int
	voting    bool
}

func newRoundPhase(d *Driver) *roundPhase {
	p := &roundPhase{d: d}
	p.resetPickedIDs()
	return p
}

func (p *roundPhase) name() string { return "round" }

// begin starts the first task cycle of a fresh round
func (p *roundPhase) begin(category model.Category) {
	p.category = category
	p.cycle = 0
	p.voting = false
	for _, player := range p.d.reg.Players() {
		player.RoundPoints = 0
	}
	p.chooseFaker()
	p.sendTask()
}

// chooseFaker picks a uniformly random player, independent of who chose
// the category
func (p *roundPhase) chooseFaker() {
	players := p.d.reg.Players()
	faker := players[p.d.random.Intn(len(players))]
	p.faker = faker.ConnID
	p.fakerName = faker.Username
	p.d.logger.Info("faker selected", slog.String("username", faker.Username))
}

// sendTask draws an unused task for the current category and deals it out:
// the real text to everyone but the faker, the blend-in message to the faker
func (p *roundPhase) sendTask() {
	p.voting = false

	task, err := p.pickUnusedTask()
	if err != nil {
		// The corpus is unusable; abandon the game rather than stall
		p.d.logger.Error("task draw failed", slog.Any("error", err))
		p.d.enqueue(backToLobby{})
		return
	}
	p.taskText = task.Text

	prefix := string(p.category.Prefix())
	p.d.mux.SendAllExceptEncrypted("T"+prefix+p.taskText, p.faker)
	p.d.mux.SendOneEncrypted(p.faker, "T"+prefix+FakerTask)
}

func (p *roundPhase) pickUnusedTask() (*model.Task, error) {
	used := p.pickedIDs[p.category]
	for {
		task, err := p.d.tasks.Pick(p.d.ctx, p.category)
		if err != nil {
			return nil, err
		}
		if used[task.ID] {
			continue
		}
		used[task.ID] = true
		return task, nil
	}
}

func (p *roundPhase) handleMessage(id model.ConnID, code byte, body string) {
	player := p.d.reg.Get(id)
	if player == nil || body == "" {
		return
	}

	switch {
	case code == 'A' && !p.voting:
		player.CurrentAnswer = body
		if p.allSubmitted() {
			p.startVoting()
			p.resetSubmissions()
		}
	case code == 'V' && p.voting:
		player.CurrentAnswer = body
		if p.allSubmitted() {
			p.finishVoting()
		}
	}
}

func (p *roundPhase) onDisconnect() {
	if !p.d.enoughToContinue() {
		return
	}
	if p.d.reg.Get(p.faker) != nil {
		return
	}
	// The faker left. Hand the role to someone else; if we are still in
	// the answering stage the cycle restarts with a fresh task, since the
	// old text already went out to the old faker's screen.
	p.chooseFaker()
	if !p.voting {
		p.sendTask()
	}
}

// allSubmitted reports whether every connected player has sent this stage's
// answer or vote
func (p *roundPhase) allSubmitted() bool {
	for _, player := range p.d.reg.Players() {
		if player.CurrentAnswer == "" {
			return false
		}
	}
	return true
}

// startVoting broadcasts all answers in roster order, then the task text,
// as one delimited message
func (p *roundPhase) startVoting() {
	p.voting = true
	var b strings.Builder
	b.WriteByte('V')
	for _, player := range p.d.reg.Players() {
		b.WriteString(player.CurrentAnswer)
		b.WriteByte('&')
	}
	b.WriteString(p.taskText)
	p.d.mux.SendAll(b.String())
}

// finishVoting tallies the votes, announces the result, applies scoring and
// either advances the cycle or ends the round
func (p *roundPhase) finishVoting() {
	players := p.d.reg.Players()
	openCount := len(players)

	// Tally per candidate; votes naming nobody connected are discarded.
	// First strictly-greater count wins, so ties go to the earlier player
	// in roster order.
	var leader *model.Player
	for _, voter := range players {
		candidate := p.d.reg.ByUsername(voter.CurrentAnswer)
		if candidate == nil {
			continue
		}
		candidate.VoteCount++
		if leader == nil || candidate.VoteCount > leader.VoteCount {
			leader = candidate
		}
	}

	caught := false
	if leader != nil && 2*leader.VoteCount > openCount {
		if leader.ConnID == p.faker {
			caught = true
			p.awardDetectives(players)
			p.d.mux.SendAll("GT" + p.fakerName + "T")
		} else {
			p.d.mux.SendAll("GT" + leader.Username + "F")
		}
		p.d.clock.Sleep(p.d.cfg.MajorityPause)
	} else {
		p.d.mux.SendAll("GF")
		p.d.clock.Sleep(p.d.cfg.NoMajorityPause)
	}

	p.resetSubmissions()

	if !caught {
		if faker := p.d.reg.Get(p.faker); faker != nil {
			points := 125 + 50*p.cycle
			faker.FakerPoints += points
			faker.RoundPoints += points
		}
	}

	if caught || p.cycle == p.d.cfg.TaskCycles-1 {
		p.broadcastRoundPoints()
		p.d.enqueue(startNewRound{})
		return
	}
	p.cycle++
	p.sendTask()
}

// awardDetectives pays every non-faker who voted for the faker. The reward
// shrinks the longer the faker survived.
func (p *roundPhase) awardDetectives(players []*model.Player) {
	points := 200 - 50*p.cycle
	for _, player := range players {
		if player.ConnID == p.faker || player.CurrentAnswer != p.fakerName {
			continue
		}
		player.DetectivePoints += points
		player.RoundPoints += points
	}
}

// broadcastRoundPoints sends each player's round delta, roster order
func (p *roundPhase) broadcastRoundPoints() {
	deltas := make([]string, 0, p.d.reg.Count())
	for _, player := range p.d.reg.Players() {
		deltas = append(deltas, strconv.Itoa(player.RoundPoints))
	}
	p.d.mux.SendAll("P" + strings.Join(deltas, "&"))
	p.d.clock.Sleep(p.d.cfg.RoundPointsPause)
}

func (p *roundPhase) resetSubmissions() {
	for _, player := range p.d.reg.Players() {
		player.CurrentAnswer = ""
		player.VoteCount = 0
	}
}

func (p *roundPhase) resetPickedIDs() {
	p.pickedIDs = make(map[model.Category]map[model.TaskID]bool, len(model.Categories))
	for _, c := range model.Categories {
		p.pickedIDs[c] = make(map[model.TaskID]bool)
	}
}
