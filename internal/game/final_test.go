package game

import (
	"time"
)

func (s *GameSuite) TestFinalStandingsBroadcast() {
	ids := s.addPlayers("alice", "bob", "carol", "dave")
	s.reg.Get(ids[0]).FakerPoints = 300
	s.reg.Get(ids[1]).DetectivePoints = 450
	s.reg.Get(ids[2]).FakerPoints = 150
	s.reg.Get(ids[2]).DetectivePoints = 400

	s.d.completedRounds = 4
	s.d.enqueue(startNewRound{})
	s.d.drainInstructions()

	// carol has the highest total (550); bob the best detective score
	s.Contains(s.mux.broadcasts(), "W0300alice&0450bob&0550carol")

	// After the reveal pause everyone returns to the lobby and the game
	// state resets
	s.Equal([]time.Duration{14 * time.Second}, s.clk.Sleeps)
	s.Contains(s.mux.broadcasts(), "Q")
	s.Equal("lobby", s.d.current.name())
	s.Equal(0, s.d.completedRounds)
	for _, p := range s.reg.Players() {
		s.Equal(0, p.TotalPoints())
		s.False(p.ChoseCategory)
	}
}

func (s *GameSuite) TestFinalStandingsFirstSeenWinsTies() {
	ids := s.addPlayers("alice", "bob", "carol", "dave")
	s.reg.Get(ids[1]).FakerPoints = 300
	s.reg.Get(ids[3]).FakerPoints = 300

	s.d.final.broadcastResults()

	// bob joined before dave, so bob keeps the title
	s.Contains(s.mux.broadcasts(), "W0300bob&0000alice&0300bob")
}

func (s *GameSuite) TestFinalStandingsAllZero() {
	s.addPlayers("alice", "bob", "carol", "dave")

	s.d.final.broadcastResults()

	// Titles fall to arbitrary players, the overall slot to the NOONE
	// sentinel
	s.Contains(s.mux.broadcasts(), "W0000alice&0000alice&0000NOONE")
}
