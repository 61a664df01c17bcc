package model

// ConnID is a stable identifier for a live connection. The transport layer
// and the registry both reference this id rather than the raw socket, so
// disconnect cleanup never chases a dangling handle.
type ConnID int64

// Player represents an approved game participant, bound to one connection
type Player struct {
	ConnID   ConnID
	Addr     string // peer address, for logging
	Username string

	// SessionKey is the symmetric key established during the handshake.
	// It lives for the life of the connection.
	SessionKey []byte

	// Cumulative scores for the current game
	DetectivePoints int
	FakerPoints     int

	// RoundPoints accumulates points earned in the current round only,
	// for the per-round results broadcast
	RoundPoints int

	// VoteCount is how many votes this player received this task cycle
	VoteCount int

	// CurrentAnswer holds the submitted answer or vote for the current
	// task cycle; empty means "not yet submitted"
	CurrentAnswer string

	// ChoseCategory is true once this player has chosen a category this game
	ChoseCategory bool

	// Ready is only meaningful in the lobby phase
	Ready bool
}

// TotalPoints returns the player's combined score
func (p *Player) TotalPoints() int {
	return p.DetectivePoints + p.FakerPoints
}

// ResetForLobby clears all per-game state when the server returns to lobby
func (p *Player) ResetForLobby() {
	p.Ready = false
	p.ChoseCategory = false
	p.DetectivePoints = 0
	p.FakerPoints = 0
	p.RoundPoints = 0
	p.VoteCount = 0
	p.CurrentAnswer = ""
}
