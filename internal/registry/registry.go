// Package registry holds the Player records for all open connections,
// addressed by stable connection id and iterated in join order. It is owned
// by the game loop goroutine; nothing here is safe for concurrent use.
package registry

import (
	"github.com/nitzanf/fakergame-go/internal/model"
)

// Registry is the arena of open players
type Registry struct {
	players map[model.ConnID]*model.Player
	order   []model.ConnID // join order; defines roster order on the wire
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		players: make(map[model.ConnID]*model.Player),
	}
}

// Add registers a player under its connection id
func (r *Registry) Add(p *model.Player) {
	if _, ok := r.players[p.ConnID]; ok {
		return
	}
	r.players[p.ConnID] = p
	r.order = append(r.order, p.ConnID)
}

// Remove deletes a player and returns its record, or nil if absent
func (r *Registry) Remove(id model.ConnID) *model.Player {
	p, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

// Get returns the player for a connection id, or nil
func (r *Registry) Get(id model.ConnID) *model.Player {
	return r.players[id]
}

// ByUsername returns the player with the given username, or nil
func (r *Registry) ByUsername(username string) *model.Player {
	for _, id := range r.order {
		if r.players[id].Username == username {
			return r.players[id]
		}
	}
	return nil
}

// Count returns the number of open players
func (r *Registry) Count() int {
	return len(r.players)
}

// Players returns all players in roster order
func (r *Registry) Players() []*model.Player {
	out := make([]*model.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// IDs returns all connection ids in roster order
func (r *Registry) IDs() []model.ConnID {
	out := make([]model.ConnID, len(r.order))
	copy(out, r.order)
	return out
}

// Usernames returns all usernames in roster order
func (r *Registry) Usernames() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id].Username)
	}
	return out
}
