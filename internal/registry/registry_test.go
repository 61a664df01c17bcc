package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitzanf/fakergame-go/internal/model"
)

func newPlayer(id model.ConnID, name string) *model.Player {
	return &model.Player{ConnID: id, Username: name}
}

func TestAddGetRemove(t *testing.T) {
	r := New()
	r.Add(newPlayer(1, "alice"))
	r.Add(newPlayer(2, "bob"))

	assert.Equal(t, 2, r.Count())
	require.NotNil(t, r.Get(1))
	assert.Equal(t, "alice", r.Get(1).Username)

	removed := r.Remove(1)
	require.NotNil(t, removed)
	assert.Equal(t, "alice", removed.Username)
	assert.Nil(t, r.Get(1))
	assert.Equal(t, 1, r.Count())

	assert.Nil(t, r.Remove(1))
}

func TestAddDuplicateIDIsNoop(t *testing.T) {
	r := New()
	r.Add(newPlayer(1, "alice"))
	r.Add(newPlayer(1, "impostor"))

	assert.Equal(t, 1, r.Count())
	assert.Equal(t, "alice", r.Get(1).Username)
}

func TestRosterOrderSurvivesRemoval(t *testing.T) {
	r := New()
	r.Add(newPlayer(1, "alice"))
	r.Add(newPlayer(2, "bob"))
	r.Add(newPlayer(3, "carol"))
	r.Add(newPlayer(4, "dave"))

	r.Remove(2)
	assert.Equal(t, []string{"alice", "carol", "dave"}, r.Usernames())

	// A rejoin goes to the back of the roster
	r.Add(newPlayer(5, "bob"))
	assert.Equal(t, []string{"alice", "carol", "dave", "bob"}, r.Usernames())
	assert.Equal(t, []model.ConnID{1, 3, 4, 5}, r.IDs())
}

func TestByUsername(t *testing.T) {
	r := New()
	r.Add(newPlayer(1, "alice"))
	r.Add(newPlayer(2, "bob"))

	p := r.ByUsername("bob")
	require.NotNil(t, p)
	assert.Equal(t, model.ConnID(2), p.ConnID)

	assert.Nil(t, r.ByUsername("nobody"))
}
