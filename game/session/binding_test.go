package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/chat-board-games/game/engine"
)

var (
	alice = Identity{ID: "1", Name: "Alice"}
	bob   = Identity{ID: "2", Name: "Bob"}
	carol = Identity{ID: "3", Name: "Carol"}
)

func TestBinding_BindOrCheck(t *testing.T) {
	var b Binding

	require.NoError(t, b.BindOrCheck(engine.RoleFirst, alice))
	require.NoError(t, b.BindOrCheck(engine.RoleFirst, alice), "holder may keep playing")
	require.NoError(t, b.BindOrCheck(engine.RoleSecond, bob))

	assert.ErrorIs(t, b.BindOrCheck(engine.RoleFirst, bob), engine.ErrNotYourTurn,
		"bob holds the other seat")
	assert.ErrorIs(t, b.BindOrCheck(engine.RoleFirst, carol), engine.ErrWrongPlayer,
		"carol holds no seat")

	first, ok := b.Player(engine.RoleFirst)
	require.True(t, ok)
	assert.Equal(t, alice, first)
	second, ok := b.Player(engine.RoleSecond)
	require.True(t, ok)
	assert.Equal(t, bob, second)
}

func TestBinding_CheckDoesNotBind(t *testing.T) {
	var b Binding

	require.NoError(t, b.Check(engine.RoleFirst, alice))

	_, ok := b.Player(engine.RoleFirst)
	assert.False(t, ok)
}

func TestBinding_SelfPlay(t *testing.T) {
	var b Binding

	require.NoError(t, b.BindOrCheck(engine.RoleFirst, alice))
	require.NoError(t, b.BindOrCheck(engine.RoleSecond, alice))

	players := b.Players()
	assert.Equal(t, alice, *players[0])
	assert.Equal(t, alice, *players[1])
}

func TestBinding_CooperativeRole(t *testing.T) {
	var b Binding

	assert.NoError(t, b.BindOrCheck(engine.RoleNone, alice))
	assert.NoError(t, b.BindOrCheck(engine.RoleNone, bob))
	assert.Equal(t, [2]*Identity{}, b.Players())
}

func TestBinding_PlayersAreCopies(t *testing.T) {
	var b Binding
	require.NoError(t, b.BindOrCheck(engine.RoleFirst, alice))

	players := b.Players()
	players[0].Name = "Mallory"

	first, _ := b.Player(engine.RoleFirst)
	assert.Equal(t, "Alice", first.Name)
}
