package session

import "github.com/wricardo/chat-board-games/game/engine"

// Identity is an opaque player id plus a display name
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Binding assigns players to the two seats of a board. A seat is claimed by
// the first identity that moves for it and never changes afterwards.
// Binding is not synchronized; it lives inside a Session.
type Binding struct {
	slots [2]*Identity
}

// Player returns the identity bound to role
func (b *Binding) Player(role engine.Role) (Identity, bool) {
	i := role.Index()
	if i < 0 || b.slots[i] == nil {
		return Identity{}, false
	}
	return *b.slots[i], true
}

// Players returns copies of both seats
func (b *Binding) Players() [2]*Identity {
	var out [2]*Identity
	for i, id := range b.slots {
		if id != nil {
			c := *id
			out[i] = &c
		}
	}
	return out
}

// Check reports whether id may move for role without binding anything.
// Cooperative games pass RoleNone, which everyone may play.
func (b *Binding) Check(role engine.Role, id Identity) error {
	i := role.Index()
	if i < 0 {
		return nil
	}
	bound := b.slots[i]
	if bound == nil || bound.ID == id.ID {
		return nil
	}
	if other := b.slots[1-i]; other != nil && other.ID == id.ID {
		return engine.ErrNotYourTurn
	}
	return engine.ErrWrongPlayer
}

// BindOrCheck binds id to an empty seat, or verifies it holds the seat
func (b *Binding) BindOrCheck(role engine.Role, id Identity) error {
	if err := b.Check(role, id); err != nil {
		return err
	}
	if i := role.Index(); i >= 0 && b.slots[i] == nil {
		c := id
		b.slots[i] = &c
	}
	return nil
}
