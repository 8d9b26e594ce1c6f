// Package guard provides a small helper that enforces construction of value
// objects and commands through their factory functions. Embedding a
// ConstructorGuard makes the zero value of the enclosing type detectably
// invalid.
package guard

import "errors"

// ErrNotConstructed is the default error for zero-value guards.
var ErrNotConstructed = errors.New("object must be created via its constructor")

// ConstructorGuard marks whether the enclosing object went through a
// constructor. The zero value is unconstructed.
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a constructed guard. For a zero-value guard it
// returns notConstructedErr, or ErrNotConstructed when notConstructedErr is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.constructed {
		return nil
	}
	if notConstructedErr != nil {
		return notConstructedErr
	}
	return ErrNotConstructed
}
