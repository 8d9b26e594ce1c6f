package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/guard"
)

var ErrUnassignCourierCommandIsNotConstructed = errors.New(
	"UnassignCourierCommand must be created via NewUnassignCourierCommand constructor",
)

// UnassignCourierCommand releases the courier lease on an order, reverting it
// to CONFIRMED so it can be re-dispatched.
type UnassignCourierCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	by      actor.Context

	guard guard.ConstructorGuard
}

// NewUnassignCourierCommand creates a command to release an order's courier.
func NewUnassignCourierCommand(orderID kernel.UUID, by actor.Context) (UnassignCourierCommand, error) {
	if err := validateUUID("orderId", orderID); err != nil {
		return UnassignCourierCommand{}, err
	}

	return UnassignCourierCommand{
		orderID: orderID,
		by:      by,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UnassignCourierCommand) Validate() error {
	return c.guard.Validate(ErrUnassignCourierCommandIsNotConstructed)
}

// OrderID returns the order to release.
func (c UnassignCourierCommand) OrderID() kernel.UUID { return c.orderID }

// By returns the acting identity.
func (c UnassignCourierCommand) By() actor.Context { return c.by }
