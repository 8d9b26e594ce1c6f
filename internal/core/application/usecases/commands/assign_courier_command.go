package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand leases a delivery order to a courier. Under concurrent
// requests for the same order exactly one caller wins; everyone else receives
// AlreadyAssignedError from the handler.
type AssignCourierCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID
	by        actor.Context

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand creates a command to lease an order to a courier.
func NewAssignCourierCommand(orderID, courierID kernel.UUID, by actor.Context) (AssignCourierCommand, error) {
	if err := errors.Join(
		validateUUID("orderId", orderID),
		validateUUID("courierId", courierID),
	); err != nil {
		return AssignCourierCommand{}, err
	}

	return AssignCourierCommand{
		orderID:   orderID,
		courierID: courierID,
		by:        by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

// OrderID returns the order to lease.
func (c AssignCourierCommand) OrderID() kernel.UUID { return c.orderID }

// CourierID returns the courier receiving the lease.
func (c AssignCourierCommand) CourierID() kernel.UUID { return c.courierID }

// By returns the acting identity.
func (c AssignCourierCommand) By() actor.Context { return c.by }
