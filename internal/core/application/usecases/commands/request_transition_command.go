package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand asks the engine to move an order to a new status.
// The caller names only the target status; whether the move is legal for the
// current status and the actor's role is decided by the state machine.
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	by        actor.Context
	requested order.Status
	reason    string

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand creates a transition request.
// The reason may be empty here; statuses that require one are rejected by the
// aggregate before the state machine runs.
func NewRequestTransitionCommand(
	orderID kernel.UUID,
	by actor.Context,
	requested order.Status,
	reason string,
) (RequestTransitionCommand, error) {
	if err := errors.Join(
		validateUUID("orderId", orderID),
		requested.Validate(),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return RequestTransitionCommand{
		orderID:   orderID,
		by:        by,
		requested: requested,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c RequestTransitionCommand) OrderID() kernel.UUID { return c.orderID }

// By returns the acting identity.
func (c RequestTransitionCommand) By() actor.Context { return c.by }

// Requested returns the target status.
func (c RequestTransitionCommand) Requested() order.Status { return c.requested }

// Reason returns the rejection/cancellation reason, possibly empty.
func (c RequestTransitionCommand) Reason() string { return c.reason }
