package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/guard"
)

var ErrToggleShiftCommandIsNotConstructed = errors.New(
	"ToggleShiftCommand must be created via NewToggleShiftCommand constructor",
)

// ToggleShiftCommand switches a courier on or off shift. Going offline never
// touches orders the courier already holds; active deliveries finish normally.
type ToggleShiftCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	status    courier.ShiftStatus
	by        actor.Context

	guard guard.ConstructorGuard
}

// NewToggleShiftCommand creates a shift toggle command.
func NewToggleShiftCommand(
	courierID kernel.UUID,
	status courier.ShiftStatus,
	by actor.Context,
) (ToggleShiftCommand, error) {
	if err := validateUUID("courierId", courierID); err != nil {
		return ToggleShiftCommand{}, err
	}
	if _, err := courier.ParseShiftStatus(string(status)); err != nil {
		return ToggleShiftCommand{}, err
	}

	return ToggleShiftCommand{
		courierID: courierID,
		status:    status,
		by:        by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ToggleShiftCommand) Validate() error {
	return c.guard.Validate(ErrToggleShiftCommandIsNotConstructed)
}

// CourierID returns the courier toggling their shift.
func (c ToggleShiftCommand) CourierID() kernel.UUID { return c.courierID }

// Status returns the requested shift status.
func (c ToggleShiftCommand) Status() courier.ShiftStatus { return c.status }

// By returns the acting identity.
func (c ToggleShiftCommand) By() actor.Context { return c.by }
