package commands

import (
	"context"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
)

// ToggleShiftCommandHandler switches a courier's shift status.
// Couriers toggle themselves; admins may toggle anyone.
type ToggleShiftCommandHandler struct {
	uowFactory CourierUoWFactory
	publisher  ports.EventPublisher
}

// NewToggleShiftCommandHandler creates a handler for shift toggles.
func NewToggleShiftCommandHandler(
	uowFactory CourierUoWFactory,
	publisher ports.EventPublisher,
) ToggleShiftCommandHandler {
	return ToggleShiftCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle applies the toggle and fans the change out on the courier channel.
func (h ToggleShiftCommandHandler) Handle(ctx context.Context, command ToggleShiftCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	by := command.By()
	if !by.IsCourier(command.CourierID()) && by.Role != actor.RoleAdmin {
		return errs.NewForbiddenError("toggle_shift", command.CourierID().String())
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()

	aggregate, err := courierRepo.Get(ctx, command.CourierID())
	if err != nil {
		return err
	}
	if err = aggregate.SetShift(command.Status()); err != nil {
		return err
	}

	if err = courierRepo.SetShiftStatus(ctx, aggregate.ID(), aggregate.ShiftStatus()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, ports.CourierChannel(aggregate.ID()), ports.Event{
		Kind:       ports.EventCourierShift,
		CourierID:  aggregate.ID().String(),
		Status:     string(aggregate.ShiftStatus()),
		OccurredAt: timeNowUTC(),
	})

	return nil
}
