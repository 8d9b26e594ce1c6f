package commands

import (
	"context"

	"kapgel/internal/core/domain/services"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
)

// UnassignCourierCommandHandler releases an order's courier lease.
// Like assignment, the write is conditional on the courier still holding the
// order in an active delivery status; a concurrent transition to DELIVERED
// wins over a late unassign.
type UnassignCourierCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewUnassignCourierCommandHandler creates a handler for lease release.
func NewUnassignCourierCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
) UnassignCourierCommandHandler {
	return UnassignCourierCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the release. Returns StaleStateError when the order moved
// out of the releasable window between read and write.
func (h UnassignCourierCommandHandler) Handle(ctx context.Context, command UnassignCourierCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	ref, err := ordersRepo.GetRef(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if !services.NewAccessPolicy().CanAccess(command.By(), ref, services.ActionUpdate) {
		return errs.NewForbiddenError(string(services.ActionUpdate), command.OrderID().String())
	}

	aggregate, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	expected := aggregate.Status()
	released := aggregate.CourierID()
	if err = aggregate.UnassignCourier(); err != nil {
		return err
	}

	rows, err := ordersRepo.UnassignCourier(ctx, aggregate.ID(), *released)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.NewStaleStateError(aggregate.ID().String(), expected.String())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, ports.OrderChannel(aggregate.ID()), ports.Event{
		Kind:       ports.EventCourierUnassigned,
		OrderID:    aggregate.ID().String(),
		CourierID:  released.String(),
		Status:     aggregate.Status().String(),
		OccurredAt: timeNowUTC(),
	})

	return nil
}
