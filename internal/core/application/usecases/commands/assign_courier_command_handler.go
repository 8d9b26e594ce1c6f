package commands

import (
	"context"

	"kapgel/internal/core/domain/services"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
)

// AssignCourierCommandHandler leases an order to a courier.
// The courier must be on shift and available to the order's vendor. Holding
// another active delivery is rejected as a courtesy check; the actual
// single-winner guarantee comes from the conditional write on the order row,
// which succeeds only while the courier column is still empty.
type AssignCourierCommandHandler struct {
	uowFactory DispatchUoWFactory
	publisher  ports.EventPublisher
	notifier   ports.Notifier
}

// NewAssignCourierCommandHandler creates a handler for courier assignment.
func NewAssignCourierCommandHandler(
	uowFactory DispatchUoWFactory,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		notifier:   notifier,
	}
}

// Handle processes the assignment. Only vendor admins of the fulfilling
// vendor and admins may assign. Losing the race returns AlreadyAssignedError.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, command AssignCourierCommand) error {
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
	courierRepo := uow.CourierRepository()

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

	assignee, err := courierRepo.Get(ctx, command.CourierID())
	if err != nil {
		return err
	}
	if !assignee.IsOnline() {
		return errs.NewCourierOfflineError(assignee.ID().String())
	}
	if !assignee.AvailableTo(aggregate.VendorID()) {
		return errs.NewCourierUnavailableError(assignee.ID().String())
	}

	busy, err := ordersRepo.CourierHasActiveDelivery(ctx, assignee.ID())
	if err != nil {
		return err
	}
	if busy {
		return errs.NewCourierUnavailableError(assignee.ID().String())
	}

	// In-memory check first for precise errors on pickup orders and closed
	// statuses; the conditional write below settles concurrent winners.
	if err = aggregate.AssignCourier(assignee.ID()); err != nil {
		return err
	}

	rows, err := ordersRepo.AssignCourier(ctx, aggregate.ID(), assignee.ID())
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.NewAlreadyAssignedError(aggregate.ID().String())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ctx, ports.OrderChannel(aggregate.ID()), ports.Event{
		Kind:       ports.EventCourierAssigned,
		OrderID:    aggregate.ID().String(),
		CourierID:  assignee.ID().String(),
		Status:     aggregate.Status().String(),
		OccurredAt: timeNowUTC(),
	})
	h.notifier.NotifyCourierAssigned(ctx, aggregate.ID().String(), assignee.ID().String())

	return nil
}
