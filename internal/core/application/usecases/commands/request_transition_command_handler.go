package commands

import (
	"context"

	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/services"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
)

// RequestTransitionCommandHandler applies a status change to an order.
// Authorization runs first on the cheap order projection, then the aggregate
// validates the move, and finally a conditional write guards against a
// concurrent transition winning the race. Exactly one writer succeeds; the
// loser gets StaleStateError and must re-read.
type RequestTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	notifier   ports.Notifier
}

// NewRequestTransitionCommandHandler creates a handler for status transitions.
func NewRequestTransitionCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		notifier:   notifier,
	}
}

// Handle processes the transition request and returns the updated order.
// Policy denials surface as ForbiddenError; the transport layer renders both
// that and ObjectNotFoundError identically so order existence does not leak.
func (h RequestTransitionCommandHandler) Handle(
	ctx context.Context,
	command RequestTransitionCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	ref, err := ordersRepo.GetRef(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}
	if !services.NewAccessPolicy().CanAccess(command.By(), ref, services.ActionTransition) {
		return nil, errs.NewForbiddenError(string(services.ActionTransition), command.OrderID().String())
	}

	aggregate, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	expected := aggregate.Status()
	if err = aggregate.TransitionTo(command.Requested(), command.By().Role, command.Reason()); err != nil {
		return nil, err
	}

	rows, err := ordersRepo.UpdateStatus(ctx, aggregate.ID(), expected, aggregate.Status(), aggregate.CancelReason())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errs.NewStaleStateError(aggregate.ID().String(), expected.String())
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, ports.OrderChannel(aggregate.ID()), ports.Event{
		Kind:       ports.EventOrderStatusChanged,
		OrderID:    aggregate.ID().String(),
		Status:     aggregate.Status().String(),
		Reason:     aggregate.CancelReason(),
		OccurredAt: timeNowUTC(),
	})
	h.notifier.NotifyStatusChanged(ctx, aggregate.ID().String(), aggregate.Status().String(), aggregate.CancelReason())

	return aggregate, nil
}
