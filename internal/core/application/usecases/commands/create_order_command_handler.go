package commands

import (
	"context"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/services"
	"kapgel/internal/pkg/errs"
)

// CreateOrderCommandHandler persists a new order with its item snapshots.
// Only customers (for themselves) and admins may place orders; the customer
// recorded on the order is always the acting user, never a caller-supplied
// identifier.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle validates the command, builds the aggregate and persists it in a
// single transaction. Returns the created order so the transport layer can
// render the response without a second read.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, command CreateOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	by := command.By()
	ref := order.Ref{ID: command.OrderID(), CustomerID: by.UserID, VendorID: command.VendorID()}
	if !services.NewAccessPolicy().CanAccess(by, ref, services.ActionCreate) {
		return nil, errs.NewForbiddenError(string(services.ActionCreate), command.OrderID().String())
	}

	items := make([]order.Item, 0, len(command.Items()))
	for _, in := range command.Items() {
		item, err := order.NewItem(kernel.NewUUID(), in.ProductID, in.Name, in.UnitPrice, in.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	aggregate, err := order.NewOrder(
		command.OrderID(), by.UserID, command.BranchID(), command.VendorID(),
		command.OrderType(), command.PaymentMethod(),
		command.Address(), command.Dropoff(), command.DeliveryFee(), items,
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
