// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries bypass the aggregates and read optimized models straight from the
// database, but they run the same access policy as the write side.
package queries

import (
	"errors"
	"time"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves a single order with its item snapshots and derived
// totals, visible only to the parties of the order and admins.
type GetOrderQuery struct {
	orderID kernel.UUID
	by      actor.Context

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order.
func NewGetOrderQuery(orderID kernel.UUID, by actor.Context) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return GetOrderQuery{orderID: orderID, by: by, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order.
func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

// By returns the acting identity.
func (q GetOrderQuery) By() actor.Context { return q.by }

// GetOrderItemResponse is one order line in the read model.
type GetOrderItemResponse struct {
	ProductID kernel.UUID
	Name      string
	UnitPrice string
	Quantity  int
	LineTotal string
}

// GetOrderQueryResponse is the order read model. Monetary amounts are
// formatted strings with two fraction digits; totals are derived from the
// stored lines, never stored themselves.
type GetOrderQueryResponse struct {
	ID            kernel.UUID
	CustomerID    kernel.UUID
	BranchID      kernel.UUID
	VendorID      kernel.UUID
	CourierID     *kernel.UUID
	OrderType     string
	Status        string
	PaymentMethod string
	Address       string
	DropoffLat    *float64
	DropoffLng    *float64
	CancelReason  string
	Items         []GetOrderItemResponse
	ItemsTotal    string
	DeliveryFee   string
	Total         string
	CreatedAt     time.Time
}
