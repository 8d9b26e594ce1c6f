package order

import (
	"fmt"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
)

// Item is a line of an order. It snapshots the product name and unit price at
// order time, so later catalog edits never change what was sold. Items are
// created atomically with the order and are immutable afterwards; there is no
// update path.
type Item struct {
	id        kernel.UUID
	productID kernel.UUID
	name      string
	unitPrice kernel.Money
	quantity  int
}

// NewItem creates a validated order line. Quantity must be positive; the line
// total is derived, never stored independently.
func NewItem(id, productID kernel.UUID, name string, unitPrice kernel.Money, quantity int) (Item, error) {
	if err := id.Validate(); err != nil {
		return Item{}, err
	}
	if err := productID.Validate(); err != nil {
		return Item{}, err
	}
	if name == "" {
		return Item{}, errs.NewValueIsRequiredError("name")
	}
	if quantity <= 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	return Item{
		id:        id,
		productID: productID,
		name:      name,
		unitPrice: unitPrice,
		quantity:  quantity,
	}, nil
}

// ID returns the line identifier.
func (i Item) ID() kernel.UUID { return i.id }

// ProductID returns the referenced product.
func (i Item) ProductID() kernel.UUID { return i.productID }

// Name returns the product name snapshot taken at order time.
func (i Item) Name() string { return i.name }

// UnitPrice returns the unit price snapshot taken at order time.
func (i Item) UnitPrice() kernel.Money { return i.unitPrice }

// Quantity returns the ordered quantity.
func (i Item) Quantity() int { return i.quantity }

// LineTotal returns unit price multiplied by quantity.
func (i Item) LineTotal() kernel.Money {
	return i.unitPrice.MulInt(i.quantity)
}
