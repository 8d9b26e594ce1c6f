package commands_test

import (
	"testing"
	"time"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, value string) kernel.Money {
	t.Helper()
	m, err := kernel.MoneyFromString(value)
	require.NoError(t, err)
	return m
}

func testItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), "Lahmacun", mustMoney(t, "6.00"), 2)
	require.NoError(t, err)
	return []order.Item{item}
}

// restoredOrder builds a delivery order in the given status, optionally
// leased to a courier, owned by the given customer and vendor.
func restoredOrder(
	t *testing.T,
	status order.Status,
	courierID *kernel.UUID,
	customerID, vendorID kernel.UUID,
) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		kernel.NewUUID(), customerID, kernel.NewUUID(), vendorID,
		courierID, order.TypeDelivery, status, order.PaymentCash,
		"28 May St 4", nil, mustMoney(t, "2.00"), testItems(t), "", time.Now().UTC(),
	)
	require.NoError(t, err)
	return o
}

func restoredCourier(t *testing.T, vendorID *kernel.UUID, shift courier.ShiftStatus) *courier.Courier {
	t.Helper()
	c, err := courier.RestoreCourier(
		kernel.NewUUID(), kernel.NewUUID(), vendorID, courier.VehicleMotorbike, shift, true,
	)
	require.NoError(t, err)
	return c
}

func customerOf(o *order.Order) actor.Context {
	return actor.Context{UserID: o.CustomerID(), Role: actor.RoleCustomer}
}

func vendorAdminOf(o *order.Order) actor.Context {
	return actor.Context{UserID: kernel.NewUUID(), Role: actor.RoleVendorAdmin, VendorIDs: []kernel.UUID{o.VendorID()}}
}
