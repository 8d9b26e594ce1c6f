package queries

import (
	"context"
	"database/sql"
	"errors"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/services"
	"kapgel/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order straight from the database.
// The access policy runs on the scanned owner columns before any line items
// are fetched, so a denied caller learns nothing beyond "not found".
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query and assembles the read model with derived totals.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var (
		response GetOrderQueryResponse
		id       uuid.UUID
		customer uuid.UUID
		branch   uuid.UUID
		vendor   uuid.UUID
		courier  uuid.NullUUID
		status   int16
		fee      string
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			branch_id,
			vendor_id,
			courier_id,
			order_type,
			status,
			payment_method,
			address,
			dropoff_lat,
			dropoff_lng,
			cancel_reason,
			delivery_fee,
			created_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id, &customer, &branch, &vendor, &courier,
		&response.OrderType, &status, &response.PaymentMethod,
		&response.Address, &response.DropoffLat, &response.DropoffLng,
		&response.CancelReason, &fee, &response.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.CustomerID, err = kernel.UUIDFromBytes(customer[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.BranchID, err = kernel.UUIDFromBytes(branch[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.VendorID, err = kernel.UUIDFromBytes(vendor[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if courier.Valid {
		courierID, idErr := kernel.UUIDFromBytes(courier.UUID[:])
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		response.CourierID = &courierID
	}
	response.Status = order.Status(status).String()

	ref := order.Ref{
		ID:         response.ID,
		CustomerID: response.CustomerID,
		VendorID:   response.VendorID,
		CourierID:  response.CourierID,
	}
	if !services.NewAccessPolicy().CanAccess(query.By(), ref, services.ActionRead) {
		return GetOrderQueryResponse{}, errs.NewForbiddenError(string(services.ActionRead), query.OrderID().String())
	}

	deliveryFee, err := kernel.MoneyFromString(fee)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	itemsTotal, err := h.loadItems(ctx, &response)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	response.ItemsTotal = itemsTotal.String()
	response.DeliveryFee = deliveryFee.String()
	response.Total = itemsTotal.Add(deliveryFee).String()
	return response, nil
}

func (h GetOrderQueryHandler) loadItems(ctx context.Context, response *GetOrderQueryResponse) (kernel.Money, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			product_id,
			name,
			unit_price,
			quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, response.ID.Bytes()).Rows()
	if err != nil {
		return kernel.Money{}, err
	}
	defer rows.Close()

	total := kernel.ZeroMoney()
	for rows.Next() {
		var (
			item    GetOrderItemResponse
			product uuid.UUID
			price   string
		)
		if err = rows.Scan(&product, &item.Name, &price, &item.Quantity); err != nil {
			return kernel.Money{}, err
		}

		if item.ProductID, err = kernel.UUIDFromBytes(product[:]); err != nil {
			return kernel.Money{}, err
		}
		unitPrice, priceErr := kernel.MoneyFromString(price)
		if priceErr != nil {
			return kernel.Money{}, priceErr
		}
		lineTotal := unitPrice.MulInt(item.Quantity)

		item.UnitPrice = unitPrice.String()
		item.LineTotal = lineTotal.String()
		total = total.Add(lineTotal)
		response.Items = append(response.Items, item)
	}

	return total, rows.Err()
}
