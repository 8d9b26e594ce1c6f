package queries

import (
	"context"
	"database/sql"
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/services"
	"kapgel/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourierTrackQueryHandler reads the newest ping from the location log.
// Order-scoped tracks reuse the order access policy; courier-scoped tracks
// are restricted to the courier themselves and admins, since a courier's raw
// position is not tied to any order the caller could be party to.
type CourierTrackQueryHandler struct {
	db *gorm.DB
}

// NewCourierTrackQueryHandler creates a handler for track queries.
func NewCourierTrackQueryHandler(db *gorm.DB) CourierTrackQueryHandler {
	return CourierTrackQueryHandler{db: db}
}

// Handle authorizes the scope and returns the latest sample in it.
// Returns ObjectNotFoundError when no ping exists yet.
func (h CourierTrackQueryHandler) Handle(
	ctx context.Context,
	query CourierTrackQuery,
) (CourierTrackQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CourierTrackQueryResponse{}, err
	}

	var row *sql.Row
	switch {
	case query.OrderID() != nil:
		if err := h.authorizeOrderScope(ctx, query); err != nil {
			return CourierTrackQueryResponse{}, err
		}
		row = h.db.WithContext(ctx).Raw(latestPingSQL+` WHERE order_id = ? ORDER BY recorded_at DESC LIMIT 1`,
			query.OrderID().Bytes()).Row()
	default:
		by := query.By()
		if !by.IsCourier(*query.CourierID()) && by.Role != actor.RoleAdmin {
			return CourierTrackQueryResponse{}, errs.NewForbiddenError("track", query.CourierID().String())
		}
		row = h.db.WithContext(ctx).Raw(latestPingSQL+` WHERE courier_id = ? ORDER BY recorded_at DESC LIMIT 1`,
			query.CourierID().Bytes()).Row()
	}

	return scanTrackRow(row, query)
}

const latestPingSQL = `
	SELECT
		courier_id,
		order_id,
		lat,
		lng,
		accuracy,
		heading,
		speed,
		recorded_at
	FROM pings`

func (h CourierTrackQueryHandler) authorizeOrderScope(ctx context.Context, query CourierTrackQuery) error {
	var (
		id       uuid.UUID
		customer uuid.UUID
		vendor   uuid.UUID
		courier  uuid.NullUUID
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT id, customer_id, vendor_id, courier_id
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(&id, &customer, &vendor, &courier)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return err
	}

	ref := order.Ref{}
	if ref.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return err
	}
	if ref.CustomerID, err = kernel.UUIDFromBytes(customer[:]); err != nil {
		return err
	}
	if ref.VendorID, err = kernel.UUIDFromBytes(vendor[:]); err != nil {
		return err
	}
	if courier.Valid {
		courierID, idErr := kernel.UUIDFromBytes(courier.UUID[:])
		if idErr != nil {
			return idErr
		}
		ref.CourierID = &courierID
	}

	if !services.NewAccessPolicy().CanAccess(query.By(), ref, services.ActionRead) {
		return errs.NewForbiddenError("track", query.OrderID().String())
	}
	return nil
}

func scanTrackRow(row *sql.Row, query CourierTrackQuery) (CourierTrackQueryResponse, error) {
	var (
		response  CourierTrackQueryResponse
		courierID uuid.UUID
		orderID   uuid.NullUUID
	)

	err := row.Scan(
		&courierID, &orderID,
		&response.Lat, &response.Lng,
		&response.Accuracy, &response.Heading, &response.Speed,
		&response.RecordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if query.OrderID() != nil {
			return CourierTrackQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
		}
		return CourierTrackQueryResponse{}, errs.NewObjectNotFoundError("courierId", query.CourierID())
	}
	if err != nil {
		return CourierTrackQueryResponse{}, err
	}

	if response.CourierID, err = kernel.UUIDFromBytes(courierID[:]); err != nil {
		return CourierTrackQueryResponse{}, err
	}
	if orderID.Valid {
		ref, idErr := kernel.UUIDFromBytes(orderID.UUID[:])
		if idErr != nil {
			return CourierTrackQueryResponse{}, idErr
		}
		response.OrderID = &ref
	}

	return response, nil
}
