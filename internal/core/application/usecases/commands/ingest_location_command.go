package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"
	"kapgel/internal/pkg/guard"
)

var ErrIngestLocationCommandIsNotConstructed = errors.New(
	"IngestLocationCommand must be created via NewIngestLocationCommand constructor",
)

// IngestLocationCommand records a courier location sample. Coordinates and
// the optional quality fields are all range-checked on construction, so a
// malformed sample never reaches a handler or touches storage.
type IngestLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	orderID   *kernel.UUID
	point     kernel.GeoPoint
	accuracy  *float64
	heading   *float64
	speed     *float64
	manual    bool
	by        actor.Context

	guard guard.ConstructorGuard
}

// NewIngestLocationCommand creates a location ingestion command.
func NewIngestLocationCommand(
	courierID kernel.UUID,
	orderID *kernel.UUID,
	lat, lng float64,
	accuracy, heading, speed *float64,
	manual bool,
	by actor.Context,
) (IngestLocationCommand, error) {
	if err := validateUUID("courierId", courierID); err != nil {
		return IngestLocationCommand{}, err
	}
	if orderID != nil {
		if err := validateUUID("orderId", *orderID); err != nil {
			return IngestLocationCommand{}, err
		}
	}
	point, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return IngestLocationCommand{}, err
	}
	if err = tracking.ValidateQuality(accuracy, heading, speed); err != nil {
		return IngestLocationCommand{}, err
	}

	return IngestLocationCommand{
		courierID: courierID,
		orderID:   orderID,
		point:     point,
		accuracy:  accuracy,
		heading:   heading,
		speed:     speed,
		manual:    manual,
		by:        by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestLocationCommand) Validate() error {
	return c.guard.Validate(ErrIngestLocationCommandIsNotConstructed)
}

// CourierID returns the reporting courier.
func (c IngestLocationCommand) CourierID() kernel.UUID { return c.courierID }

// OrderID returns the delivery the sample belongs to, or nil.
func (c IngestLocationCommand) OrderID() *kernel.UUID { return c.orderID }

// Point returns the validated coordinates.
func (c IngestLocationCommand) Point() kernel.GeoPoint { return c.point }

// Accuracy returns the reported accuracy in meters, or nil.
func (c IngestLocationCommand) Accuracy() *float64 { return c.accuracy }

// Heading returns the reported heading in degrees, or nil.
func (c IngestLocationCommand) Heading() *float64 { return c.heading }

// Speed returns the reported speed in m/s, or nil.
func (c IngestLocationCommand) Speed() *float64 { return c.speed }

// IsManual reports whether the sample was entered by hand.
func (c IngestLocationCommand) IsManual() bool { return c.manual }

// By returns the acting identity.
func (c IngestLocationCommand) By() actor.Context { return c.by }
