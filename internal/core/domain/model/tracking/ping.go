// Package tracking contains the location ping value object. Pings are
// append-only: history is never updated or deleted, which keeps trajectory
// reconstruction possible; only the most recent ping per (courier, order)
// pair is operationally relevant.
package tracking

import (
	"errors"
	"time"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

// Optional sample bounds.
const (
	HeadingMin = 0.0
	HeadingMax = 360.0
)

// ErrPingIsNotConstructed is returned when validating a zero-value Ping.
var ErrPingIsNotConstructed = errors.New("Ping must be created via NewPing or RestorePing")

// ValidateQuality range-checks the optional sample fields. Runs at command
// construction so a malformed sample is rejected before any storage access.
func ValidateQuality(accuracy, heading, speed *float64) error {
	if accuracy != nil && *accuracy < 0 {
		return errs.NewInvalidCoordinatesError("accuracy", *accuracy, 0, float64(1<<31))
	}
	if heading != nil && (*heading < HeadingMin || *heading > HeadingMax) {
		return errs.NewInvalidCoordinatesError("heading", *heading, HeadingMin, HeadingMax)
	}
	if speed != nil && *speed < 0 {
		return errs.NewInvalidCoordinatesError("speed", *speed, 0, float64(1<<31))
	}
	return nil
}

// Ping is a single geolocation sample reported by a courier. The order
// reference is nil when the courier is not delivering. RecordedAt is assigned
// by the server, never taken from the client.
type Ping struct {
	id         kernel.UUID
	courierID  kernel.UUID
	orderID    *kernel.UUID
	point      kernel.GeoPoint
	accuracy   *float64
	heading    *float64
	speed      *float64
	manual     bool
	recordedAt time.Time

	guard guard.ConstructorGuard
}

// NewPing creates a validated ping with a fresh server timestamp.
// All range violations (accuracy < 0, heading outside [0,360], speed < 0)
// surface as InvalidCoordinates before anything touches storage.
func NewPing(
	id, courierID kernel.UUID,
	orderID *kernel.UUID,
	point kernel.GeoPoint,
	accuracy, heading, speed *float64,
	manual bool,
) (*Ping, error) {
	if err := id.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	if err := courierID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return nil, errs.NewValueIsRequiredErrorWithCause("orderId", err)
		}
	}
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateQuality(accuracy, heading, speed); err != nil {
		return nil, err
	}

	return &Ping{
		id:         id,
		courierID:  courierID,
		orderID:    orderID,
		point:      point,
		accuracy:   accuracy,
		heading:    heading,
		speed:      speed,
		manual:     manual,
		recordedAt: time.Now().UTC(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestorePing reconstructs a ping from persistence with its stored timestamp.
func RestorePing(
	id, courierID kernel.UUID,
	orderID *kernel.UUID,
	point kernel.GeoPoint,
	accuracy, heading, speed *float64,
	manual bool,
	recordedAt time.Time,
) (*Ping, error) {
	p, err := NewPing(id, courierID, orderID, point, accuracy, heading, speed, manual)
	if err != nil {
		return nil, err
	}
	p.recordedAt = recordedAt
	return p, nil
}

// Validate ensures the Ping was built through a constructor.
func (p *Ping) Validate() error {
	if p == nil {
		return ErrPingIsNotConstructed
	}
	return p.guard.Validate(ErrPingIsNotConstructed)
}

// ID returns the ping identifier.
func (p *Ping) ID() kernel.UUID { return p.id }

// CourierID returns the reporting courier.
func (p *Ping) CourierID() kernel.UUID { return p.courierID }

// OrderID returns the delivery the ping belongs to, or nil.
func (p *Ping) OrderID() *kernel.UUID { return p.orderID }

// Point returns the sample coordinates.
func (p *Ping) Point() kernel.GeoPoint { return p.point }

// Accuracy returns the reported accuracy in meters, or nil.
func (p *Ping) Accuracy() *float64 { return p.accuracy }

// Heading returns the reported heading in degrees, or nil.
func (p *Ping) Heading() *float64 { return p.heading }

// Speed returns the reported speed in m/s, or nil.
func (p *Ping) Speed() *float64 { return p.speed }

// IsManual reports whether the sample was entered by hand.
func (p *Ping) IsManual() bool { return p.manual }

// RecordedAt returns the server-assigned timestamp.
func (p *Ping) RecordedAt() time.Time { return p.recordedAt }
