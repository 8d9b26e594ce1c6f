package commands

import (
	"context"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
)

// IngestLocationCommandHandler appends a location sample to the ping log.
// Only the courier themselves (or an admin) may report, the courier must be
// on shift, and a sample referencing an order is accepted only from the
// courier holding that order's lease. Accepted samples fan out on both the
// courier channel and, when present, the order channel.
type IngestLocationCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  ports.EventPublisher
}

// NewIngestLocationCommandHandler creates a handler for location ingestion.
func NewIngestLocationCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher ports.EventPublisher,
) IngestLocationCommandHandler {
	return IngestLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle records the sample and returns the stored ping with its
// server-assigned timestamp.
func (h IngestLocationCommandHandler) Handle(
	ctx context.Context,
	command IngestLocationCommand,
) (*tracking.Ping, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	by := command.By()
	if !by.IsCourier(command.CourierID()) && by.Role != actor.RoleAdmin {
		return nil, errs.NewForbiddenError("ingest_location", command.CourierID().String())
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	reporter, err := uow.CourierRepository().Get(ctx, command.CourierID())
	if err != nil {
		return nil, err
	}
	if !reporter.IsOnline() {
		return nil, errs.NewCourierOfflineError(reporter.ID().String())
	}

	if command.OrderID() != nil {
		ref, err := uow.OrderRepository().GetRef(ctx, *command.OrderID())
		if err != nil {
			return nil, err
		}
		if ref.CourierID == nil || !ref.CourierID.IsEqual(command.CourierID()) {
			return nil, errs.NewForbiddenError("ingest_location", command.OrderID().String())
		}
	}

	ping, err := tracking.NewPing(
		kernel.NewUUID(), command.CourierID(), command.OrderID(),
		command.Point(), command.Accuracy(), command.Heading(), command.Speed(),
		command.IsManual(),
	)
	if err != nil {
		return nil, err
	}

	if err = uow.PingRepository().Add(ctx, ping); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	lat := ping.Point().Lat()
	lng := ping.Point().Lng()
	event := ports.Event{
		Kind:       ports.EventCourierLocation,
		CourierID:  ping.CourierID().String(),
		PingID:     ping.ID().String(),
		Lat:        &lat,
		Lng:        &lng,
		OccurredAt: ping.RecordedAt(),
	}
	h.publisher.Publish(ctx, ports.CourierChannel(ping.CourierID()), event)
	if ping.OrderID() != nil {
		event.OrderID = ping.OrderID().String()
		h.publisher.Publish(ctx, ports.OrderChannel(*ping.OrderID()), event)
	}

	return ping, nil
}
