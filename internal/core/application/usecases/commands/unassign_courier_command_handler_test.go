package commands_test

import (
	"testing"

	"kapgel/internal/core/application/usecases/commands"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnassignCourierCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	aggregate := restoredOrder(t, order.Preparing, &courierID, kernel.NewUUID(), kernel.NewUUID())
	by := vendorAdminOf(aggregate)
	cmd, err := commands.NewUnassignCourierCommand(aggregate.ID(), by)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetRef", mock.Anything, aggregate.ID()).Return(aggregate.Ref(), nil).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("UnassignCourier", mock.Anything, aggregate.ID(), courierID).Return(int64(1), nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(FakePublisher)

	h := commands.NewUnassignCourierCommandHandler(factory, publisher)
	require.NoError(t, h.Handle(ctx, cmd))

	require.Len(t, publisher.events, 1)
	require.Equal(t, ports.EventCourierUnassigned, publisher.events[0].Kind)
	require.Equal(t, order.Confirmed.String(), publisher.events[0].Status)
	repo.AssertExpectations(t)
}

func TestUnassignCourierCommandHandler_Handle_NoCourierToRelease(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Confirmed, nil, kernel.NewUUID(), kernel.NewUUID())
	by := vendorAdminOf(aggregate)
	cmd, err := commands.NewUnassignCourierCommand(aggregate.ID(), by)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetRef", mock.Anything, aggregate.ID()).Return(aggregate.Ref(), nil).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUnassignCourierCommandHandler(factory, new(FakePublisher))
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	repo.AssertNotCalled(t, "UnassignCourier", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnassignCourierCommandHandler_Handle_DeliveredOrderWinsRace(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	aggregate := restoredOrder(t, order.OnRoute, &courierID, kernel.NewUUID(), kernel.NewUUID())
	by := vendorAdminOf(aggregate)
	cmd, err := commands.NewUnassignCourierCommand(aggregate.ID(), by)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetRef", mock.Anything, aggregate.ID()).Return(aggregate.Ref(), nil).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("UnassignCourier", mock.Anything, aggregate.ID(), courierID).Return(int64(0), nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUnassignCourierCommandHandler(factory, new(FakePublisher))
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrStaleState)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
