package commands_test

import (
	"context"
	"time"

	"kapgel/internal/core/application/usecases/commands"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/model/tracking"
	"kapgel/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetRef(ctx context.Context, id kernel.UUID) (order.Ref, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Ref), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(
	ctx context.Context, id kernel.UUID, expected, next order.Status, reason string,
) (int64, error) {
	args := m.Called(ctx, id, expected, next, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) AssignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error) {
	args := m.Called(ctx, id, courierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UnassignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error) {
	args := m.Called(ctx, id, courierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CourierHasActiveDelivery(ctx context.Context, courierID kernel.UUID) (bool, error) {
	args := m.Called(ctx, courierID)
	return args.Bool(0), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) SetShiftStatus(
	ctx context.Context, id kernel.UUID, status courier.ShiftStatus,
) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCourierRepository) GetOnline(ctx context.Context, vendorID kernel.UUID) ([]*courier.Courier, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetStale(ctx context.Context, cutoff time.Time) ([]*courier.Courier, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockPingRepository struct{ mock.Mock }

func (m *MockPingRepository) Add(ctx context.Context, p *tracking.Ping) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPingRepository) GetLatestByCourier(ctx context.Context, courierID kernel.UUID) (*tracking.Ping, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Ping), args.Error(1)
}

func (m *MockPingRepository) GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*tracking.Ping, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Ping), args.Error(1)
}

// MockUoW satisfies every unit of work interface in this package, so each
// handler test uses the one mock regardless of how narrow its factory is.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

func (m *MockUoW) PingRepository() ports.PingRepository {
	args := m.Called()
	return args.Get(0).(ports.PingRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

type MockDispatchUoWFactory struct{ mock.Mock }

func (m *MockDispatchUoWFactory) Create() commands.DispatchUoW {
	args := m.Called()
	return args.Get(0).(commands.DispatchUoW)
}

type MockTrackingUoWFactory struct{ mock.Mock }

func (m *MockTrackingUoWFactory) Create() commands.TrackingUoW {
	args := m.Called()
	return args.Get(0).(commands.TrackingUoW)
}

// FakePublisher records published events in memory.
type FakePublisher struct {
	events   []ports.Event
	channels []string
}

func (f *FakePublisher) Publish(_ context.Context, channel string, event ports.Event) {
	f.channels = append(f.channels, channel)
	f.events = append(f.events, event)
}

// FakeNotifier records notification calls in memory.
type FakeNotifier struct {
	statusChanges   int
	courierAssigned int
}

func (f *FakeNotifier) NotifyStatusChanged(_ context.Context, _, _, _ string) {
	f.statusChanges++
}

func (f *FakeNotifier) NotifyCourierAssigned(_ context.Context, _, _ string) {
	f.courierAssigned++
}
