package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"kapgel/internal/adapters/out/postgres/orderrepo"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence against a
// real PostgreSQL instance, including the conditional writes under
// concurrency.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_items").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder() *order.Order {
	fee, err := kernel.MoneyFromString("2.50")
	suite.Require().NoError(err)
	price, err := kernel.MoneyFromString("7.00")
	suite.Require().NoError(err)
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), "Dolma", price, 3)
	suite.Require().NoError(err)

	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		order.TypeDelivery, order.PaymentCash,
		"Nizami St 12", nil, fee, []order.Item{item},
	)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) addOrder(o *order.Order) {
	suite.tracker.On("TrackAggregate", o.ID(), o).Once()
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID().String(), loaded.ID().String())
	suite.Equal(order.New, loaded.Status())
	suite.Len(loaded.Items(), 1)
	suite.Equal("23.50", loaded.Total().String())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetRef_ReturnsOwnerColumns() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	ref, err := suite.repository.GetRef(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(ref.CustomerID.IsEqual(testOrder.CustomerID()))
	suite.True(ref.VendorID.IsEqual(testOrder.VendorID()))
	suite.Nil(ref.CourierID)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_ConditionalOnExpected() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	rows, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Confirmed, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	// Second writer still expecting NEW loses.
	rows, err = suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.CanceledByUser, "")
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, loaded.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_PersistsReason() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	rows, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Rejected, "out of stock")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Rejected, loaded.Status())
	suite.Equal("out of stock", loaded.CancelReason())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAssignCourier_OnlyOneWinnerUnderConcurrency() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	rows, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Confirmed, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	const contenders = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, assignErr := suite.repository.AssignCourier(ctx, testOrder.ID(), kernel.NewUUID())
			if assignErr == nil && affected == 1 {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, wins)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Preparing, loaded.Status())
	suite.NotNil(loaded.CourierID())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUnassignCourier_RevertsToConfirmed() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	_, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Confirmed, "")
	suite.Require().NoError(err)

	courierID := kernel.NewUUID()
	rows, err := suite.repository.AssignCourier(ctx, testOrder.ID(), courierID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	rows, err = suite.repository.UpdateStatus(ctx, testOrder.ID(), order.Preparing, order.PickedUp, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	busy, err := suite.repository.CourierHasActiveDelivery(ctx, courierID)
	suite.Require().NoError(err)
	suite.True(busy)

	rows, err = suite.repository.UnassignCourier(ctx, testOrder.ID(), courierID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, loaded.Status())
	suite.Nil(loaded.CourierID())

	busy, err = suite.repository.CourierHasActiveDelivery(ctx, courierID)
	suite.Require().NoError(err)
	suite.False(busy)
}

// preparingOrderFor creates an order, confirms it and leases it to the courier.
func (suite *OrderRepositoryIntegrationTestSuite) preparingOrderFor(courierID kernel.UUID) *order.Order {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	rows, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Confirmed, "")
	suite.Require().NoError(err)
	suite.Require().Equal(int64(1), rows)

	rows, err = suite.repository.AssignCourier(ctx, testOrder.ID(), courierID)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(1), rows)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCourierHasActiveDelivery_AssignedOnlyIsStillFree() {
	ctx := context.Background()
	courierID := kernel.NewUUID()
	testOrder := suite.preparingOrderFor(courierID)

	busy, err := suite.repository.CourierHasActiveDelivery(ctx, courierID)
	suite.Require().NoError(err)
	suite.False(busy)

	rows, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.Preparing, order.PickedUp, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	busy, err = suite.repository.CourierHasActiveDelivery(ctx, courierID)
	suite.Require().NoError(err)
	suite.True(busy)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_PickupRefusedWhileCourierBusyElsewhere() {
	ctx := context.Background()
	courierID := kernel.NewUUID()
	carried := suite.preparingOrderFor(courierID)
	waiting := suite.preparingOrderFor(courierID)

	rows, err := suite.repository.UpdateStatus(ctx, carried.ID(), order.Preparing, order.PickedUp, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	// Second pickup for the same courier must not go through.
	rows, err = suite.repository.UpdateStatus(ctx, waiting.ID(), order.Preparing, order.PickedUp, "")
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows)

	loaded, err := suite.repository.Get(ctx, waiting.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Preparing, loaded.Status())

	// The carried order may still advance; only a second pickup is blocked.
	rows, err = suite.repository.UpdateStatus(ctx, carried.ID(), order.PickedUp, order.OnRoute, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)
	rows, err = suite.repository.UpdateStatus(ctx, carried.ID(), order.OnRoute, order.Delivered, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	// Once the first delivery completes, the held-back order picks up fine.
	rows, err = suite.repository.UpdateStatus(ctx, waiting.ID(), order.Preparing, order.PickedUp, "")
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_OnlyOnePickupPerCourierUnderConcurrency() {
	ctx := context.Background()
	courierID := kernel.NewUUID()

	const leased = 6
	orders := make([]*order.Order, 0, leased)
	for i := 0; i < leased; i++ {
		orders = append(orders, suite.preparingOrderFor(courierID))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, leasedOrder := range orders {
		wg.Add(1)
		go func(id kernel.UUID) {
			defer wg.Done()
			affected, pickupErr := suite.repository.UpdateStatus(ctx, id, order.Preparing, order.PickedUp, "")
			if pickupErr == nil && affected == 1 {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(leasedOrder.ID())
	}
	wg.Wait()

	suite.Equal(1, wins)

	busy, err := suite.repository.CourierHasActiveDelivery(ctx, courierID)
	suite.Require().NoError(err)
	suite.True(busy)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUnassignCourier_WrongCourierChangesNothing() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.addOrder(testOrder)

	_, err := suite.repository.UpdateStatus(ctx, testOrder.ID(), order.New, order.Confirmed, "")
	suite.Require().NoError(err)
	_, err = suite.repository.AssignCourier(ctx, testOrder.ID(), kernel.NewUUID())
	suite.Require().NoError(err)

	rows, err := suite.repository.UnassignCourier(ctx, testOrder.ID(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
