package courierrepo_test

import (
	"context"
	"testing"
	"time"

	"kapgel/internal/adapters/out/postgres/courierrepo"
	"kapgel/internal/adapters/out/postgres/pingrepo"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"
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

// CourierRepositoryIntegrationTestSuite verifies courier persistence,
// including the staleness query the shift watchdog depends on.
type CourierRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *courierrepo.GormCourierRepository
	tracker    *MockAggregateTracker
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&courierrepo.CourierDTO{}, &pingrepo.PingDTO{}))
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers, pings").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = courierrepo.NewGormCourierRepository(suite.db, suite.tracker)
}

func (suite *CourierRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CourierRepositoryIntegrationTestSuite) addCourier(vendorID *kernel.UUID, shift courier.ShiftStatus) *courier.Courier {
	c, err := courier.RestoreCourier(
		kernel.NewUUID(), kernel.NewUUID(), vendorID, courier.VehicleBicycle, shift, true,
	)
	suite.Require().NoError(err)
	suite.tracker.On("TrackAggregate", c.ID(), c).Once()
	suite.Require().NoError(suite.repository.Add(context.Background(), c))
	return c
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	vendorID := kernel.NewUUID()
	added := suite.addCourier(&vendorID, courier.ShiftOffline)

	loaded, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)
	suite.Equal(added.ID().String(), loaded.ID().String())
	suite.Equal(courier.ShiftOffline, loaded.ShiftStatus())
	suite.Require().NotNil(loaded.VendorID())
	suite.True(loaded.VendorID().IsEqual(vendorID))
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CourierRepositoryIntegrationTestSuite) TestSetShiftStatus() {
	ctx := context.Background()
	added := suite.addCourier(nil, courier.ShiftOffline)

	suite.Require().NoError(suite.repository.SetShiftStatus(ctx, added.ID(), courier.ShiftOnline))

	loaded, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)
	suite.True(loaded.IsOnline())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetOnline_FleetAndIndependents() {
	ctx := context.Background()
	vendorID := kernel.NewUUID()
	otherVendor := kernel.NewUUID()

	fleet := suite.addCourier(&vendorID, courier.ShiftOnline)
	independent := suite.addCourier(nil, courier.ShiftOnline)
	suite.addCourier(&otherVendor, courier.ShiftOnline)
	suite.addCourier(&vendorID, courier.ShiftOffline)

	online, err := suite.repository.GetOnline(ctx, vendorID)
	suite.Require().NoError(err)
	suite.Len(online, 2)

	ids := map[string]bool{}
	for _, c := range online {
		ids[c.ID().String()] = true
	}
	suite.True(ids[fleet.ID().String()])
	suite.True(ids[independent.ID().String()])
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetStale_FindsSilentCouriers() {
	ctx := context.Background()
	silent := suite.addCourier(nil, courier.ShiftOnline)
	fresh := suite.addCourier(nil, courier.ShiftOnline)
	suite.addCourier(nil, courier.ShiftOffline)

	point, err := kernel.NewGeoPoint(40.4093, 49.8671)
	suite.Require().NoError(err)
	ping, err := tracking.NewPing(kernel.NewUUID(), fresh.ID(), nil, point, nil, nil, nil, false)
	suite.Require().NoError(err)
	suite.Require().NoError(pingrepo.NewGormPingRepository(suite.db).Add(ctx, ping))

	stale, err := suite.repository.GetStale(ctx, time.Now().UTC().Add(-time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(stale, 1)
	suite.Equal(silent.ID().String(), stale[0].ID().String())
}

func TestCourierRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CourierRepositoryIntegrationTestSuite))
}
