package jobs

import (
	"context"
	"time"

	"kapgel/internal/core/application/usecases/commands"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/ports"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStaleness is how long a courier may stay silent before the watchdog
// forces them offline.
const DefaultStaleness = 10 * time.Minute

// ShiftWatchdogJob forces couriers offline when their location pings stop.
// Runs every minute; each sweep is one transaction, and shift change events
// are published after it commits.
type ShiftWatchdogJob struct {
	uowFactory commands.CourierUoWFactory
	publisher  ports.EventPublisher
	staleness  time.Duration
	cron       *cron.Cron
	logger     *zap.Logger
}

// NewShiftWatchdogJob creates the watchdog. A non-positive staleness falls
// back to DefaultStaleness.
func NewShiftWatchdogJob(
	uowFactory commands.CourierUoWFactory,
	publisher ports.EventPublisher,
	staleness time.Duration,
	logger *zap.Logger,
) *ShiftWatchdogJob {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &ShiftWatchdogJob{
		uowFactory: uowFactory,
		publisher:  publisher,
		staleness:  staleness,
		cron:       cron.New(),
		logger:     logger.With(zap.String("component", "shift_watchdog_job")),
	}
}

// Start schedules the watchdog to sweep every minute.
func (j *ShiftWatchdogJob) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		ctx := context.Background()
		if sweepErr := j.sweep(ctx); sweepErr != nil {
			j.logger.Error("shift watchdog sweep failed", zap.Error(sweepErr))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("shift watchdog started",
		zap.Duration("staleness", j.staleness))
	return nil
}

// Stop stops the watchdog.
func (j *ShiftWatchdogJob) Stop() {
	j.cron.Stop()
	j.logger.Info("shift watchdog stopped")
}

// sweep flips every stale online courier to offline and publishes a shift
// change per courier once the transaction commits.
func (j *ShiftWatchdogJob) sweep(ctx context.Context) error {
	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()

	cutoff := time.Now().UTC().Add(-j.staleness)
	stale, err := courierRepo.GetStale(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	forced := make([]kernel.UUID, 0, len(stale))
	for _, aggregate := range stale {
		if err = courierRepo.SetShiftStatus(ctx, aggregate.ID(), courier.ShiftOffline); err != nil {
			return err
		}
		forced = append(forced, aggregate.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	occurredAt := time.Now().UTC()
	for _, courierID := range forced {
		j.publisher.Publish(ctx, ports.CourierChannel(courierID), ports.Event{
			Kind:       ports.EventCourierShift,
			CourierID:  courierID.String(),
			Status:     string(courier.ShiftOffline),
			OccurredAt: occurredAt,
		})
		j.logger.Warn("forced stale courier offline", zap.String("courier_id", courierID.String()))
	}

	return nil
}
