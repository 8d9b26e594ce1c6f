package errs_test

import (
	"errors"
	"testing"
	"time"

	"kapgel/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "123")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "123", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: orderId, ID is: 123 (cause: database connection failed)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("reason")

		assert.Equal(t, "reason", err.ParamName)
		assert.Equal(t, "value is invalid: reason", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("reason", cause)

		assert.Equal(t, "value is invalid: reason (cause: invalid format)", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("quantity", 0, 1, 100)

	assert.Equal(t, "quantity", err.ParamName)
	assert.Equal(t, 0, err.Value)
	assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	assert.Contains(t, err.Error(), "min value is 1")
}

func TestInvalidCoordinatesError(t *testing.T) {
	err := errs.NewInvalidCoordinatesError("lat", 95, -90, 90)

	assert.Equal(t, "invalid coordinates: lat=95 is outside [-90, 90]", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidCoordinates)
	// Coordinate violations are still classified as range validation failures.
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestForbiddenError(t *testing.T) {
	err := errs.NewForbiddenError("transition", "order-1")

	assert.Equal(t, "forbidden: transition on order-1", err.Error())
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError("DELIVERED", "ON_ROUTE", "courier")

	assert.Equal(t, "DELIVERED", err.Current)
	assert.Equal(t, "ON_ROUTE", err.Requested)
	assert.Equal(t, "invalid transition: DELIVERED -> ON_ROUTE is not allowed for role courier", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestConcurrencyErrors(t *testing.T) {
	t.Run("stale state carries expected status", func(t *testing.T) {
		err := errs.NewStaleStateError("order-1", "NEW")

		assert.Equal(t, "stale state: order order-1 is no longer in status NEW", err.Error())
		require.ErrorIs(t, err, errs.ErrStaleState)
	})

	t.Run("already assigned", func(t *testing.T) {
		err := errs.NewAlreadyAssignedError("order-1")

		require.ErrorIs(t, err, errs.ErrAlreadyAssigned)
		assert.NotErrorIs(t, err, errs.ErrStaleState)
	})
}

func TestCourierErrors(t *testing.T) {
	require.ErrorIs(t, errs.NewCourierOfflineError("c-1"), errs.ErrCourierOffline)
	require.ErrorIs(t, errs.NewCourierUnavailableError("c-1"), errs.ErrCourierUnavailable)
}

func TestRateLimitedError(t *testing.T) {
	err := errs.NewRateLimitedError("courier:c-1", 4*time.Second)

	assert.Equal(t, 4*time.Second, err.RetryAfter)
	assert.Equal(t, "rate limited: courier:c-1, retry after 4s", err.Error())
	require.ErrorIs(t, err, errs.ErrRateLimited)
}

func TestSanitizeNewlines(t *testing.T) {
	err := errs.NewValueIsInvalidErrorWithCause("text", errors.New("hello\nworld"))

	assert.Contains(t, err.Error(), "hello world")
	assert.NotContains(t, err.Error(), "\n")
}
