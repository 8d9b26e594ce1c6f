package http

import (
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims actorClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func callWithToken(t *testing.T, token string) (*httptest.ResponseRecorder, actor.Context) {
	t.Helper()

	var captured actor.Context
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		captured = actorFrom(c)
		return c.NoContent(nethttp.StatusOK)
	}, AuthMiddleware(testSecret))

	request := httptest.NewRequest(nethttp.MethodGet, "/whoami", nil)
	if token != "" {
		request.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	return recorder, captured
}

func TestAuthMiddleware_BuildsActorFromClaims(t *testing.T) {
	userID := kernel.NewUUID()
	vendorID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	token := signToken(t, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:      "courier",
		VendorIDs: []string{vendorID.String()},
		CourierID: courierID.String(),
	})

	recorder, captured := callWithToken(t, token)

	require.Equal(t, nethttp.StatusOK, recorder.Code)
	assert.True(t, captured.UserID.IsEqual(userID))
	assert.Equal(t, actor.RoleCourier, captured.Role)
	require.Len(t, captured.VendorIDs, 1)
	assert.True(t, captured.VendorIDs[0].IsEqual(vendorID))
	require.NotNil(t, captured.CourierID)
	assert.True(t, captured.CourierID.IsEqual(courierID))
}

func TestAuthMiddleware_UnknownRoleBecomesZeroRole(t *testing.T) {
	token := signToken(t, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: kernel.NewUUID().String()},
		Role:             "superuser",
	})

	recorder, captured := callWithToken(t, token)

	require.Equal(t, nethttp.StatusOK, recorder.Code)
	assert.Equal(t, actor.Role(""), captured.Role)
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	recorder, _ := callWithToken(t, "")
	assert.Equal(t, nethttp.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_RejectsWrongSignature(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: kernel.NewUUID().String()},
		Role:             "admin",
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	recorder, _ := callWithToken(t, token)
	assert.Equal(t, nethttp.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	token := signToken(t, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kernel.NewUUID().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "admin",
	})

	recorder, _ := callWithToken(t, token)
	assert.Equal(t, nethttp.StatusUnauthorized, recorder.Code)
}

func TestStatusFor_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden hides as not found", errs.NewForbiddenError("read", "o1"), nethttp.StatusNotFound},
		{"object not found", errs.NewObjectNotFoundError("orderId", "o1"), nethttp.StatusNotFound},
		{"invalid transition", errs.NewInvalidTransitionError("NEW", "PICKED_UP", "courier"), nethttp.StatusConflict},
		{"stale state", errs.NewStaleStateError("o1", "NEW"), nethttp.StatusConflict},
		{"already assigned", errs.NewAlreadyAssignedError("o1"), nethttp.StatusConflict},
		{"courier unavailable", errs.NewCourierUnavailableError("c1"), nethttp.StatusConflict},
		{"courier offline", errs.NewCourierOfflineError("c1"), nethttp.StatusUnprocessableEntity},
		{"missing value", errs.NewValueIsRequiredError("items"), nethttp.StatusBadRequest},
		{"invalid value", errs.NewValueIsInvalidError("orderType"), nethttp.StatusBadRequest},
		{"bad coordinates", errs.NewInvalidCoordinatesError("lat", 95, -90, 90), nethttp.StatusBadRequest},
		{"rate limited", errs.NewRateLimitedError("c1", time.Second), nethttp.StatusTooManyRequests},
		{"unknown error", errors.New("boom"), nethttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = bearerToken("")
	assert.False(t, ok)
}
