package http

import (
	"net/http"
	"strings"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "kapgel.actor"

// actorClaims is the token payload issued by the identity provider. The engine
// trusts the tuple after signature verification and performs no further
// credential checks.
type actorClaims struct {
	jwt.RegisteredClaims
	Role      string   `json:"role"`
	VendorIDs []string `json:"vendor_ids,omitempty"`
	CourierID string   `json:"courier_id,omitempty"`
}

// AuthMiddleware verifies the bearer token and attaches the acting identity to
// the request. Requests without a valid HS256 token are rejected with 401.
// An unknown role passes through as the zero role, which every authorization
// rule denies.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Code:    http.StatusUnauthorized,
					Message: "missing bearer token",
				})
			}

			claims := &actorClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !parsed.Valid {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Code:    http.StatusUnauthorized,
					Message: "invalid token",
				})
			}

			identity, err := claims.toActor()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Code:    http.StatusUnauthorized,
					Message: "invalid token subject",
				})
			}

			c.Set(actorContextKey, identity)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func (c *actorClaims) toActor() (actor.Context, error) {
	userID, err := kernel.UUIDFromString(c.Subject)
	if err != nil {
		return actor.Context{}, err
	}

	identity := actor.Context{
		UserID: userID,
		Role:   actor.ParseRole(c.Role),
	}

	for _, raw := range c.VendorIDs {
		vendorID, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return actor.Context{}, parseErr
		}
		identity.VendorIDs = append(identity.VendorIDs, vendorID)
	}

	if c.CourierID != "" {
		courierID, parseErr := kernel.UUIDFromString(c.CourierID)
		if parseErr != nil {
			return actor.Context{}, parseErr
		}
		identity.CourierID = &courierID
	}

	return identity, nil
}

// actorFrom returns the identity attached by AuthMiddleware. Routes behind the
// middleware always carry one; the zero value denies everything otherwise.
func actorFrom(c echo.Context) actor.Context {
	if identity, ok := c.Get(actorContextKey).(actor.Context); ok {
		return identity
	}
	return actor.Context{}
}
