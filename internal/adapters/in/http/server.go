// Package http exposes the engine over a JSON REST API plus server-sent event
// streams. It translates wire payloads into commands and queries, maps domain
// errors onto HTTP statuses, and enforces nothing itself beyond token
// verification and transport rate limits; authorization lives in the core.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"kapgel/internal/core/application/usecases/commands"
	"kapgel/internal/core/application/usecases/queries"
	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/core/domain/model/tracking"
	"kapgel/internal/core/ports"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/ratelimit"
	"kapgel/internal/realtime"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Server wires HTTP routes to command and query handlers.
type Server struct {
	createOrderHandler       commands.CreateOrderCommandHandler
	requestTransitionHandler commands.RequestTransitionCommandHandler
	assignCourierHandler     commands.AssignCourierCommandHandler
	unassignCourierHandler   commands.UnassignCourierCommandHandler
	toggleShiftHandler       commands.ToggleShiftCommandHandler
	ingestLocationHandler    commands.IngestLocationCommandHandler

	getOrderHandler     queries.GetOrderQueryHandler
	courierTrackHandler queries.CourierTrackQueryHandler

	hub         *realtime.Hub
	pingLimiter *ratelimit.PerKeyLimiter
	logger      *zap.Logger
}

// NewServer creates the HTTP server over the given handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	requestTransitionHandler commands.RequestTransitionCommandHandler,
	assignCourierHandler commands.AssignCourierCommandHandler,
	unassignCourierHandler commands.UnassignCourierCommandHandler,
	toggleShiftHandler commands.ToggleShiftCommandHandler,
	ingestLocationHandler commands.IngestLocationCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	courierTrackHandler queries.CourierTrackQueryHandler,
	hub *realtime.Hub,
	pingLimiter *ratelimit.PerKeyLimiter,
	logger *zap.Logger,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		requestTransitionHandler: requestTransitionHandler,
		assignCourierHandler:     assignCourierHandler,
		unassignCourierHandler:   unassignCourierHandler,
		toggleShiftHandler:       toggleShiftHandler,
		ingestLocationHandler:    ingestLocationHandler,
		getOrderHandler:          getOrderHandler,
		courierTrackHandler:      courierTrackHandler,
		hub:                      hub,
		pingLimiter:              pingLimiter,
		logger:                   logger,
	}
}

// RegisterRoutes mounts all routes on the echo instance. Everything under
// /api/v1 requires a verified token; the health endpoint does not.
func (s *Server) RegisterRoutes(e *echo.Echo, jwtSecret []byte) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1", AuthMiddleware(jwtSecret))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:orderID", s.GetOrder)
	api.POST("/orders/:orderID/transition", s.RequestTransition)
	api.POST("/orders/:orderID/assign", s.AssignCourier)
	api.POST("/orders/:orderID/unassign", s.UnassignCourier)
	api.GET("/orders/:orderID/track", s.TrackOrder)
	api.GET("/orders/:orderID/events", s.StreamOrderEvents)

	api.POST("/couriers/:courierID/shift", s.ToggleShift)
	api.POST("/couriers/:courierID/locations", s.IngestLocation)
	api.GET("/couriers/:courierID/track", s.TrackCourier)
	api.GET("/couriers/:courierID/events", s.StreamCourierEvents)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type geoPointBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type orderItemBody struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	OrderID       string          `json:"order_id,omitempty"`
	BranchID      string          `json:"branch_id"`
	VendorID      string          `json:"vendor_id"`
	OrderType     string          `json:"order_type"`
	PaymentMethod string          `json:"payment_method"`
	Address       string          `json:"address,omitempty"`
	Dropoff       *geoPointBody   `json:"dropoff,omitempty"`
	DeliveryFee   string          `json:"delivery_fee,omitempty"`
	Items         []orderItemBody `json:"items"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type assignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

type toggleShiftRequest struct {
	Status string `json:"status"`
}

type ingestLocationRequest struct {
	OrderID  string   `json:"order_id,omitempty"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	Manual   bool     `json:"manual,omitempty"`
}

type orderBody struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	BranchID      string          `json:"branch_id"`
	VendorID      string          `json:"vendor_id"`
	CourierID     *string         `json:"courier_id,omitempty"`
	OrderType     string          `json:"order_type"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Address       string          `json:"address,omitempty"`
	Dropoff       *geoPointBody   `json:"dropoff,omitempty"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	Items         []orderItemBody `json:"items"`
	ItemsTotal    string          `json:"items_total"`
	DeliveryFee   string          `json:"delivery_fee"`
	Total         string          `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type pingBody struct {
	ID         string    `json:"id"`
	CourierID  string    `json:"courier_id"`
	OrderID    *string   `json:"order_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

type trackBody struct {
	CourierID  string    `json:"courier_id"`
	OrderID    *string   `json:"order_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func orderBodyFromAggregate(o *order.Order) orderBody {
	body := orderBody{
		ID:            o.ID().String(),
		CustomerID:    o.CustomerID().String(),
		BranchID:      o.BranchID().String(),
		VendorID:      o.VendorID().String(),
		OrderType:     string(o.OrderType()),
		Status:        o.Status().String(),
		PaymentMethod: string(o.PaymentMethod()),
		Address:       o.Address(),
		CancelReason:  o.CancelReason(),
		ItemsTotal:    o.ItemsTotal().String(),
		DeliveryFee:   o.DeliveryFee().String(),
		Total:         o.Total().String(),
		CreatedAt:     o.CreatedAt(),
	}
	if courierID := o.CourierID(); courierID != nil {
		id := courierID.String()
		body.CourierID = &id
	}
	if dropoff := o.Dropoff(); dropoff != nil {
		body.Dropoff = &geoPointBody{Lat: dropoff.Lat(), Lng: dropoff.Lng()}
	}
	for _, item := range o.Items() {
		body.Items = append(body.Items, orderItemBody{
			ProductID: item.ProductID().String(),
			Name:      item.Name(),
			UnitPrice: item.UnitPrice().String(),
			Quantity:  item.Quantity(),
		})
	}
	return body
}

func orderBodyFromQuery(response queries.GetOrderQueryResponse) orderBody {
	body := orderBody{
		ID:            response.ID.String(),
		CustomerID:    response.CustomerID.String(),
		BranchID:      response.BranchID.String(),
		VendorID:      response.VendorID.String(),
		OrderType:     response.OrderType,
		Status:        response.Status,
		PaymentMethod: response.PaymentMethod,
		Address:       response.Address,
		CancelReason:  response.CancelReason,
		ItemsTotal:    response.ItemsTotal,
		DeliveryFee:   response.DeliveryFee,
		Total:         response.Total,
		CreatedAt:     response.CreatedAt,
	}
	if response.CourierID != nil {
		id := response.CourierID.String()
		body.CourierID = &id
	}
	if response.DropoffLat != nil && response.DropoffLng != nil {
		body.Dropoff = &geoPointBody{Lat: *response.DropoffLat, Lng: *response.DropoffLng}
	}
	for _, item := range response.Items {
		body.Items = append(body.Items, orderItemBody{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return body
}

func pingBodyFromAggregate(p *tracking.Ping) pingBody {
	body := pingBody{
		ID:         p.ID().String(),
		CourierID:  p.CourierID().String(),
		Lat:        p.Point().Lat(),
		Lng:        p.Point().Lng(),
		RecordedAt: p.RecordedAt(),
	}
	if orderID := p.OrderID(); orderID != nil {
		id := orderID.String()
		body.OrderID = &id
	}
	return body
}

func trackBodyFromQuery(response queries.CourierTrackQueryResponse) trackBody {
	body := trackBody{
		CourierID:  response.CourierID.String(),
		Lat:        response.Lat,
		Lng:        response.Lng,
		Accuracy:   response.Accuracy,
		Heading:    response.Heading,
		Speed:      response.Speed,
		RecordedAt: response.RecordedAt,
	}
	if response.OrderID != nil {
		id := response.OrderID.String()
		body.OrderID = &id
	}
	return body
}

// ---------------------------------------------------------------------------
// Order endpoints
// ---------------------------------------------------------------------------

// CreateOrder handles POST /api/v1/orders.
// The client may supply order_id so retried requests stay idempotent.
func (s *Server) CreateOrder(c echo.Context) error {
	var request createOrderRequest
	if err := c.Bind(&request); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	orderID := kernel.NewUUID()
	if request.OrderID != "" {
		parsed, err := kernel.UUIDFromString(request.OrderID)
		if err != nil {
			return s.badRequest(c, "invalid order_id")
		}
		orderID = parsed
	}
	branchID, err := kernel.UUIDFromString(request.BranchID)
	if err != nil {
		return s.badRequest(c, "invalid branch_id")
	}
	vendorID, err := kernel.UUIDFromString(request.VendorID)
	if err != nil {
		return s.badRequest(c, "invalid vendor_id")
	}

	deliveryFee := kernel.ZeroMoney()
	if request.DeliveryFee != "" {
		if deliveryFee, err = kernel.MoneyFromString(request.DeliveryFee); err != nil {
			return s.respondError(c, err)
		}
	}

	var dropoff *kernel.GeoPoint
	if request.Dropoff != nil {
		point, pointErr := kernel.NewGeoPoint(request.Dropoff.Lat, request.Dropoff.Lng)
		if pointErr != nil {
			return s.respondError(c, pointErr)
		}
		dropoff = &point
	}

	items := make([]commands.ItemInput, 0, len(request.Items))
	for _, item := range request.Items {
		productID, itemErr := kernel.UUIDFromString(item.ProductID)
		if itemErr != nil {
			return s.badRequest(c, "invalid product_id")
		}
		unitPrice, itemErr := kernel.MoneyFromString(item.UnitPrice)
		if itemErr != nil {
			return s.respondError(c, itemErr)
		}
		items = append(items, commands.ItemInput{
			ProductID: productID,
			Name:      item.Name,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
		})
	}

	command, err := commands.NewCreateOrderCommand(
		orderID,
		actorFrom(c),
		branchID,
		vendorID,
		order.Type(request.OrderType),
		order.PaymentMethod(request.PaymentMethod),
		request.Address,
		dropoff,
		deliveryFee,
		items,
	)
	if err != nil {
		return s.respondError(c, err)
	}

	created, err := s.createOrderHandler.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, orderBodyFromAggregate(created))
}

// GetOrder handles GET /api/v1/orders/:orderID.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	response, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, orderBodyFromQuery(response))
}

// RequestTransition handles POST /api/v1/orders/:orderID/transition.
func (s *Server) RequestTransition(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	var request transitionRequest
	if err = c.Bind(&request); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	requested, err := order.ParseStatus(request.Status)
	if err != nil {
		return s.respondError(c, err)
	}

	command, err := commands.NewRequestTransitionCommand(orderID, actorFrom(c), requested, request.Reason)
	if err != nil {
		return s.respondError(c, err)
	}

	updated, err := s.requestTransitionHandler.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, orderBodyFromAggregate(updated))
}

// AssignCourier handles POST /api/v1/orders/:orderID/assign.
func (s *Server) AssignCourier(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	var request assignCourierRequest
	if err = c.Bind(&request); err != nil {
		return s.badRequest(c, "invalid request body")
	}
	courierID, err := kernel.UUIDFromString(request.CourierID)
	if err != nil {
		return s.badRequest(c, "invalid courier_id")
	}

	command, err := commands.NewAssignCourierCommand(orderID, courierID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	if err = s.assignCourierHandler.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UnassignCourier handles POST /api/v1/orders/:orderID/unassign.
func (s *Server) UnassignCourier(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	command, err := commands.NewUnassignCourierCommand(orderID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	if err = s.unassignCourierHandler.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// TrackOrder handles GET /api/v1/orders/:orderID/track.
func (s *Server) TrackOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewCourierTrackQueryByOrder(orderID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	response, err := s.courierTrackHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, trackBodyFromQuery(response))
}

// ---------------------------------------------------------------------------
// Courier endpoints
// ---------------------------------------------------------------------------

// ToggleShift handles POST /api/v1/couriers/:courierID/shift.
func (s *Server) ToggleShift(c echo.Context) error {
	courierID, err := pathUUID(c, "courierID")
	if err != nil {
		return s.respondError(c, err)
	}

	var request toggleShiftRequest
	if err = c.Bind(&request); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	command, err := commands.NewToggleShiftCommand(courierID, courier.ShiftStatus(request.Status), actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	if err = s.toggleShiftHandler.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// IngestLocation handles POST /api/v1/couriers/:courierID/locations.
// Samples are admitted through a per-courier token bucket before any work
// happens; a denied request carries a Retry-After header.
func (s *Server) IngestLocation(c echo.Context) error {
	courierID, err := pathUUID(c, "courierID")
	if err != nil {
		return s.respondError(c, err)
	}

	if allowed, retryAfter := s.pingLimiter.Allow(courierID.String()); !allowed {
		return s.respondError(c, errs.NewRateLimitedError(courierID.String(), retryAfter))
	}

	var request ingestLocationRequest
	if err = c.Bind(&request); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	var orderID *kernel.UUID
	if request.OrderID != "" {
		parsed, parseErr := kernel.UUIDFromString(request.OrderID)
		if parseErr != nil {
			return s.badRequest(c, "invalid order_id")
		}
		orderID = &parsed
	}

	command, err := commands.NewIngestLocationCommand(
		courierID,
		orderID,
		request.Lat,
		request.Lng,
		request.Accuracy,
		request.Heading,
		request.Speed,
		request.Manual,
		actorFrom(c),
	)
	if err != nil {
		return s.respondError(c, err)
	}

	ping, err := s.ingestLocationHandler.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusAccepted, pingBodyFromAggregate(ping))
}

// TrackCourier handles GET /api/v1/couriers/:courierID/track.
func (s *Server) TrackCourier(c echo.Context) error {
	courierID, err := pathUUID(c, "courierID")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewCourierTrackQueryByCourier(courierID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}

	response, err := s.courierTrackHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, trackBodyFromQuery(response))
}

// ---------------------------------------------------------------------------
// Event streams
// ---------------------------------------------------------------------------

// StreamOrderEvents handles GET /api/v1/orders/:orderID/events.
// Access follows the order read rule; an order invisible to the caller streams
// nothing and reports not found.
func (s *Server) StreamOrderEvents(c echo.Context) error {
	orderID, err := pathUUID(c, "orderID")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actorFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	if _, err = s.getOrderHandler.Handle(c.Request().Context(), query); err != nil {
		return s.respondError(c, err)
	}

	return s.stream(c, ports.OrderChannel(orderID))
}

// StreamCourierEvents handles GET /api/v1/couriers/:courierID/events.
// Courier streams carry raw movement, so they are limited to the courier
// themselves and admins.
func (s *Server) StreamCourierEvents(c echo.Context) error {
	courierID, err := pathUUID(c, "courierID")
	if err != nil {
		return s.respondError(c, err)
	}

	identity := actorFrom(c)
	if !identity.IsCourier(courierID) && identity.Role != actor.RoleAdmin {
		return s.respondError(c, errs.NewForbiddenError("subscribe", courierID.String()))
	}

	return s.stream(c, ports.CourierChannel(courierID))
}

func (s *Server) stream(c echo.Context, channel string) error {
	subscription := s.hub.Subscribe(channel)
	defer subscription.Cancel()

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-subscription.C:
			if !open {
				return nil
			}
			body, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("marshal stream event", zap.String("channel", channel), zap.Error(err))
				continue
			}
			if _, err = fmt.Fprintf(response, "event: %s\ndata: %s\n\n", event.Kind, body); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func (s *Server) badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: message})
}

// statusFor maps a domain error onto an HTTP status. Authorization failures
// share the not-found status so order existence does not leak across parties.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrStaleState),
		errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrCourierUnavailable):
		return http.StatusConflict
	case errors.Is(err, errs.ErrCourierOffline):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(c echo.Context, err error) error {
	status := statusFor(err)

	var rateErr *errs.RateLimitedError
	if errors.As(err, &rateErr) {
		seconds := int(math.Ceil(rateErr.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	message := err.Error()
	switch status {
	case http.StatusNotFound:
		message = "not found"
	case http.StatusInternalServerError:
		s.logger.Error("request failed",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
		message = "internal error"
	}

	return c.JSON(status, errorBody{Code: status, Message: message})
}
