package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/roomstay/booking-service/internal/dto"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/repository"
	"github.com/roomstay/booking-service/internal/service"
)

var bookingStatuses = map[string]models.BookingStatus{
	string(models.StatusPending):           models.StatusPending,
	string(models.StatusApproved):          models.StatusApproved,
	string(models.StatusRejected):          models.StatusRejected,
	string(models.StatusConfirmed):         models.StatusConfirmed,
	string(models.StatusCancelledByRenter): models.StatusCancelledByRenter,
	string(models.StatusCancelledByHost):   models.StatusCancelledByHost,
}

type BookingHandler struct {
	svc     service.BookingService
	txnRepo repository.TransactionRepository
}

func NewBookingHandler(svc service.BookingService, txnRepo repository.TransactionRepository) *BookingHandler {
	return &BookingHandler{svc: svc, txnRepo: txnRepo}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	bookings := e.Group("/api/v1/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.PATCH("/:id", h.UpdateBooking)
	bookings.POST("/:id/transition", h.TransitionBooking)
	bookings.GET("/:id/transactions", h.ListTransactions)

	e.GET("/api/v1/rooms/:id/bookings", h.ListRoomBookings)
	e.GET("/api/v1/renters/:id/bookings", h.ListRenterBookings)
	e.POST("/api/v1/refunds/retry", h.RetryPendingRefunds)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RoomID == 0 || req.RenterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "room_id and renter_id are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingParams{
		RoomID:        req.RoomID,
		RenterID:      req.RenterID,
		MoveInDate:    req.MoveInDate,
		DepositAmount: req.DepositAmount,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// UpdateBooking applies a per-field-optional patch. A status field in the
// patch is never a raw write — it is routed through the state machine, and a
// patch may not combine a status change with field edits.
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor_id is required")
	}

	if req.Status != nil {
		if req.HasFieldEdits() {
			return echo.NewHTTPError(http.StatusBadRequest, "a status change cannot be combined with field edits")
		}
		target, ok := bookingStatuses[*req.Status]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+*req.Status)
		}
		booking, err := h.svc.Transition(c.Request().Context(), id, req.ActorID, target, req.Reason)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}

	booking, err := h.svc.UpdateBooking(c.Request().Context(), id, req.ActorID, service.UpdateBookingParams{
		MoveInDate:    req.MoveInDate,
		DepositAmount: req.DepositAmount,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) TransitionBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor_id is required")
	}
	target, ok := bookingStatuses[req.Status]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+req.Status)
	}

	booking, err := h.svc.Transition(c.Request().Context(), id, req.ActorID, target, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListRoomBookings(c echo.Context) error {
	roomID, err := parseID(c)
	if err != nil {
		return err
	}

	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs, ok := bookingStatuses[s]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+s)
		}
		status = &bs
	}

	bookings, err := h.svc.ListByRoom(c.Request().Context(), roomID, status)
	if err != nil {
		return err
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ListRenterBookings(c echo.Context) error {
	renterID := c.Param("id")
	if renterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid renter id")
	}

	bookings, err := h.svc.ListByRenter(c.Request().Context(), renterID)
	if err != nil {
		return err
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}

	return c.JSON(http.StatusOK, resp)
}

// ListTransactions exposes the payment ledger for one booking, pending refunds
// included, for the operations dashboard.
func (h *BookingHandler) ListTransactions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	txns, err := h.txnRepo.FindByBookingID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := make([]dto.TransactionResponse, len(txns))
	for i, t := range txns {
		resp[i] = dto.ToTransactionResponse(&t)
	}

	return c.JSON(http.StatusOK, resp)
}

// RetryPendingRefunds re-drives deferred refunds against the gateway. Meant to
// be hit by a cron job or an operator after a gateway outage.
func (h *BookingHandler) RetryPendingRefunds(c echo.Context) error {
	completed, err := h.svc.RetryPendingRefunds(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"completed": completed})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
