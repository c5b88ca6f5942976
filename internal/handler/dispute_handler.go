package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roomstay/booking-service/internal/dto"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/service"
)

var disputeStatuses = map[string]models.DisputeStatus{
	string(models.DisputePending):        models.DisputePending,
	string(models.DisputeResolvedRefund): models.DisputeResolvedRefund,
	string(models.DisputeResolvedDenied): models.DisputeResolvedDenied,
}

type DisputeHandler struct {
	svc service.DisputeService
}

func NewDisputeHandler(svc service.DisputeService) *DisputeHandler {
	return &DisputeHandler{svc: svc}
}

func (h *DisputeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/bookings/:id/disputes", h.OpenDispute)

	disputes := e.Group("/api/v1/disputes")
	disputes.GET("", h.ListDisputes)
	disputes.GET("/:id", h.GetDispute)
	disputes.POST("/:id/resolve", h.ResolveDispute)
}

func (h *DisputeHandler) OpenDispute(c echo.Context) error {
	bookingID, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.OpenDisputeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RenterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "renter_id is required")
	}

	dispute, err := h.svc.OpenDispute(c.Request().Context(), service.OpenDisputeParams{
		BookingID:      bookingID,
		RenterID:       req.RenterID,
		Reason:         req.Reason,
		EvidenceImages: req.EvidenceImages,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.ToDisputeResponse(dispute))
}

func (h *DisputeHandler) ResolveDispute(c echo.Context) error {
	disputeID, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.ResolveDisputeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AdminID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "admin_id is required")
	}
	decision, ok := disputeStatuses[req.Status]
	if !ok || decision == models.DisputePending {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be a resolution decision")
	}

	dispute, err := h.svc.ResolveDispute(c.Request().Context(), disputeID, service.ResolveDisputeParams{
		AdminID:      req.AdminID,
		Decision:     decision,
		Note:         req.Note,
		RefundAmount: req.RefundAmount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToDisputeResponse(dispute))
}

func (h *DisputeHandler) GetDispute(c echo.Context) error {
	disputeID, err := parseID(c)
	if err != nil {
		return err
	}

	dispute, err := h.svc.GetDispute(c.Request().Context(), disputeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToDisputeResponse(dispute))
}

func (h *DisputeHandler) ListDisputes(c echo.Context) error {
	var status *models.DisputeStatus
	if s := c.QueryParam("status"); s != "" {
		ds, ok := disputeStatuses[s]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+s)
		}
		status = &ds
	}

	disputes, err := h.svc.ListDisputes(c.Request().Context(), status)
	if err != nil {
		return err
	}

	resp := make([]dto.DisputeResponse, len(disputes))
	for i, d := range disputes {
		resp[i] = dto.ToDisputeResponse(&d)
	}

	return c.JSON(http.StatusOK, resp)
}
