package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/roomstay/booking-service/internal/apperr"
	"github.com/roomstay/booking-service/internal/dto"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock DisputeService ---

type mockDisputeService struct {
	openFn    func(ctx context.Context, p service.OpenDisputeParams) (*models.Dispute, error)
	resolveFn func(ctx context.Context, disputeID uint, p service.ResolveDisputeParams) (*models.Dispute, error)
	getFn     func(ctx context.Context, id uint) (*models.Dispute, error)
	listFn    func(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error)
}

func (m *mockDisputeService) OpenDispute(ctx context.Context, p service.OpenDisputeParams) (*models.Dispute, error) {
	return m.openFn(ctx, p)
}
func (m *mockDisputeService) ResolveDispute(ctx context.Context, disputeID uint, p service.ResolveDisputeParams) (*models.Dispute, error) {
	return m.resolveFn(ctx, disputeID, p)
}
func (m *mockDisputeService) GetDispute(ctx context.Context, id uint) (*models.Dispute, error) {
	return m.getFn(ctx, id)
}
func (m *mockDisputeService) ListDisputes(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error) {
	return m.listFn(ctx, status)
}

// --- Tests ---

func TestOpenDispute_Handler_Success(t *testing.T) {
	svc := &mockDisputeService{
		openFn: func(ctx context.Context, p service.OpenDisputeParams) (*models.Dispute, error) {
			return &models.Dispute{
				ID:             1,
				BookingID:      p.BookingID,
				RenterID:       p.RenterID,
				Reason:         p.Reason,
				EvidenceImages: p.EvidenceImages,
				Status:         models.DisputePending,
			}, nil
		},
	}

	body := `{"renter_id":"renter-1","reason":"deposit not returned","evidence_images":["img-1","img-2"]}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/bookings/1/disputes", body, "1")

	h := NewDisputeHandler(svc)
	err := h.OpenDispute(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.DisputeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.DisputePending, resp.Status)
	assert.Len(t, resp.EvidenceImages, 2)
}

func TestOpenDispute_Handler_BookingNotConfirmed(t *testing.T) {
	svc := &mockDisputeService{
		openFn: func(ctx context.Context, p service.OpenDisputeParams) (*models.Dispute, error) {
			return nil, apperr.InvalidState("booking %d is %s, only confirmed bookings can be disputed", p.BookingID, models.StatusApproved)
		},
	}

	body := `{"renter_id":"renter-1","reason":"deposit not returned"}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/bookings/1/disputes", body, "1")

	h := NewDisputeHandler(svc)
	err := h.OpenDispute(c)
	require.Error(t, err)
	renderError(c, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResolveDispute_Handler_Refund(t *testing.T) {
	var got service.ResolveDisputeParams
	svc := &mockDisputeService{
		resolveFn: func(ctx context.Context, disputeID uint, p service.ResolveDisputeParams) (*models.Dispute, error) {
			got = p
			return &models.Dispute{
				ID:                disputeID,
				BookingID:         1,
				Status:            p.Decision,
				AdminDecisionNote: p.Note,
				RefundAmount:      p.RefundAmount,
			}, nil
		},
	}

	body := `{"admin_id":"admin-1","status":"RESOLVED_REFUND","note":"host at fault","refund_amount":500000}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/disputes/1/resolve", body, "1")

	h := NewDisputeHandler(svc)
	err := h.ResolveDispute(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DisputeResolvedRefund, got.Decision)
	assert.Equal(t, int64(500000), got.RefundAmount)

	var resp dto.DisputeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.DisputeResolvedRefund, resp.Status)
	assert.Equal(t, "host at fault", resp.AdminDecisionNote)
}

func TestResolveDispute_Handler_PendingNotADecision(t *testing.T) {
	body := `{"admin_id":"admin-1","status":"PENDING","note":"nope"}`
	c, _ := newContext(t, http.MethodPost, "/api/v1/disputes/1/resolve", body, "1")

	h := NewDisputeHandler(nil)
	err := h.ResolveDispute(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestResolveDispute_Handler_AlreadyResolved(t *testing.T) {
	svc := &mockDisputeService{
		resolveFn: func(ctx context.Context, disputeID uint, p service.ResolveDisputeParams) (*models.Dispute, error) {
			return nil, apperr.InvalidState("dispute %d already resolved as %s", disputeID, models.DisputeResolvedDenied)
		},
	}

	body := `{"admin_id":"admin-1","status":"RESOLVED_REFUND","note":"second try","refund_amount":100}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/disputes/1/resolve", body, "1")

	h := NewDisputeHandler(svc)
	err := h.ResolveDispute(c)
	require.Error(t, err)
	renderError(c, err)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "InvalidState", resp.Kind)
}

func TestGetDispute_Handler_NotFound(t *testing.T) {
	svc := &mockDisputeService{
		getFn: func(ctx context.Context, id uint) (*models.Dispute, error) {
			return nil, apperr.NotFound("dispute %d not found", id)
		},
	}

	c, rec := newContext(t, http.MethodGet, "/api/v1/disputes/999", "", "999")

	h := NewDisputeHandler(svc)
	err := h.GetDispute(c)
	require.Error(t, err)
	renderError(c, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDisputes_Handler_StatusFilter(t *testing.T) {
	var captured *models.DisputeStatus
	svc := &mockDisputeService{
		listFn: func(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error) {
			captured = status
			return []models.Dispute{{ID: 1, Status: models.DisputePending}}, nil
		},
	}

	c, rec := newContext(t, http.MethodGet, "/api/v1/disputes?status=PENDING", "", "")

	h := NewDisputeHandler(svc)
	err := h.ListDisputes(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, models.DisputePending, *captured)
}
