// Package payment is the client for the marketplace payment gateway. The
// booking service only ever asks it to move a booking's deposit: capture on
// confirmation, fee on late renter cancellation, refund on host cancellation
// or dispute resolution.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Gateway interface {
	Capture(ctx context.Context, instr Instruction) (string, error)
	Refund(ctx context.Context, instr Instruction) (string, error)
}

// Instruction identifies one money movement. ID is the caller-generated
// idempotency key; retrying with the same ID never double-moves funds.
type Instruction struct {
	ID        string `json:"id"`
	BookingID uint   `json:"booking_id"`
	Amount    int64  `json:"amount"`
}

type gatewayResponse struct {
	Ref string `json:"ref"`
}

type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Capture charges the given amount against the booking's held deposit.
func (g *HTTPGateway) Capture(ctx context.Context, instr Instruction) (string, error) {
	return g.post(ctx, "/v1/captures", instr)
}

// Refund returns the given amount of a previously captured deposit.
func (g *HTTPGateway) Refund(ctx context.Context, instr Instruction) (string, error) {
	return g.post(ctx, "/v1/refunds", instr)
}

func (g *HTTPGateway) post(ctx context.Context, path string, instr Instruction) (string, error) {
	body, err := json.Marshal(instr)
	if err != nil {
		return "", fmt.Errorf("marshal instruction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", instr.ID)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	return out.Ref, nil
}
