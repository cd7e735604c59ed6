// Package payments holds the outbound payout client. Payouts are
// fire-and-forget from the ledger's point of view: the ledger entry stays
// PENDING until the provider's settlement callback lands.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltafleet/driver_ledger_app/internal/apperrors"
	"github.com/voltafleet/driver_ledger_app/internal/core/domain"
	portssvc "github.com/voltafleet/driver_ledger_app/internal/core/ports/services"
)

const defaultTimeout = 10 * time.Second

// HTTPDispatcher posts payout requests to the payment provider's REST API.
type HTTPDispatcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDispatcher creates a dispatcher for the provider at baseURL.
func NewHTTPDispatcher(baseURL, apiKey string) *HTTPDispatcher {
	return &HTTPDispatcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

var _ portssvc.PaymentDispatcher = (*HTTPDispatcher)(nil)

type payoutRequest struct {
	DriverID string `json:"driver_id"`
	Phone    string `json:"phone"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type payoutResponse struct {
	DispatchID string `json:"dispatch_id"`
	Status     string `json:"status"`
}

// InitiatePayout requests an external payout of amount KSH to the driver's
// phone and returns the provider's dispatch identifier.
func (d *HTTPDispatcher) InitiatePayout(ctx context.Context, driver domain.Driver, amount decimal.Decimal, phone string) (string, error) {
	body, err := json.Marshal(payoutRequest{
		DriverID: driver.DriverID,
		Phone:    phone,
		Amount:   amount.StringFixed(2),
		Currency: "KSH",
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode payout request: %v", apperrors.ErrExternalDispatch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build payout request: %v", apperrors.ErrExternalDispatch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExternalDispatch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a little of the body for the log line; providers vary.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: provider returned %d: %s", apperrors.ErrExternalDispatch, resp.StatusCode, snippet)
	}

	var pr payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("%w: decode payout response: %v", apperrors.ErrExternalDispatch, err)
	}
	if pr.DispatchID == "" {
		return "", fmt.Errorf("%w: provider returned no dispatch id", apperrors.ErrExternalDispatch)
	}
	return pr.DispatchID, nil
}
