package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dineswift-local/internal/domain"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPGateway validates transactions against the payment provider's REST
// endpoint.
type HTTPGateway struct {
	config GatewayConfig
	client HTTPClient
}

func NewHTTPGateway(config GatewayConfig, client HTTPClient) *HTTPGateway {
	return &HTTPGateway{config: config, client: client}
}

type validateResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func (g *HTTPGateway) ValidateTransaction(ctx context.Context, req domain.GatewayRequest) domain.GatewayResult {
	const op = "validate_transaction"

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.GatewayResult{Err: &domain.TerminalRemoteError{Op: op, Err: err}}
	}
	url := strings.TrimRight(g.config.BaseURL, "/") + "/transactions/validate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.GatewayResult{Err: &domain.TerminalRemoteError{Op: op, Err: err}}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return domain.GatewayResult{Err: &domain.TransientRemoteError{Op: op, Err: err}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.GatewayResult{Err: &domain.TransientRemoteError{Op: op, Err: err}}
	}

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		return domain.GatewayResult{Err: &domain.TransientRemoteError{Op: op, Err: fmt.Errorf("gateway returned %d", resp.StatusCode)}}
	case resp.StatusCode >= 400:
		return domain.GatewayResult{Err: &domain.TerminalRemoteError{Op: op, Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, firstBytes(raw))}}
	}

	var decoded validateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.GatewayResult{Err: &domain.TransientRemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}}
	}

	result := domain.GatewayResult{Reference: decoded.TransactionID, Response: json.RawMessage(raw)}
	if strings.EqualFold(decoded.Status, "accepted") {
		result.Accepted = true
		return result
	}
	reason := decoded.Message
	if reason == "" {
		reason = "transaction " + decoded.Status
	}
	result.Err = &domain.TerminalRemoteError{Op: op, Err: errors.New(reason)}
	return result
}

func firstBytes(raw []byte) string {
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
