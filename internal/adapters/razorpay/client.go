package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
)

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay REST API with HTTP basic auth.
type Client struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	httpClient    *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) CreateRemoteOrder(ctx context.Context, minorAmount int64, currency, receipt string) (string, error) {
	resp, err := postJSON[orderRequest, orderResponse](c, ctx, "/v1/orders", orderRequest{
		Amount:   minorAmount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &GatewayError{Code: "EMPTY_ORDER_ID", Message: "gateway returned an order without id", StatusCode: http.StatusOK}
	}
	return resp.ID, nil
}

func (c *Client) VerifySignature(payload []byte, signature string) bool {
	return VerifySignature(payload, signature, c.webhookSecret)
}

func (c *Client) ParseWebhookEvent(payload []byte) (*domain.WebhookEvent, error) {
	return ParseWebhookEvent(payload)
}

// postJSON is a generic helper for making authenticated POST requests to the gateway API
func postJSON[Req any, Resp any](c *Client, ctx context.Context, path string, req Req) (*Resp, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	fullURL := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, newGatewayError(resp.StatusCode, body)
	}

	var gatewayResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &gatewayResp, nil
}
