// Package gateway is the HTTP client for the external payment gateway. The
// gateway is an opaque polled oracle: this service creates a trade, hands
// the customer the pay URL, and later queries the trade status until it is
// definitive.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Result codes returned by the gateway API.
const (
	// CodeOK means the call succeeded and the trade status is meaningful.
	CodeOK = "10000"
	// CodeBusinessPending means the trade is not queryable yet; callers
	// should re-poll.
	CodeBusinessPending = "40004"
)

// TradeStatus is the gateway's view of a trade.
type TradeStatus string

const (
	TradeSuccess TradeStatus = "TRADE_SUCCESS"
	WaitBuyerPay TradeStatus = "WAIT_BUYER_PAY"
	TradeClosed  TradeStatus = "TRADE_CLOSED"
)

type CreateTradeInput struct {
	OutTradeNo string `json:"out_trade_no"`
	TotalCents int64  `json:"total_cents"`
	Subject    string `json:"subject"`
}

type CreateTradeResult struct {
	PayURL string `json:"pay_url"`
}

type QueryTradeResult struct {
	Code        string      `json:"code"`
	TradeStatus TradeStatus `json:"trade_status"`
	TradeNo     string      `json:"trade_no"`
	Message     string      `json:"msg"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreateTrade registers a trade with the gateway and returns the URL the
// customer is redirected to. The idempotency key lets the gateway dedupe a
// retried creation of the same checkout.
func (c *Client) CreateTrade(ctx context.Context, in CreateTradeInput) (*CreateTradeResult, error) {
	var out CreateTradeResult
	if err := c.post(ctx, "/gateway/trade/create", in, &out, uuid.NewString()); err != nil {
		return nil, err
	}
	if out.PayURL == "" {
		return nil, fmt.Errorf("gateway create trade %s: empty pay url", in.OutTradeNo)
	}
	return &out, nil
}

// QueryTrade fetches the current status of a trade by our order id.
func (c *Client) QueryTrade(ctx context.Context, outTradeNo string) (*QueryTradeResult, error) {
	in := struct {
		OutTradeNo string `json:"out_trade_no"`
	}{OutTradeNo: outTradeNo}

	var out QueryTradeResult
	if err := c.post(ctx, "/gateway/trade/query", in, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any, idempotencyKey string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("gateway marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("gateway: %s status=%d", path, resp.StatusCode)
		return fmt.Errorf("gateway %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway decode: %w", err)
	}
	return nil
}
