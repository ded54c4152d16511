// Package remote calls the third-party account API. Every outcome, including
// transport failures and non-2xx replies, comes back as a Response value.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NoResponse is the status recorded when the server never answered.
const NoResponse = 0

const maxBodySize = 1 << 20

// Response is the outcome of one call.
type Response struct {
	StatusCode int
	Body       []byte
	Err        error
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RefundRequest is the JSON body of a refund submission.
type RefundRequest struct {
	OrderID   string `json:"order_id"`
	Message   string `json:"message"`
	HasPhoto  bool   `json:"has_photo"`
	RequestID string `json:"request_id"`
}

// Client posts to the account and refund endpoints. It does not retry.
type Client struct {
	accountURL string
	refundURL  string
	userAgent  string
	client     *http.Client
}

func NewClient(accountURL, refundURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		accountURL: strings.TrimSpace(accountURL),
		refundURL:  strings.TrimSpace(refundURL),
		userAgent:  userAgent,
		client:     &http.Client{Timeout: timeout},
	}
}

// CheckAccount asks the remote API about the account behind credential.
func (c *Client) CheckAccount(ctx context.Context, credential string) Response {
	return c.post(ctx, c.accountURL, credential, []byte("{}"), nil)
}

// SubmitRefund files a refund request. traceID travels as the correlation
// header, req.RequestID both in the body and as X-Request-Id.
func (c *Client) SubmitRefund(ctx context.Context, credential, traceID string, req RefundRequest) Response {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{StatusCode: NoResponse, Err: fmt.Errorf("marshal request: %w", err)}
	}
	headers := map[string]string{
		"X-Request-Id":     req.RequestID,
		"X-Correlation-Id": traceID,
	}
	return c.post(ctx, c.refundURL, credential, payload, headers)
}

func (c *Client) post(ctx context.Context, url, credential string, payload []byte, headers map[string]string) Response {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{StatusCode: NoResponse, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return Response{StatusCode: NoResponse, Err: fmt.Errorf("send request: %w", err)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return Response{StatusCode: res.StatusCode, Body: body, Err: fmt.Errorf("read response: %w", err)}
	}
	return Response{StatusCode: res.StatusCode, Body: body}
}
