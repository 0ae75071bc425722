package arpoone

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
)

// ProviderResponse is the decoded provider reply for a send request.
type ProviderResponse struct {
	Messages []ProviderMessageResult `json:"messages"`
}

type ProviderMessageResult struct {
	MessageID string                `json:"messageId"`
	To        string                `json:"to,omitempty"`
	Cost      float64               `json:"cost,omitempty"`
	Error     *ProviderMessageError `json:"error,omitempty"`
}

type ProviderMessageError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Client executes send requests against the provider API. It performs
// no retries: the payload is not known to be idempotent on the provider
// side, so resending is a caller decision.
type Client struct {
	verified *resty.Client
	insecure *resty.Client
}

func NewClient(timeout time.Duration) *Client {
	build := func() *resty.Client {
		return resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}

	insecure := build()
	insecure.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

	return &Client{
		verified: build(),
		insecure: insecure,
	}
}

// Send posts the payload to the channel's send endpoint using the
// resolved configuration's credentials and TLS policy.
func (c *Client) Send(ctx context.Context, cfg *domain.Configuration, payload *Payload) (*ProviderResponse, error) {
	client := c.verified
	if !cfg.VerifySSL {
		client = c.insecure
	}

	endpoint := cfg.URL + string(payload.Channel) + "/send"

	var providerResp ProviderResponse

	startTime := time.Now()

	resp, err := client.R().
		SetContext(ctx).
		SetAuthToken(cfg.APIKey).
		SetBody(payload.Envelope).
		SetResult(&providerResp).
		Post(endpoint)
	if err != nil {
		return nil, NewProviderRequestFailed(err.Error())
	}

	logger.Infof("Provider request to %s completed in %v (status: %d)",
		endpoint, time.Since(startTime), resp.StatusCode())

	if resp.IsError() {
		return nil, translateErrorBody(resp.Body(), resp.Status())
	}

	return &providerResp, nil
}

// translateErrorBody extracts the provider's structured error code when
// the failure body carries one; any other shape is surfaced raw.
func translateErrorBody(body []byte, status string) error {
	var decoded ProviderResponse
	if err := json.Unmarshal(body, &decoded); err == nil &&
		len(decoded.Messages) > 0 && decoded.Messages[0].Error != nil && decoded.Messages[0].Error.Code != 0 {
		return NewProviderRejected(decoded.Messages[0].Error.Code)
	}

	return NewProviderRequestFailed("unexpected response format (" + status + ")")
}
