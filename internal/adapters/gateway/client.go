package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// ClientConfig configures the outbound payment processor client.
type ClientConfig struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// Client talks to the payment processor's REST API with form-encoded
// requests and a bearer secret key.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		secretKey:  cfg.SecretKey,
		httpClient: httpClient,
	}
}

func (c *Client) CreateIntent(ctx context.Context, params ports.CreateIntentParams) (ports.IntentResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("currency", strings.ToLower(params.Currency))
	if strings.TrimSpace(params.Description) != "" {
		form.Set("description", params.Description)
	}
	form.Set("automatic_payment_methods[enabled]", "true")
	for key, value := range params.Metadata {
		form.Set("metadata["+key+"]", value)
	}
	if !params.Shipping.IsZero() {
		form.Set("shipping[name]", params.Shipping.Name)
		form.Set("shipping[address][line1]", params.Shipping.Line1)
		if params.Shipping.Line2 != "" {
			form.Set("shipping[address][line2]", params.Shipping.Line2)
		}
		form.Set("shipping[address][city]", params.Shipping.City)
		form.Set("shipping[address][state]", params.Shipping.State)
		form.Set("shipping[address][postal_code]", params.Shipping.PostalCode)
		form.Set("shipping[address][country]", params.Shipping.Country)
	}

	var resp intentResponse
	if err := c.post(ctx, "/v1/payment_intents", form, &resp); err != nil {
		return ports.IntentResult{}, err
	}
	if strings.TrimSpace(resp.ID) == "" || strings.TrimSpace(resp.ClientSecret) == "" {
		return ports.IntentResult{}, fmt.Errorf("%w: intent response missing id or client_secret", domain.ErrGateway)
	}
	return ports.IntentResult{IntentID: resp.ID, ClientSecret: resp.ClientSecret}, nil
}

func (c *Client) CreateRefund(ctx context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", req.IntentID)
	if strings.TrimSpace(req.Reason) != "" {
		form.Set("reason", req.Reason)
	}
	for key, value := range req.Metadata {
		form.Set("metadata["+key+"]", value)
	}

	var resp refundResponse
	if err := c.post(ctx, "/v1/refunds", form, &resp); err != nil {
		return ports.RefundResult{}, err
	}
	if strings.TrimSpace(resp.ID) == "" {
		return ports.RefundResult{}, fmt.Errorf("%w: refund response missing id", domain.ErrGateway)
	}
	return ports.RefundResult{RefundID: resp.ID, AmountMinor: resp.Amount, Status: resp.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiErrorResponse
		if decodeErr := json.Unmarshal(body, &apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: %s status=%d code=%s: %s", domain.ErrGateway, path, resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: %s status=%d body=%s", domain.ErrGateway, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrGateway, err)
	}
	return nil
}
