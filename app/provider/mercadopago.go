package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.mercadopago.com"

// credentialHint replaces upstream auth-failure bodies: their detail is not
// actionable for callers and may expose account metadata.
const credentialHint = "Mercado Pago credentials are invalid or lack permissions (check token and country)"

type Config struct {
	AccessToken string
	APIBase     string
	HTTPTimeout time.Duration
}

// MercadoPagoClient issues authenticated REST calls against the Mercado Pago
// API and normalizes error responses into APIError values.
type MercadoPagoClient struct {
	cfg    Config
	client *http.Client
}

func NewMercadoPagoClient(cfg Config) *MercadoPagoClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}

	return &MercadoPagoClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Request performs one upstream call. A nil payload sends no body. The parsed
// response body is returned raw so provider fields pass through untouched.
func (c *MercadoPagoClient) Request(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBase+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(raw), nil
}

// GetPayment fetches full payment detail, used to enrich webhook events.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, nil
	}
	return c.Request(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil)
}

// CurrentSellerID resolves the account id the configured token belongs to.
func (c *MercadoPagoClient) CurrentSellerID(ctx context.Context) (string, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return "", err
	}

	var payload struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", err
	}
	return payload.ID.String(), nil
}

func normalizeError(statusCode int, body []byte) *APIError {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return &APIError{StatusCode: statusCode, Message: credentialHint}
	}

	var parsed struct {
		Message string          `json:"message"`
		Cause   json.RawMessage `json:"cause"`
	}
	message := http.StatusText(statusCode)
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Message) != "" {
		message = parsed.Message
		if cause := renderCause(parsed.Cause); cause != "" {
			message = message + ": " + cause
		}
	}

	return &APIError{StatusCode: statusCode, Message: message}
}

func renderCause(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}
