//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const defaultBillingHTTPBase = "http://localhost:45000"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	return resp, bodyBytes
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func TestBillingE2E(t *testing.T) {
	httpBase := os.Getenv("BILLING_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultBillingHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("Health", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/api/health", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("ReturnPages", func(t *testing.T) {
		for _, path := range []string{"/success", "/failure", "/pending"} {
			resp, _ := client.doJSON(t, http.MethodGet, path, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200 for %s, got %d", path, resp.StatusCode)
			}
		}
	})

	t.Run("CreatePlanMissingBackURL", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/plans", map[string]any{
			"name":   "E2E plan",
			"amount": 10,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("CreatePlan", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/plans", map[string]any{
			"name":    "E2E plan",
			"backUrl": "https://shop.example.com/back",
			"amount":  10,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", resp.StatusCode, string(body))
		}
		var plan struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &plan); err != nil || plan.ID == "" {
			t.Fatalf("expected plan id in response, got %s", string(body))
		}
	})

	t.Run("GetPlanNotFoundPassthrough", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/api/plans/missing-plan", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("CreateSubscriptionValidation", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/subscriptions", map[string]any{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("ListSubscriptionsActiveFilter", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/api/subscriptions?active=true", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var result struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("unmarshal failed: %v body=%s", err, string(body))
		}
		if len(result.Results) != 1 {
			t.Fatalf("expected only active subscriptions, got %s", string(body))
		}
	})

	t.Run("IngestPaymentWebhook", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/webhooks", map[string]any{
			"type":   "payment",
			"action": "payment.created",
			"data":   map[string]any{"id": 123},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var event struct {
			ID              string `json:"id"`
			Event           string `json:"event"`
			PaymentRejected bool   `json:"payment_rejected"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			t.Fatalf("unmarshal failed: %v body=%s", err, string(body))
		}
		if event.ID == "" || event.Event != "payment" {
			t.Fatalf("unexpected event: %s", string(body))
		}
		if !event.PaymentRejected {
			t.Fatalf("expected rejected payment flagged, got %s", string(body))
		}
	})

	t.Run("ListWebhooks", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/webhooks?limit=10", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("TokenizeCardValidation", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/cards/tokenize", map[string]any{
			"card_number": "4111111111111111",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})
}
