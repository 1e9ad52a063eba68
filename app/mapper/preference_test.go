package mapper

import (
	"testing"

	"github.com/vibast-solutions/ms-go-billing/app/types"
)

func TestPreferenceCreatePayloadDefaults(t *testing.T) {
	req := &types.PreferenceRequest{Price: 49.9}
	payload := PreferenceCreatePayload(req, PreferenceDefaults{Currency: "MXN"})

	if len(payload.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(payload.Items))
	}
	item := payload.Items[0]
	if item.Title != "Mercado Pago Subscription" {
		t.Fatalf("unexpected title: %s", item.Title)
	}
	if item.Quantity != 1 {
		t.Fatalf("unexpected quantity: %d", item.Quantity)
	}
	if item.UnitPrice != 49.9 {
		t.Fatalf("unexpected unit price: %v", item.UnitPrice)
	}
	if item.CurrencyID != "MXN" {
		t.Fatalf("unexpected currency: %s", item.CurrencyID)
	}
	if payload.BackURLs != nil {
		t.Fatalf("expected no back_urls, got %+v", payload.BackURLs)
	}
	if payload.AutoReturn != "" {
		t.Fatalf("expected no auto_return, got %s", payload.AutoReturn)
	}
}

func TestPreferenceCreatePayloadDropsDisallowedBackURLs(t *testing.T) {
	req := &types.PreferenceRequest{
		SuccessURL: "http://example.com/ok",
		FailureURL: "https://localhost/failure",
		PendingURL: "https://127.0.0.1/pending",
	}
	payload := PreferenceCreatePayload(req, PreferenceDefaults{Currency: "MXN"})

	if payload.BackURLs != nil {
		t.Fatalf("expected all back urls dropped, got %+v", payload.BackURLs)
	}
	if payload.AutoReturn != "" {
		t.Fatal("auto_return must not be requested without a success url")
	}
}

func TestPreferenceCreatePayloadFailurePendingFallBackToSuccess(t *testing.T) {
	req := &types.PreferenceRequest{
		SuccessURL: "https://shop.example.com/success",
		FailureURL: "http://shop.example.com/failure",
	}
	payload := PreferenceCreatePayload(req, PreferenceDefaults{Currency: "MXN"})

	if payload.BackURLs == nil {
		t.Fatal("expected back_urls")
	}
	if payload.BackURLs.Success != "https://shop.example.com/success" {
		t.Fatalf("unexpected success url: %s", payload.BackURLs.Success)
	}
	if payload.BackURLs.Failure != "https://shop.example.com/success" {
		t.Fatalf("expected failure fallback to success, got %s", payload.BackURLs.Failure)
	}
	if payload.BackURLs.Pending != "https://shop.example.com/success" {
		t.Fatalf("expected pending fallback to success, got %s", payload.BackURLs.Pending)
	}
	if payload.AutoReturn != "approved" {
		t.Fatalf("expected auto_return approved, got %s", payload.AutoReturn)
	}
}

func TestPreferenceCreatePayloadUsesConfiguredFallbacks(t *testing.T) {
	req := &types.PreferenceRequest{}
	payload := PreferenceCreatePayload(req, PreferenceDefaults{
		Currency:   "MXN",
		SuccessURL: "https://env.example.com/success",
		PendingURL: "https://env.example.com/pending",
	})

	if payload.BackURLs == nil {
		t.Fatal("expected back_urls")
	}
	if payload.BackURLs.Success != "https://env.example.com/success" {
		t.Fatalf("unexpected success url: %s", payload.BackURLs.Success)
	}
	if payload.BackURLs.Pending != "https://env.example.com/pending" {
		t.Fatalf("unexpected pending url: %s", payload.BackURLs.Pending)
	}
}

func TestPreferenceCreatePayloadPayerEmail(t *testing.T) {
	req := &types.PreferenceRequest{PayerEmail: "buyer@example.com"}
	payload := PreferenceCreatePayload(req, PreferenceDefaults{Currency: "MXN"})

	if payload.Payer == nil || payload.Payer.Email != "buyer@example.com" {
		t.Fatalf("unexpected payer: %+v", payload.Payer)
	}
}

func TestIsAllowedReturnURL(t *testing.T) {
	cases := []struct {
		url     string
		allowed bool
	}{
		{"https://example.com/back", true},
		{"https://example.com:8443/back", true},
		{"http://example.com/back", false},
		{"https://localhost/back", false},
		{"https://localhost:3000/back", false},
		{"https://127.0.0.1/back", false},
		{"https://LOCALHOST/back", false},
		{"", false},
		{"not a url", false},
	}

	for _, tc := range cases {
		if got := isAllowedReturnURL(tc.url); got != tc.allowed {
			t.Fatalf("isAllowedReturnURL(%q) = %v, want %v", tc.url, got, tc.allowed)
		}
	}
}
