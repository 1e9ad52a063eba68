package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vibast-solutions/ms-go-billing/app/types"
	"github.com/vibast-solutions/ms-go-billing/config"
)

type upstreamCall struct {
	method  string
	path    string
	payload any
}

type fakeUpstream struct {
	mu          sync.Mutex
	calls       []upstreamCall
	handler     func(method, path string, payload any) (json.RawMessage, error)
	sellerID    string
	sellerErr   error
	sellerCalls int32
}

func (f *fakeUpstream) Request(_ context.Context, method, path string, payload any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{method: method, path: path, payload: payload})
	f.mu.Unlock()
	if f.handler != nil {
		return f.handler(method, path, payload)
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeUpstream) GetPayment(_ context.Context, _ string) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeUpstream) CurrentSellerID(_ context.Context) (string, error) {
	atomic.AddInt32(&f.sellerCalls, 1)
	return f.sellerID, f.sellerErr
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func subscriptionPage(count int, status string) json.RawMessage {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"status":%q}`, i, status))
	}
	return json.RawMessage(`{"results":[` + strings.Join(items, ",") + `],"paging":{"limit":50,"offset":0,"total":0}}`)
}

func TestListSubscriptionsAggregatesPages(t *testing.T) {
	pages := []int{50, 50, 13}
	upstream := &fakeUpstream{}
	upstream.handler = func(_, path string, _ any) (json.RawMessage, error) {
		parsed, err := url.Parse(path)
		if err != nil {
			t.Fatalf("bad path %s: %v", path, err)
		}
		offset := parsed.Query().Get("offset")
		switch offset {
		case "0":
			return subscriptionPage(pages[0], "authorized"), nil
		case "50":
			return subscriptionPage(pages[1], "authorized"), nil
		case "100":
			return subscriptionPage(pages[2], "authorized"), nil
		}
		t.Fatalf("unexpected offset %q", offset)
		return nil, nil
	}

	svc := NewBillingService(upstream, config.MercadoPagoConfig{})
	result, err := svc.ListSubscriptions(context.Background(), &types.SubscriptionListRequest{Params: url.Values{}})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Results) != 113 {
		t.Fatalf("expected 113 merged results, got %d", len(result.Results))
	}
	if result.Paging.Limit != 50 || result.Paging.Offset != 0 || result.Paging.Total != 113 {
		t.Fatalf("unexpected paging: %+v", result.Paging)
	}
	if upstream.callCount() != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", upstream.callCount())
	}
}

func TestListSubscriptionsExplicitPagingSinglePage(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.handler = func(_, path string, _ any) (json.RawMessage, error) {
		if !strings.Contains(path, "limit=10") || !strings.Contains(path, "offset=20") {
			t.Fatalf("expected caller paging forwarded, got %s", path)
		}
		return json.RawMessage(`{"results":[{"id":1}],"paging":{"limit":10,"offset":20,"total":200}}`), nil
	}

	params := url.Values{}
	params.Set("limit", "10")
	params.Set("offset", "20")

	svc := NewBillingService(upstream, config.MercadoPagoConfig{})
	result, err := svc.ListSubscriptions(context.Background(), &types.SubscriptionListRequest{Params: params})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if upstream.callCount() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", upstream.callCount())
	}
	if result.Paging.Total != 200 {
		t.Fatalf("expected upstream paging passthrough, got %+v", result.Paging)
	}
}

func TestListSubscriptionsFilters(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.handler = func(_, _ string, _ any) (json.RawMessage, error) {
		return json.RawMessage(`{"results":[
			{"id":1,"status":"authorized"},
			{"id":2,"status":"active"},
			{"id":3,"status":"paused"},
			{"id":4,"status":"cancelled"}
		],"paging":{"limit":50,"offset":0,"total":4}}`), nil
	}

	svc := NewBillingService(upstream, config.MercadoPagoConfig{})

	result, err := svc.ListSubscriptions(context.Background(), &types.SubscriptionListRequest{Params: url.Values{}, ActiveOnly: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Results) != 2 || result.Paging.Total != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d (total %d)", len(result.Results), result.Paging.Total)
	}

	result, err = svc.ListSubscriptions(context.Background(), &types.SubscriptionListRequest{Params: url.Values{}, Status: "paused"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Results) != 1 || result.Paging.Total != 1 {
		t.Fatalf("expected 1 paused subscription, got %d", len(result.Results))
	}
}

func TestCreatePlanRawOverrideBypassesMapping(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := NewBillingService(upstream, config.MercadoPagoConfig{DefaultCurrency: "MXN"})

	raw := json.RawMessage(`{"reason":"verbatim","anything":"goes"}`)
	if _, err := svc.CreatePlan(context.Background(), &types.PlanRequest{Raw: raw}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if upstream.callCount() != 1 {
		t.Fatalf("expected one upstream call, got %d", upstream.callCount())
	}
	call := upstream.calls[0]
	if call.method != http.MethodPost || call.path != "/preapproval_plan" {
		t.Fatalf("unexpected call: %+v", call)
	}
	forwarded, ok := call.payload.(json.RawMessage)
	if !ok || string(forwarded) != string(raw) {
		t.Fatalf("expected raw body forwarded untouched, got %#v", call.payload)
	}
}

func TestUpdatePlanRefusesCancelledPlan(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.handler = func(method, _ string, _ any) (json.RawMessage, error) {
		if method != http.MethodGet {
			t.Fatalf("no write expected for cancelled plan, got %s", method)
		}
		return json.RawMessage(`{"id":"plan-1","status":"cancelled"}`), nil
	}

	svc := NewBillingService(upstream, config.MercadoPagoConfig{})
	_, err := svc.UpdatePlan(context.Background(), "plan-1", &types.PlanRequest{Name: "Renamed"})
	if !errors.Is(err, ErrPlanCancelled) {
		t.Fatalf("expected ErrPlanCancelled, got %v", err)
	}
	if upstream.callCount() != 1 {
		t.Fatalf("expected only the status probe call, got %d", upstream.callCount())
	}
}

func TestCancelPlanSendsCancelledStatus(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := NewBillingService(upstream, config.MercadoPagoConfig{})

	if err := svc.CancelPlan(context.Background(), "plan-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	call := upstream.calls[0]
	if call.method != http.MethodPut || call.path != "/preapproval_plan/plan-1" {
		t.Fatalf("unexpected call: %+v", call)
	}
	data, _ := json.Marshal(call.payload)
	if string(data) != `{"status":"cancelled"}` {
		t.Fatalf("unexpected payload: %s", string(data))
	}
}

func TestCreatePreferenceSellerGuardSingleFlight(t *testing.T) {
	upstream := &fakeUpstream{sellerID: "42"}
	svc := NewBillingService(upstream, config.MercadoPagoConfig{DefaultCurrency: "MXN", SellerID: "42"})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePreference(context.Background(), &types.PreferenceRequest{Price: 10})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if calls := atomic.LoadInt32(&upstream.sellerCalls); calls != 1 {
		t.Fatalf("expected one seller lookup, got %d", calls)
	}
}

func TestCreatePreferenceSellerMismatchIsMemoized(t *testing.T) {
	upstream := &fakeUpstream{sellerID: "99"}
	svc := NewBillingService(upstream, config.MercadoPagoConfig{DefaultCurrency: "MXN", SellerID: "42"})

	for i := 0; i < 2; i++ {
		_, err := svc.CreatePreference(context.Background(), &types.PreferenceRequest{Price: 10})
		if !errors.Is(err, ErrSellerMismatch) {
			t.Fatalf("expected ErrSellerMismatch, got %v", err)
		}
	}
	if calls := atomic.LoadInt32(&upstream.sellerCalls); calls != 1 {
		t.Fatalf("expected memoized seller lookup, got %d calls", calls)
	}
	if upstream.callCount() != 0 {
		t.Fatal("no preference must be created on seller mismatch")
	}
}

func TestCreatePreferenceSkipsGuardWithoutConfiguredSeller(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := NewBillingService(upstream, config.MercadoPagoConfig{DefaultCurrency: "MXN"})

	if _, err := svc.CreatePreference(context.Background(), &types.PreferenceRequest{Price: 10}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if calls := atomic.LoadInt32(&upstream.sellerCalls); calls != 0 {
		t.Fatalf("expected no seller lookup, got %d", calls)
	}
}
