package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/mapper"
	"github.com/vibast-solutions/ms-go-billing/app/types"
	"github.com/vibast-solutions/ms-go-billing/config"
)

const searchPageSize = 50

type upstreamClient interface {
	Request(ctx context.Context, method, path string, payload any) (json.RawMessage, error)
	GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	CurrentSellerID(ctx context.Context) (string, error)
}

// BillingService translates internal plan, subscription, preference, and card
// requests into Mercado Pago API calls.
type BillingService struct {
	upstream upstreamClient
	cfg      config.MercadoPagoConfig
	logger   logrus.FieldLogger

	sellerCheck sync.Once
	sellerErr   error
}

func NewBillingService(upstream upstreamClient, cfg config.MercadoPagoConfig) *BillingService {
	return &BillingService{
		upstream: upstream,
		cfg:      cfg,
		logger:   factory.NewModuleLogger("billing-service"),
	}
}

func (s *BillingService) CreatePlan(ctx context.Context, req *types.PlanRequest) (json.RawMessage, error) {
	if hasRawOverride(req.Raw) {
		return s.upstream.Request(ctx, http.MethodPost, "/preapproval_plan", req.Raw)
	}

	payload, err := mapper.PlanCreatePayload(req, s.planDefaults())
	if err != nil {
		return nil, err
	}
	return s.upstream.Request(ctx, http.MethodPost, "/preapproval_plan", payload)
}

func (s *BillingService) GetPlan(ctx context.Context, planID string) (json.RawMessage, error) {
	return s.upstream.Request(ctx, http.MethodGet, "/preapproval_plan/"+url.PathEscape(planID), nil)
}

func (s *BillingService) ListPlans(ctx context.Context) (json.RawMessage, error) {
	return s.upstream.Request(ctx, http.MethodGet, "/preapproval_plan/search", nil)
}

// UpdatePlan merges the provided fields onto the existing plan. Cancelled
// plans are terminal and refuse updates.
func (s *BillingService) UpdatePlan(ctx context.Context, planID string, req *types.PlanRequest) (json.RawMessage, error) {
	current, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(current, &probe)
	if probe.Status == "cancelled" {
		return nil, ErrPlanCancelled
	}

	path := "/preapproval_plan/" + url.PathEscape(planID)
	if hasRawOverride(req.Raw) {
		return s.upstream.Request(ctx, http.MethodPut, path, req.Raw)
	}
	return s.upstream.Request(ctx, http.MethodPut, path, mapper.PlanUpdatePayload(req))
}

// CancelPlan soft-deletes: the plan stays upstream with status cancelled.
func (s *BillingService) CancelPlan(ctx context.Context, planID string) error {
	_, err := s.upstream.Request(ctx, http.MethodPut, "/preapproval_plan/"+url.PathEscape(planID), mapper.PlanCancelPayload())
	return err
}

func (s *BillingService) CreateSubscription(ctx context.Context, req *types.SubscriptionRequest) (json.RawMessage, error) {
	return s.upstream.Request(ctx, http.MethodPost, "/preapproval", mapper.SubscriptionCreatePayload(req))
}

func (s *BillingService) UpdateSubscription(ctx context.Context, subscriptionID string, req *types.SubscriptionUpdateRequest) (json.RawMessage, error) {
	path := "/preapproval/" + url.PathEscape(subscriptionID)
	if hasRawOverride(req.Raw) {
		return s.upstream.Request(ctx, http.MethodPut, path, req.Raw)
	}
	return s.upstream.Request(ctx, http.MethodPut, path, mapper.SubscriptionUpdatePayload(req))
}

func (s *BillingService) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := s.upstream.Request(ctx, http.MethodPut, "/preapproval/"+url.PathEscape(subscriptionID), mapper.SubscriptionCancelPayload())
	return err
}

// ListSubscriptions aggregates the upstream search into one logical page
// unless the caller opted into explicit pagination, then applies the
// status/active filters on the merged result.
func (s *BillingService) ListSubscriptions(ctx context.Context, req *types.SubscriptionListRequest) (*entity.SearchResult, error) {
	result, err := s.searchSubscriptions(ctx, req)
	if err != nil {
		return nil, err
	}
	return filterSubscriptions(result, req.Status, req.ActiveOnly), nil
}

func (s *BillingService) CreatePreference(ctx context.Context, req *types.PreferenceRequest) (json.RawMessage, error) {
	if err := s.ensureSellerIdentity(ctx); err != nil {
		return nil, err
	}

	payload := mapper.PreferenceCreatePayload(req, mapper.PreferenceDefaults{
		Currency:   s.cfg.DefaultCurrency,
		SuccessURL: s.cfg.SuccessURL,
		FailureURL: s.cfg.FailureURL,
		PendingURL: s.cfg.PendingURL,
	})
	return s.upstream.Request(ctx, http.MethodPost, "/checkout/preferences", payload)
}

func (s *BillingService) TokenizeCard(ctx context.Context, req *types.CardTokenRequest) (json.RawMessage, error) {
	return s.upstream.Request(ctx, http.MethodPost, "/v1/card_tokens", req.Payload)
}

// ensureSellerIdentity verifies once per process that the configured token
// belongs to the expected seller account. Concurrent first callers coalesce
// into a single upstream check; the outcome, success or failure, is memoized.
func (s *BillingService) ensureSellerIdentity(ctx context.Context) error {
	if s.cfg.SellerID == "" {
		return nil
	}
	s.sellerCheck.Do(func() {
		sellerID, err := s.upstream.CurrentSellerID(ctx)
		if err != nil {
			s.sellerErr = err
			return
		}
		if sellerID != s.cfg.SellerID {
			s.sellerErr = fmt.Errorf("%w: expected=%s actual=%s", ErrSellerMismatch, s.cfg.SellerID, sellerID)
		}
	})
	return s.sellerErr
}

func (s *BillingService) searchSubscriptions(ctx context.Context, req *types.SubscriptionListRequest) (*entity.SearchResult, error) {
	if req.HasExplicitPaging() {
		return s.searchSubscriptionPage(ctx, req.Params)
	}

	// Pages until the first short page; upstream data is expected to be
	// finite.
	merged := make([]json.RawMessage, 0)
	offset := 0
	for {
		pageParams := cloneValues(req.Params)
		pageParams.Set("limit", strconv.Itoa(searchPageSize))
		pageParams.Set("offset", strconv.Itoa(offset))

		page, err := s.searchSubscriptionPage(ctx, pageParams)
		if err != nil {
			return nil, err
		}
		merged = append(merged, page.Results...)
		if len(page.Results) < searchPageSize {
			return &entity.SearchResult{
				Results: merged,
				Paging:  entity.Paging{Limit: searchPageSize, Offset: 0, Total: len(merged)},
			}, nil
		}
		offset += searchPageSize
	}
}

func (s *BillingService) searchSubscriptionPage(ctx context.Context, params url.Values) (*entity.SearchResult, error) {
	path := "/preapproval/search"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	raw, err := s.upstream.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result entity.SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []json.RawMessage{}
	}
	return &result, nil
}

func (s *BillingService) planDefaults() mapper.PlanDefaults {
	return mapper.PlanDefaults{
		Currency:   s.cfg.DefaultCurrency,
		BackURL:    s.cfg.BackURL,
		SuccessURL: s.cfg.SuccessURL,
		PayerEmail: s.cfg.DefaultPayerEmail,
	}
}

func filterSubscriptions(result *entity.SearchResult, status string, activeOnly bool) *entity.SearchResult {
	if status == "" && !activeOnly {
		return result
	}

	filtered := make([]json.RawMessage, 0, len(result.Results))
	for _, item := range result.Results {
		var probe struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(item, &probe)
		if activeOnly && probe.Status != "authorized" && probe.Status != "active" {
			continue
		}
		if status != "" && probe.Status != status {
			continue
		}
		filtered = append(filtered, item)
	}

	result.Results = filtered
	result.Paging.Total = len(filtered)
	return result
}

func cloneValues(src url.Values) url.Values {
	dst := url.Values{}
	for key, values := range src {
		dst[key] = append([]string(nil), values...)
	}
	return dst
}

func hasRawOverride(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && string(trimmed) != "null"
}
