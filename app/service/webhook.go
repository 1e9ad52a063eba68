package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

const defaultWebhookLimit = 50

type webhookStore interface {
	Append(event *entity.WebhookEvent) error
	ReadLast(limit int) ([]json.RawMessage, error)
}

type paymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
}

// WebhookService normalizes inbound provider notifications and appends them
// to the webhook log. Delivery is at-least-once; deduplication is the
// consumer's responsibility.
type WebhookService struct {
	store    webhookStore
	payments paymentFetcher
	secret   string
	logger   logrus.FieldLogger
}

func NewWebhookService(store webhookStore, payments paymentFetcher, secret string) *WebhookService {
	return &WebhookService{
		store:    store,
		payments: payments,
		secret:   strings.TrimSpace(secret),
		logger:   factory.NewModuleLogger("webhook-service"),
	}
}

// Ingest runs the pipeline: auth check, type classification, optional
// payment enrichment, rejection classification, append.
func (s *WebhookService) Ingest(ctx context.Context, req *types.IngestWebhookRequest) (*entity.WebhookEvent, error) {
	if err := s.checkSecret(req.Secret); err != nil {
		return nil, err
	}

	eventType := classifyEventType(req.Body, req.Query)
	resourceID := extractResourceID(req.Body, req.Query)

	var payment json.RawMessage
	if strings.Contains(eventType, "payment") && resourceID != "" {
		detail, err := s.payments.GetPayment(ctx, resourceID)
		if err != nil {
			// Logging the event must never be blocked by a failed
			// enrichment fetch.
			s.logger.WithError(err).WithField("payment_id", resourceID).Warn("Payment enrichment failed")
		} else {
			payment = detail
		}
	}

	action := stringValue(req.Body["action"])
	if action == "" {
		action = strings.TrimSpace(req.Query["action"])
	}

	event := &entity.WebhookEvent{
		ID:       uuid.NewString(),
		Received: time.Now().UnixMilli(),
		Event:    eventType,
		Action:   action,
		Data:     resolveData(req.Body),
		Raw:      req.Body,
		Query:    req.Query,
		Headers:  req.Headers,
		Full: &entity.WebhookEnvelope{
			Body:    req.Body,
			Query:   req.Query,
			Headers: req.Headers,
		},
		Payment:         payment,
		PaymentRejected: classifyRejected(payment),
	}

	if err := s.store.Append(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *WebhookService) ListWebhooks(limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultWebhookLimit
	}
	return s.store.ReadLast(limit)
}

// checkSecret only rejects a mismatching secret. An absent inbound secret is
// accepted because provider-side notification setups cannot always attach a
// custom header.
func (s *WebhookService) checkSecret(provided string) error {
	if !s.secretEnforced() {
		return nil
	}
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return nil
	}
	if provided != s.secret {
		return ErrSecretMismatch
	}
	return nil
}

// secretEnforced guards against a misconfigured "secret" that is actually a
// webhook URL pasted into the wrong variable.
func (s *WebhookService) secretEnforced() bool {
	if s.secret == "" {
		return false
	}
	lower := strings.ToLower(s.secret)
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}

func classifyEventType(body map[string]any, query map[string]string) string {
	if v := stringValue(body["type"]); v != "" {
		return v
	}
	if v := stringValue(body["action"]); v != "" {
		return v
	}
	if v := strings.TrimSpace(query["type"]); v != "" {
		return v
	}
	if v := strings.TrimSpace(query["topic"]); v != "" {
		return v
	}
	return "untyped"
}

func extractResourceID(body map[string]any, query map[string]string) string {
	if data, ok := body["data"].(map[string]any); ok {
		if id := stringifyScalar(data["id"]); id != "" {
			return id
		}
	}
	return strings.TrimSpace(query["data.id"])
}

func resolveData(body map[string]any) any {
	if v, ok := body["data"]; ok && v != nil {
		return v
	}
	return body["resource"]
}

func classifyRejected(payment json.RawMessage) bool {
	if len(payment) == 0 {
		return false
	}
	var probe struct {
		Status       string `json:"status"`
		StatusDetail string `json:"status_detail"`
	}
	if json.Unmarshal(payment, &probe) != nil {
		return false
	}
	return probe.Status == "rejected" ||
		strings.Contains(probe.StatusDetail, "rejected") ||
		strings.Contains(probe.StatusDetail, "cc_rejected")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}
