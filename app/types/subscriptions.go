package types

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type SubscriptionRequest struct {
	PlanID                string         `json:"planId"`
	PayerEmail            string         `json:"payerEmail"`
	CardToken             string         `json:"cardToken,omitempty"`
	NotificationURL       string         `json:"notificationUrl,omitempty"`
	SubscriptionReference string         `json:"subscriptionReference,omitempty"`
	ApplicationFee        float64        `json:"applicationFee,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
}

func NewSubscriptionRequestFromContext(ctx echo.Context) (*SubscriptionRequest, error) {
	var body SubscriptionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PlanID = strings.TrimSpace(body.PlanID)
	body.PayerEmail = strings.TrimSpace(body.PayerEmail)
	body.CardToken = strings.TrimSpace(body.CardToken)
	body.NotificationURL = strings.TrimSpace(body.NotificationURL)
	body.SubscriptionReference = strings.TrimSpace(body.SubscriptionReference)

	return &body, nil
}

func (r *SubscriptionRequest) Validate() error {
	if r.PlanID == "" || r.PayerEmail == "" {
		return errors.New("planId and payerEmail are required to create a subscription")
	}
	return nil
}

// SubscriptionUpdateRequest is a partial update; only provided fields are
// forwarded. Raw bypasses mapping entirely.
type SubscriptionUpdateRequest struct {
	Raw json.RawMessage `json:"raw,omitempty"`

	Reason                   string         `json:"reason,omitempty"`
	ExternalReference        string         `json:"externalReference,omitempty"`
	PayerEmail               string         `json:"payerEmail,omitempty"`
	Status                   string         `json:"status,omitempty"`
	CardTokenID              string         `json:"cardTokenId,omitempty"`
	CardTokenIDSecondary     string         `json:"cardTokenIdSecondary,omitempty"`
	PaymentMethodIDSecondary string         `json:"paymentMethodIdSecondary,omitempty"`
	AutoRecurring            *AutoRecurring `json:"autoRecurring,omitempty"`
	TransactionAmount        *float64       `json:"transactionAmount,omitempty"`
	CurrencyID               string         `json:"currencyId,omitempty"`
	Frequency                int            `json:"frequency,omitempty"`
	FrequencyType            string         `json:"frequencyType,omitempty"`
	BillingDay               int            `json:"billingDay,omitempty"`
	EndDate                  string         `json:"endDate,omitempty"`
	FreeTrial                *FreeTrial     `json:"freeTrial,omitempty"`
	ProportionalPayment      *bool          `json:"proportionalPayment,omitempty"`
}

func NewSubscriptionUpdateRequestFromContext(ctx echo.Context) (*SubscriptionUpdateRequest, error) {
	var body SubscriptionUpdateRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

type SubscriptionIDRequest struct {
	SubscriptionID string
}

func NewSubscriptionIDRequestFromContext(ctx echo.Context) *SubscriptionIDRequest {
	return &SubscriptionIDRequest{SubscriptionID: strings.TrimSpace(ctx.Param("subscriptionId"))}
}

func (r *SubscriptionIDRequest) Validate() error {
	if r.SubscriptionID == "" {
		return errRequired("subscriptionId")
	}
	return nil
}

// SubscriptionListRequest carries the raw search query for the upstream call
// plus the post-aggregation filters applied on this side.
type SubscriptionListRequest struct {
	Params     url.Values
	Status     string
	ActiveOnly bool
}

func NewSubscriptionListRequestFromContext(ctx echo.Context) *SubscriptionListRequest {
	params := url.Values{}
	for key, values := range ctx.QueryParams() {
		for _, value := range values {
			if strings.TrimSpace(value) == "" {
				continue
			}
			params.Add(key, value)
		}
	}

	active := strings.TrimSpace(params.Get("active"))
	params.Del("active")

	return &SubscriptionListRequest{
		Params:     params,
		Status:     strings.TrimSpace(params.Get("status")),
		ActiveOnly: active == "true" || active == "1",
	}
}

// HasExplicitPaging reports whether the caller opted into raw upstream
// pagination instead of the aggregated single logical page.
func (r *SubscriptionListRequest) HasExplicitPaging() bool {
	return r.Params.Has("limit") || r.Params.Has("offset")
}
