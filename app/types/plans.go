package types

import (
	"encoding/json"
	"strings"

	"github.com/labstack/echo/v4"
)

// PlanRequest carries both vocabularies a caller may use: the provider-named
// snake_case fields and the internal camelCase aliases. Mapping precedence is
// raw > provider-named > alias > computed default (see app/mapper).
type PlanRequest struct {
	// Raw bypasses all field mapping and is forwarded upstream unchanged.
	Raw json.RawMessage `json:"raw,omitempty"`

	Reason        string         `json:"reason,omitempty"`
	AutoRecurring *AutoRecurring `json:"auto_recurring,omitempty"`
	BackURL       string         `json:"back_url,omitempty"`
	PayerEmail    string         `json:"payer_email,omitempty"`
	FrequencyType string         `json:"frequency_type,omitempty"`
	CurrencyID    string         `json:"currency_id,omitempty"`
	BillingDay    int            `json:"billing_day,omitempty"`
	EndDate       string         `json:"end_date,omitempty"`
	FreeTrial     *FreeTrial     `json:"free_trial,omitempty"`
	FreeTrialDays int            `json:"free_trial_days,omitempty"`

	BillingDayProportional *bool `json:"billing_day_proportional,omitempty"`
	ProportionalPayment    *bool `json:"proportional_payment,omitempty"`

	Name               string         `json:"name,omitempty"`
	AutoRecurringAlias *AutoRecurring `json:"autoRecurring,omitempty"`
	BackURLAlias       string         `json:"backUrl,omitempty"`
	PayerEmailAlias    string         `json:"payerEmail,omitempty"`
	FrequencyTypeAlias string         `json:"frequencyType,omitempty"`
	CurrencyIDAlias    string         `json:"currencyId,omitempty"`
	BillingDayAlias    int            `json:"billingDay,omitempty"`
	EndDateAlias       string         `json:"endDate,omitempty"`
	FreeTrialAlias     *FreeTrial     `json:"freeTrial,omitempty"`
	FreeTrialDaysAlias int            `json:"freeTrialDays,omitempty"`

	BillingDayProportionalAlias *bool `json:"billingDayProportional,omitempty"`
	ProportionalPaymentAlias    *bool `json:"proportionalPayment,omitempty"`

	Frequency int     `json:"frequency,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Status    string  `json:"status,omitempty"`
}

func NewPlanRequestFromContext(ctx echo.Context) (*PlanRequest, error) {
	var body PlanRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Reason = strings.TrimSpace(body.Reason)
	body.Name = strings.TrimSpace(body.Name)
	body.BackURL = strings.TrimSpace(body.BackURL)
	body.BackURLAlias = strings.TrimSpace(body.BackURLAlias)
	body.PayerEmail = strings.TrimSpace(body.PayerEmail)
	body.PayerEmailAlias = strings.TrimSpace(body.PayerEmailAlias)

	return &body, nil
}

type PlanIDRequest struct {
	PlanID string
}

func NewPlanIDRequestFromContext(ctx echo.Context) *PlanIDRequest {
	return &PlanIDRequest{PlanID: strings.TrimSpace(ctx.Param("planId"))}
}

func (r *PlanIDRequest) Validate() error {
	if r.PlanID == "" {
		return errRequired("planId")
	}
	return nil
}
