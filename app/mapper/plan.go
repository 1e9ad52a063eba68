package mapper

import (
	"errors"

	"github.com/vibast-solutions/ms-go-billing/app/types"
)

var ErrMissingBackURL = errors.New("back_url is required to create a plan (use a public https URL)")

// PlanDefaults are the configured fallbacks applied when a request leaves a
// logical field out entirely.
type PlanDefaults struct {
	Currency   string
	BackURL    string
	SuccessURL string
	PayerEmail string
}

// PlanPayload is the provider-shaped plan body.
type PlanPayload struct {
	Reason        string               `json:"reason,omitempty"`
	AutoRecurring *types.AutoRecurring `json:"auto_recurring,omitempty"`
	BackURL       string               `json:"back_url,omitempty"`
	PayerEmail    string               `json:"payer_email,omitempty"`
	Status        string               `json:"status,omitempty"`
}

// PlanCreatePayload maps an internal plan request onto the provider schema.
// Precedence per logical field: provider-named value, then camelCase alias,
// then a computed default. The back url must survive the https/non-loopback
// check before anything goes upstream.
func PlanCreatePayload(req *types.PlanRequest, defaults PlanDefaults) (*PlanPayload, error) {
	backURL := firstAllowedReturnURL(req.BackURL, req.BackURLAlias, defaults.BackURL, defaults.SuccessURL)
	if backURL == "" {
		return nil, ErrMissingBackURL
	}

	auto := req.AutoRecurring
	if auto == nil {
		auto = req.AutoRecurringAlias
	}
	if auto == nil {
		auto = buildAutoRecurring(req, defaults.Currency)
	}

	return &PlanPayload{
		Reason:        firstNonEmpty(req.Reason, req.Name),
		AutoRecurring: auto,
		BackURL:       backURL,
		PayerEmail:    firstNonEmpty(req.PayerEmail, req.PayerEmailAlias, defaults.PayerEmail),
	}, nil
}

// PlanUpdatePayload maps a partial update; absent fields stay absent so the
// provider merges onto the existing plan.
func PlanUpdatePayload(req *types.PlanRequest) *PlanPayload {
	auto := req.AutoRecurring
	if auto == nil {
		auto = req.AutoRecurringAlias
	}
	if auto == nil {
		auto = buildPartialAutoRecurring(req)
	}

	return &PlanPayload{
		Reason:        firstNonEmpty(req.Reason, req.Name),
		AutoRecurring: auto,
		BackURL:       firstNonEmpty(req.BackURL, req.BackURLAlias),
		PayerEmail:    firstNonEmpty(req.PayerEmail, req.PayerEmailAlias),
		Status:        req.Status,
	}
}

// PlanCancelPayload soft-deletes: plans are never removed upstream.
func PlanCancelPayload() *PlanPayload {
	return &PlanPayload{Status: "cancelled"}
}

func buildAutoRecurring(req *types.PlanRequest, defaultCurrency string) *types.AutoRecurring {
	frequency := req.Frequency
	frequencyType := firstNonEmpty(req.FrequencyType, req.FrequencyTypeAlias)
	if frequency == 0 && frequencyType == "" {
		frequency = 1
	}
	if frequencyType == "" {
		frequencyType = "months"
	}

	amount := req.Amount
	if amount == 0 {
		amount = req.Price
	}

	return &types.AutoRecurring{
		Frequency:              frequency,
		FrequencyType:          frequencyType,
		TransactionAmount:      &amount,
		CurrencyID:             firstNonEmpty(req.CurrencyID, req.CurrencyIDAlias, defaultCurrency),
		BillingDay:             firstNonZero(req.BillingDay, req.BillingDayAlias),
		EndDate:                firstNonEmpty(req.EndDate, req.EndDateAlias),
		FreeTrial:              resolveFreeTrial(req),
		BillingDayProportional: firstBool(req.BillingDayProportional, req.BillingDayProportionalAlias),
		ProportionalPayment:    firstBool(req.ProportionalPayment, req.ProportionalPaymentAlias),
	}
}

func buildPartialAutoRecurring(req *types.PlanRequest) *types.AutoRecurring {
	auto := &types.AutoRecurring{}
	changed := false

	amount := req.Amount
	if amount == 0 {
		amount = req.Price
	}
	if amount != 0 {
		auto.TransactionAmount = &amount
		changed = true
	}
	if currency := firstNonEmpty(req.CurrencyID, req.CurrencyIDAlias); currency != "" {
		auto.CurrencyID = currency
		changed = true
	}
	if req.Frequency != 0 {
		auto.Frequency = req.Frequency
		changed = true
	}
	if frequencyType := firstNonEmpty(req.FrequencyType, req.FrequencyTypeAlias); frequencyType != "" {
		auto.FrequencyType = frequencyType
		changed = true
	}
	if billingDay := firstNonZero(req.BillingDay, req.BillingDayAlias); billingDay != 0 {
		auto.BillingDay = billingDay
		changed = true
	}
	if endDate := firstNonEmpty(req.EndDate, req.EndDateAlias); endDate != "" {
		auto.EndDate = endDate
		changed = true
	}
	if freeTrial := resolveFreeTrial(req); freeTrial != nil {
		auto.FreeTrial = freeTrial
		changed = true
	}
	if proportional := firstBool(req.ProportionalPayment, req.ProportionalPaymentAlias); proportional != nil {
		auto.ProportionalPayment = proportional
		changed = true
	}
	if proportional := firstBool(req.BillingDayProportional, req.BillingDayProportionalAlias); proportional != nil {
		auto.BillingDayProportional = proportional
		changed = true
	}

	if !changed {
		return nil
	}
	return auto
}

func resolveFreeTrial(req *types.PlanRequest) *types.FreeTrial {
	if req.FreeTrial != nil {
		return req.FreeTrial
	}
	if req.FreeTrialAlias != nil {
		return req.FreeTrialAlias
	}
	if days := firstNonZero(req.FreeTrialDays, req.FreeTrialDaysAlias); days > 0 {
		return &types.FreeTrial{Frequency: days, FrequencyType: "days"}
	}
	return nil
}
