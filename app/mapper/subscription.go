package mapper

import "github.com/vibast-solutions/ms-go-billing/app/types"

// SubscriptionPayload is the provider-shaped preapproval body, shared by
// create and partial update.
type SubscriptionPayload struct {
	PlanID                   string               `json:"plan_id,omitempty"`
	PayerEmail               string               `json:"payer_email,omitempty"`
	CardTokenID              string               `json:"card_token_id,omitempty"`
	NotificationURL          string               `json:"notification_url,omitempty"`
	ExternalReference        string               `json:"external_reference,omitempty"`
	ApplicationFee           float64              `json:"application_fee,omitempty"`
	Metadata                 map[string]any       `json:"metadata,omitempty"`
	Reason                   string               `json:"reason,omitempty"`
	Status                   string               `json:"status,omitempty"`
	CardTokenIDSecondary     string               `json:"card_token_id_secondary,omitempty"`
	PaymentMethodIDSecondary string               `json:"payment_method_id_secondary,omitempty"`
	AutoRecurring            *types.AutoRecurring `json:"auto_recurring,omitempty"`
}

func SubscriptionCreatePayload(req *types.SubscriptionRequest) *SubscriptionPayload {
	return &SubscriptionPayload{
		PlanID:            req.PlanID,
		PayerEmail:        req.PayerEmail,
		CardTokenID:       req.CardToken,
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.SubscriptionReference,
		ApplicationFee:    req.ApplicationFee,
		Metadata:          req.Metadata,
	}
}

func SubscriptionUpdatePayload(req *types.SubscriptionUpdateRequest) *SubscriptionPayload {
	auto := req.AutoRecurring
	if auto == nil {
		auto = buildPartialSubscriptionRecurring(req)
	}

	return &SubscriptionPayload{
		Reason:                   req.Reason,
		ExternalReference:        req.ExternalReference,
		PayerEmail:               req.PayerEmail,
		Status:                   req.Status,
		CardTokenID:              req.CardTokenID,
		CardTokenIDSecondary:     req.CardTokenIDSecondary,
		PaymentMethodIDSecondary: req.PaymentMethodIDSecondary,
		AutoRecurring:            auto,
	}
}

// SubscriptionCancelPayload soft-cancels, mirroring the plan lifecycle.
func SubscriptionCancelPayload() *SubscriptionPayload {
	return &SubscriptionPayload{Status: "cancelled"}
}

func buildPartialSubscriptionRecurring(req *types.SubscriptionUpdateRequest) *types.AutoRecurring {
	auto := &types.AutoRecurring{}
	changed := false

	if req.TransactionAmount != nil {
		auto.TransactionAmount = req.TransactionAmount
		changed = true
	}
	if req.CurrencyID != "" {
		auto.CurrencyID = req.CurrencyID
		changed = true
	}
	if req.Frequency != 0 {
		auto.Frequency = req.Frequency
		changed = true
	}
	if req.FrequencyType != "" {
		auto.FrequencyType = req.FrequencyType
		changed = true
	}
	if req.BillingDay != 0 {
		auto.BillingDay = req.BillingDay
		changed = true
	}
	if req.EndDate != "" {
		auto.EndDate = req.EndDate
		changed = true
	}
	if req.FreeTrial != nil {
		auto.FreeTrial = req.FreeTrial
		changed = true
	}
	if req.ProportionalPayment != nil {
		auto.ProportionalPayment = req.ProportionalPayment
		changed = true
	}

	if !changed {
		return nil
	}
	return auto
}
