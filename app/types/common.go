package types

import "fmt"

func errRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
}

type ServiceStatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Message string `json:"message,omitempty"`
}

// AutoRecurring is the provider-shaped recurrence descriptor. It is accepted
// verbatim on requests and emitted on upstream payloads, so the transaction
// amount is a pointer: partial updates must be able to leave it out entirely.
type AutoRecurring struct {
	Frequency              int        `json:"frequency,omitempty"`
	FrequencyType          string     `json:"frequency_type,omitempty"`
	TransactionAmount      *float64   `json:"transaction_amount,omitempty"`
	CurrencyID             string     `json:"currency_id,omitempty"`
	BillingDay             int        `json:"billing_day,omitempty"`
	EndDate                string     `json:"end_date,omitempty"`
	FreeTrial              *FreeTrial `json:"free_trial,omitempty"`
	BillingDayProportional *bool      `json:"billing_day_proportional,omitempty"`
	ProportionalPayment    *bool      `json:"proportional_payment,omitempty"`
}

type FreeTrial struct {
	Frequency     int    `json:"frequency"`
	FrequencyType string `json:"frequency_type"`
}
