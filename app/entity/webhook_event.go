package entity

import "encoding/json"

// WebhookEnvelope is the full inbound notification as received: decoded JSON
// body plus flattened query parameters and headers.
type WebhookEnvelope struct {
	Body    map[string]any    `json:"body"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
}

// WebhookEvent is one normalized, immutable entry of the webhook log.
type WebhookEvent struct {
	ID       string `json:"id"`
	Received int64  `json:"received"`

	Event  string `json:"event"`
	Action string `json:"action,omitempty"`
	Data   any    `json:"data,omitempty"`

	Raw     map[string]any    `json:"raw"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
	Full    *WebhookEnvelope  `json:"full"`

	Payment         json.RawMessage `json:"payment,omitempty"`
	PaymentRejected bool            `json:"payment_rejected"`
}
