package mapper

import "github.com/vibast-solutions/ms-go-billing/app/types"

const defaultPreferenceTitle = "Mercado Pago Subscription"

type PreferenceDefaults struct {
	Currency   string
	SuccessURL string
	FailureURL string
	PendingURL string
}

type PreferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type PreferenceBackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type PreferencePayer struct {
	Email string `json:"email"`
}

type PreferencePayload struct {
	Items           []PreferenceItem    `json:"items"`
	NotificationURL string              `json:"notification_url,omitempty"`
	BackURLs        *PreferenceBackURLs `json:"back_urls,omitempty"`
	Payer           *PreferencePayer    `json:"payer,omitempty"`
	AutoReturn      string              `json:"auto_return,omitempty"`
}

// PreferenceCreatePayload builds a one-time checkout session body. Back urls
// that fail the https/non-loopback check are dropped; failure and pending
// fall back to the surviving success url, and auto_return is requested only
// when a success url survived.
func PreferenceCreatePayload(req *types.PreferenceRequest, defaults PreferenceDefaults) *PreferencePayload {
	successURL := firstAllowedReturnURL(req.SuccessURL, defaults.SuccessURL)
	failureURL := firstAllowedReturnURL(req.FailureURL, defaults.FailureURL)
	if failureURL == "" {
		failureURL = successURL
	}
	pendingURL := firstAllowedReturnURL(req.PendingURL, defaults.PendingURL)
	if pendingURL == "" {
		pendingURL = successURL
	}

	title := req.Title
	if title == "" {
		title = defaultPreferenceTitle
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	payload := &PreferencePayload{
		Items: []PreferenceItem{{
			Title:       title,
			Description: req.Description,
			Quantity:    quantity,
			CurrencyID:  defaults.Currency,
			UnitPrice:   req.Price,
		}},
		NotificationURL: req.NotificationURL,
	}

	if successURL != "" || failureURL != "" || pendingURL != "" {
		payload.BackURLs = &PreferenceBackURLs{
			Success: successURL,
			Failure: failureURL,
			Pending: pendingURL,
		}
	}
	if req.PayerEmail != "" {
		payload.Payer = &PreferencePayer{Email: req.PayerEmail}
	}
	if successURL != "" {
		payload.AutoReturn = "approved"
	}

	return payload
}
