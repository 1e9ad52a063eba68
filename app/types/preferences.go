package types

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type PreferenceRequest struct {
	Title           string  `json:"title,omitempty"`
	Description     string  `json:"description,omitempty"`
	Quantity        int     `json:"quantity,omitempty"`
	Price           float64 `json:"price,omitempty"`
	NotificationURL string  `json:"notificationUrl,omitempty"`
	SuccessURL      string  `json:"successUrl,omitempty"`
	FailureURL      string  `json:"failureUrl,omitempty"`
	PendingURL      string  `json:"pendingUrl,omitempty"`
	PayerEmail      string  `json:"payerEmail,omitempty"`
}

func NewPreferenceRequestFromContext(ctx echo.Context) (*PreferenceRequest, error) {
	var body PreferenceRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Title = strings.TrimSpace(body.Title)
	body.Description = strings.TrimSpace(body.Description)
	body.NotificationURL = strings.TrimSpace(body.NotificationURL)
	body.SuccessURL = strings.TrimSpace(body.SuccessURL)
	body.FailureURL = strings.TrimSpace(body.FailureURL)
	body.PendingURL = strings.TrimSpace(body.PendingURL)
	body.PayerEmail = strings.TrimSpace(body.PayerEmail)

	return &body, nil
}
