package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

// CardTokenRequest is already provider-shaped on the wire, so the payload is
// kept opaque and forwarded as-is after the required fields are checked.
type CardTokenRequest struct {
	Payload map[string]any
}

func NewCardTokenRequestFromContext(ctx echo.Context) (*CardTokenRequest, error) {
	var payload map[string]any
	if err := ctx.Bind(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return &CardTokenRequest{Payload: payload}, nil
}

func (r *CardTokenRequest) Validate() error {
	for _, field := range []string{"card_number", "expiration_month", "expiration_year"} {
		if !hasValue(r.Payload[field]) {
			return errors.New("missing card_number, expiration_month or expiration_year")
		}
	}
	return nil
}

func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	default:
		return strings.TrimSpace(fmt.Sprint(t)) != ""
	}
}
