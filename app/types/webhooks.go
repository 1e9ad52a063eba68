package types

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const defaultWebhookListLimit = 50

// IngestWebhookRequest is the full inbound notification: decoded JSON body,
// flattened query parameters and headers, plus the shared-secret header.
type IngestWebhookRequest struct {
	Secret  string
	Body    map[string]any
	Query   map[string]string
	Headers map[string]string
}

func NewIngestWebhookRequestFromContext(ctx echo.Context) (*IngestWebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	if len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, &body); err != nil {
			return nil, err
		}
	}

	query := map[string]string{}
	for key, values := range ctx.QueryParams() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	headers := map[string]string{}
	for key, values := range ctx.Request().Header {
		if len(values) > 0 {
			headers[strings.ToLower(key)] = values[0]
		}
	}

	return &IngestWebhookRequest{
		Secret:  strings.TrimSpace(ctx.Request().Header.Get("X-Hook-Secret")),
		Body:    body,
		Query:   query,
		Headers: headers,
	}, nil
}

type ListWebhooksRequest struct {
	Limit int
}

func NewListWebhooksRequestFromContext(ctx echo.Context) (*ListWebhooksRequest, error) {
	limit := defaultWebhookListLimit
	if raw := strings.TrimSpace(ctx.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		limit = parsed
	}
	return &ListWebhooksRequest{Limit: limit}, nil
}

func (r *ListWebhooksRequest) Validate() error {
	if r.Limit <= 0 {
		r.Limit = defaultWebhookListLimit
	}
	return nil
}
