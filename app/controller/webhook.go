package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

type WebhookController struct {
	webhookService *service.WebhookService
	logger         logrus.FieldLogger
}

func NewWebhookController(webhookService *service.WebhookService) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		logger:         factory.NewModuleLogger("webhook-controller"),
	}
}

func (c *WebhookController) IngestWebhook(ctx echo.Context) error {
	req, err := types.NewIngestWebhookRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	event, err := c.webhookService.Ingest(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrSecretMismatch) {
			return writeError(ctx, http.StatusUnauthorized, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Ingest webhook failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, event)
}

func (c *WebhookController) ListWebhooks(ctx echo.Context) error {
	req, err := types.NewListWebhooksRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid limit")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	records, err := c.webhookService.ListWebhooks(req.Limit)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List webhooks failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, records)
}
