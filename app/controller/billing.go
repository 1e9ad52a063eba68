package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/mapper"
	"github.com/vibast-solutions/ms-go-billing/app/provider"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

type BillingController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewBillingController(billingService *service.BillingService) *BillingController {
	return &BillingController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok", Source: "billing"})
}

func (c *BillingController) CreatePlan(ctx echo.Context) error {
	req, err := types.NewPlanRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	raw, err := c.billingService.CreatePlan(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Create plan failed")
	}
	return ctx.JSONBlob(http.StatusCreated, raw)
}

func (c *BillingController) ListPlans(ctx echo.Context) error {
	raw, err := c.billingService.ListPlans(ctx.Request().Context())
	if err != nil {
		return c.writeServiceError(ctx, err, "List plans failed")
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (c *BillingController) GetPlan(ctx echo.Context) error {
	req := types.NewPlanIDRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	raw, err := c.billingService.GetPlan(ctx.Request().Context(), req.PlanID)
	if err != nil {
		return c.writeServiceError(ctx, err, "Get plan failed")
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (c *BillingController) UpdatePlan(ctx echo.Context) error {
	idReq := types.NewPlanIDRequestFromContext(ctx)
	if err := idReq.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}
	req, err := types.NewPlanRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	raw, err := c.billingService.UpdatePlan(ctx.Request().Context(), idReq.PlanID, req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Update plan failed")
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (c *BillingController) CancelPlan(ctx echo.Context) error {
	req := types.NewPlanIDRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.billingService.CancelPlan(ctx.Request().Context(), req.PlanID); err != nil {
		return c.writeServiceError(ctx, err, "Cancel plan failed")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *BillingController) CreateSubscription(ctx echo.Context) error {
	req, err := types.NewSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	raw, err := c.billingService.CreateSubscription(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Create subscription failed")
	}
	return ctx.JSONBlob(http.StatusCreated, raw)
}

func (c *BillingController) ListSubscriptions(ctx echo.Context) error {
	req := types.NewSubscriptionListRequestFromContext(ctx)

	result, err := c.billingService.ListSubscriptions(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "List subscriptions failed")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *BillingController) UpdateSubscription(ctx echo.Context) error {
	idReq := types.NewSubscriptionIDRequestFromContext(ctx)
	if err := idReq.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}
	req, err := types.NewSubscriptionUpdateRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	raw, err := c.billingService.UpdateSubscription(ctx.Request().Context(), idReq.SubscriptionID, req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Update subscription failed")
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (c *BillingController) CancelSubscription(ctx echo.Context) error {
	req := types.NewSubscriptionIDRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.billingService.CancelSubscription(ctx.Request().Context(), req.SubscriptionID); err != nil {
		return c.writeServiceError(ctx, err, "Cancel subscription failed")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *BillingController) CreatePreference(ctx echo.Context) error {
	req, err := types.NewPreferenceRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	raw, err := c.billingService.CreatePreference(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Create preference failed")
	}
	return ctx.JSONBlob(http.StatusCreated, raw)
}

func (c *BillingController) TokenizeCard(ctx echo.Context) error {
	req, err := types.NewCardTokenRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	raw, err := c.billingService.TokenizeCard(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Tokenize card failed")
	}
	return ctx.JSONBlob(http.StatusCreated, raw)
}

func (c *BillingController) writeServiceError(ctx echo.Context, err error, logMessage string) error {
	var apiErr *provider.APIError
	switch {
	case errors.Is(err, mapper.ErrMissingBackURL):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanCancelled):
		return writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &apiErr):
		// Upstream status codes pass through unchanged.
		return writeError(ctx, apiErr.StatusCode, apiErr.Message)
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
