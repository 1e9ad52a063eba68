package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/controller"
	"github.com/vibast-solutions/ms-go-billing/app/provider"
	"github.com/vibast-solutions/ms-go-billing/app/repository"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
	"github.com/vibast-solutions/ms-go-billing/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the billing adapter.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	upstream := provider.NewMercadoPagoClient(provider.Config{
		AccessToken: cfg.MercadoPago.AccessToken,
		APIBase:     cfg.MercadoPago.APIBase,
		HTTPTimeout: cfg.MercadoPago.HTTPTimeout,
	})
	webhookLog := repository.NewWebhookLog(cfg.MercadoPago.WebhookStorePath)

	billingService := service.NewBillingService(upstream, cfg.MercadoPago)
	webhookService := service.NewWebhookService(webhookLog, upstream, cfg.MercadoPago.WebhookSecret)

	billingController := controller.NewBillingController(billingService)
	webhookController := controller.NewWebhookController(webhookService)

	e := setupHTTPServer(cfg, billingController, webhookController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	billingController *controller.BillingController,
	webhookController *controller.WebhookController,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newHTTPErrorHandler(cfg.App.IsProduction())

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	serviceName := cfg.App.ServiceName
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, &types.ServiceStatusResponse{Status: "ok", Service: serviceName})
	})
	e.GET("/success", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, &types.ServiceStatusResponse{Status: "success", Message: "Payment approved, thank you."})
	})
	e.GET("/failure", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, &types.ServiceStatusResponse{Status: "failure", Message: "Payment was not completed. Try again or use another payment method."})
	})
	e.GET("/pending", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, &types.ServiceStatusResponse{Status: "pending", Message: "Payment is pending confirmation."})
	})

	e.POST("/webhooks", webhookController.IngestWebhook)
	e.GET("/webhooks", webhookController.ListWebhooks)

	api := e.Group("/api")
	api.GET("/health", billingController.Health)
	api.POST("/plans", billingController.CreatePlan)
	api.GET("/plans", billingController.ListPlans)
	api.GET("/plans/:planId", billingController.GetPlan)
	api.PUT("/plans/:planId", billingController.UpdatePlan)
	api.DELETE("/plans/:planId", billingController.CancelPlan)
	api.POST("/preferences", billingController.CreatePreference)
	api.POST("/subscriptions", billingController.CreateSubscription)
	api.GET("/subscriptions", billingController.ListSubscriptions)
	api.PUT("/subscriptions/:subscriptionId", billingController.UpdateSubscription)
	api.DELETE("/subscriptions/:subscriptionId", billingController.CancelSubscription)
	api.POST("/tokenize", billingController.TokenizeCard)
	api.POST("/webhooks", webhookController.IngestWebhook)
	api.GET("/webhooks", webhookController.ListWebhooks)

	return e
}

func newHTTPErrorHandler(isProduction bool) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		statusCode := http.StatusInternalServerError
		message := "Internal Server Error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			statusCode = httpErr.Code
			if statusCode == http.StatusNotFound {
				message = "Route not found"
			} else if msg, ok := httpErr.Message.(string); ok {
				message = msg
			}
		} else if !isProduction {
			// Error detail is only exposed outside production.
			message = err.Error()
		}

		if writeErr := ctx.JSON(statusCode, &types.ErrorResponse{Error: message}); writeErr != nil {
			logrus.WithError(writeErr).Warn("Failed to write error response")
		}
	}
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
