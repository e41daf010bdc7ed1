package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/service"
	"github.com/triskelion9/justdjangoecomm/internal/transport"
)

type WebhookHTTP struct {
	Svc *service.OrderService
}

// PaymentConfirmation consumes the provider's asynchronous charge event.
// A replayed event id is acknowledged with 200 so the provider stops
// retrying; it changes nothing.
func (h *WebhookHTTP) PaymentConfirmation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.payment")

	var req transport.PaymentWebhookRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("webhook_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EventID == "" || req.OrderRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id and order_ref required")
	}

	_, err := h.Svc.ConfirmPayment(ctx, req.EventID, req.OrderRef, req.ChargeID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEvent):
			l.Info("webhook_duplicate", "event_id", req.EventID)
			return c.NoContent(http.StatusOK)
		case errors.Is(err, service.ErrNotFound):
			l.Warn("webhook_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		default:
			l.Error("webhook_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("webhook_applied", "event_id", req.EventID, "order_ref", req.OrderRef)
	return c.NoContent(http.StatusOK)
}
