package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/service"
	"github.com/triskelion9/justdjangoecomm/internal/transport"
	"github.com/triskelion9/justdjangoecomm/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("list_orders_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	orders, err := h.Svc.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("get_order_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if order.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, order)
}

// RequestRefund is keyed by ref code, independent of the session user, so a
// customer can file from a receipt.
func (h *OrderHTTP) RequestRefund(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.request_refund")

	var req transport.RefundRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("request_refund_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.RefCode == "" || req.Reason == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ref_code and reason required")
	}

	if _, err := h.Svc.RequestRefund(ctx, req.RefCode, req.Reason); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("request_refund_error", "status", 404)
			return echo.NewHTTPError(http.StatusNotFound, "this order does not exist")
		}
		l.Error("request_refund_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("request_refund_success", "ref_code", req.RefCode)
	return c.JSON(http.StatusOK, map[string]string{"message": "your request has reached us"})
}

// Administrative lifecycle transitions, one endpoint per flag flip.

func (h *OrderHTTP) MarkDelivered(c echo.Context) error {
	return h.transition(c, "order.mark_delivered", h.Svc.MarkDelivered)
}

func (h *OrderHTTP) MarkReceived(c echo.Context) error {
	return h.transition(c, "order.mark_received", h.Svc.MarkReceived)
}

func (h *OrderHTTP) GrantRefund(c echo.Context) error {
	return h.transition(c, "order.grant_refund", h.Svc.GrantRefund)
}

func (h *OrderHTTP) transition(c echo.Context, name string, fn func(context.Context, uint) (*models.Order, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	id, err := pathID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := fn(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn(name+"_error", "status", 404)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrConflict):
			l.Warn(name+"_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			l.Error(name+"_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info(name+"_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}
