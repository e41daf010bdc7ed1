package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/service"
	"github.com/triskelion9/justdjangoecomm/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.summary")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("cart_summary_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, total, err := h.Svc.Summary(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveOrder) {
			l.Warn("cart_summary_error", "status", 404)
			return echo.NewHTTPError(http.StatusNotFound, "you do not have an active order")
		}
		l.Error("cart_summary_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resp := transport.CartSummaryResponse{OrderID: order.ID, Total: total}
	if order.Coupon != nil {
		resp.CouponCode = order.Coupon.Code
	}
	for _, li := range order.Items {
		resp.Items = append(resp.Items, transport.CartLineResponse{
			ItemID:    li.ItemID,
			Slug:      li.Item.Slug,
			Title:     li.Item.Title,
			Quantity:  li.Quantity,
			LineTotal: service.LineFinal(li),
		})
	}

	l.Info("cart_summary_success")
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	line, notice, err := h.Svc.AddItem(ctx, userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("add_to_cart_success", "slug", c.Param("slug"))
	return c.JSON(http.StatusOK, transport.CartMutationResponse{Message: notice, Line: line})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	notice, err := h.Svc.RemoveItem(ctx, userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("remove_from_cart_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("remove_from_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("remove_from_cart_success", "slug", c.Param("slug"))
	return c.JSON(http.StatusOK, transport.CartMutationResponse{Message: notice})
}

func (h *CartHTTP) DecrementItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrement")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("decrement_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	line, notice, err := h.Svc.DecrementItem(ctx, userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("decrement_cart_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("decrement_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("decrement_cart_success", "slug", c.Param("slug"))
	return c.JSON(http.StatusOK, transport.CartMutationResponse{Message: notice, Line: line})
}
