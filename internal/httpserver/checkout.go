package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/payment"
	"github.com/triskelion9/justdjangoecomm/internal/service"
	"github.com/triskelion9/justdjangoecomm/internal/transport"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	userID, err := getUserID(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Checkout(ctx, userID, service.CheckoutRequest{
		UseDefaultShipping: req.UseDefaultShipping,
		ShippingAddress:    addressInput(req.ShippingAddress),
		SetDefaultShipping: req.SetDefaultShipping,
		SameBillingAddress: req.SameBillingAddress,
		UseDefaultBilling:  req.UseDefaultBilling,
		BillingAddress:     addressInput(req.BillingAddress),
		SetDefaultBilling:  req.SetDefaultBilling,
		CouponCode:         req.CouponCode,
		PaymentToken:       req.PaymentToken,
		Email:              req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveOrder):
			l.Warn("checkout_error", "status", 404)
			return echo.NewHTTPError(http.StatusNotFound, "you do not have an active order")
		case errors.Is(err, service.ErrInvalidAddress):
			l.Warn("checkout_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, payment.ErrProvider):
			// retryable by the user, cart is still open
			l.Warn("checkout_error", "status", 402, "error", err)
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		default:
			l.Error("checkout_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("checkout_success", "order_id", res.Order.ID, "total", res.Total)
	return c.JSON(http.StatusOK, transport.CheckoutResponse{
		OrderID:  res.Order.ID,
		RefCode:  res.Order.RefCode,
		Total:    res.Total,
		Messages: res.Notices,
	})
}

func addressInput(f transport.AddressFields) service.AddressInput {
	return service.AddressInput{
		StreetAddress:    f.StreetAddress,
		ApartmentAddress: f.ApartmentAddress,
		Country:          f.Country,
		Zip:              f.Zip,
	}
}
