package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/mykafka"
	"github.com/triskelion9/justdjangoecomm/internal/notify"
	"github.com/triskelion9/justdjangoecomm/internal/payment"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/util"
)

const NoticeInvalidCoupon = "This coupon does not exist."

const defaultChargeTimeout = 15 * time.Second

type AddressInput struct {
	StreetAddress    string
	ApartmentAddress string
	Country          string
	Zip              string
}

func (a AddressInput) complete() bool {
	return a.StreetAddress != "" && a.Country != "" && a.Zip != ""
}

type CheckoutRequest struct {
	UseDefaultShipping bool
	ShippingAddress    AddressInput
	SetDefaultShipping bool

	SameBillingAddress bool
	UseDefaultBilling  bool
	BillingAddress     AddressInput
	SetDefaultBilling  bool

	CouponCode   string
	PaymentToken string
	Email        string
}

type CheckoutResult struct {
	Order   *models.Order
	Total   float64
	Notices []string
}

type CheckoutService struct {
	Repo          *repo.GormRepo
	Gateway       payment.Gateway
	Producer      EventPublisher
	Notifier      notify.Notifier
	ChargeTimeout time.Duration
}

// Checkout freezes the user's open cart into a placed order: resolve both
// addresses, attach an optional coupon, charge the gateway, and only then
// run the place transition. Any failure before or during the charge leaves
// the cart exactly as it was.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, req CheckoutRequest) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "checkout", "user_id", userID)

	order, err := s.Repo.FindOpenOrder(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}

	shipping, err := s.resolveAddress(ctx, userID, models.AddressTypeShipping,
		req.UseDefaultShipping, req.ShippingAddress, req.SetDefaultShipping)
	if err != nil {
		return nil, err
	}

	billing, err := s.resolveBilling(ctx, userID, req, shipping)
	if err != nil {
		return nil, err
	}

	order.ShippingAddressID = &shipping.ID
	order.ShippingAddress = shipping
	order.BillingAddressID = &billing.ID
	order.BillingAddress = billing

	var notices []string
	if req.CouponCode != "" {
		coupon, err := s.Repo.FindCouponByCode(ctx, req.CouponCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notices = append(notices, NoticeInvalidCoupon)
		} else if err != nil {
			return nil, err
		} else {
			order.CouponID = &coupon.ID
			order.Coupon = coupon
		}
	}

	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	total := OrderTotal(order)
	if total < 0 {
		l.Warn("coupon exceeds item total, order total is negative", "order_id", order.ID, "total", total)
	}

	timeout := s.ChargeTimeout
	if timeout <= 0 {
		timeout = defaultChargeTimeout
	}
	chargeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.Gateway.Charge(chargeCtx, payment.ChargeRequest{
		AmountCents:  int64(total * 100),
		Currency:     "usd",
		PaymentToken: req.PaymentToken,
		Email:        req.Email,
		OrderID:      order.ID,
	})
	if err != nil {
		l.Warn("charge failed, cart stays open", "order_id", order.ID, "error", err)
		if chargeCtx.Err() != nil && !errors.Is(err, payment.ErrProvider) {
			return nil, fmt.Errorf("%w: charge timed out", payment.ErrProvider)
		}
		return nil, err
	}

	placedOrder, placed, err := s.Repo.PlaceOrder(ctx, order.ID, res.ProviderChargeID, util.NewRefCode(), "", total)
	if err != nil {
		return nil, err
	}
	if placed {
		s.announce(ctx, placedOrder, total)
	}

	return &CheckoutResult{Order: placedOrder, Total: total, Notices: notices}, nil
}

func (s *CheckoutService) resolveBilling(ctx context.Context, userID uint, req CheckoutRequest, shipping *models.Address) (*models.Address, error) {
	if req.SameBillingAddress {
		// billing-typed copy of the shipping record
		clone := &models.Address{
			UserID:           userID,
			StreetAddress:    shipping.StreetAddress,
			ApartmentAddress: shipping.ApartmentAddress,
			Country:          shipping.Country,
			Zip:              shipping.Zip,
			AddressType:      models.AddressTypeBilling,
		}
		if err := s.Repo.SaveAddress(ctx, clone); err != nil {
			return nil, err
		}
		return clone, nil
	}
	return s.resolveAddress(ctx, userID, models.AddressTypeBilling,
		req.UseDefaultBilling, req.BillingAddress, req.SetDefaultBilling)
}

func (s *CheckoutService) resolveAddress(ctx context.Context, userID uint, addressType string, useDefault bool, input AddressInput, setDefault bool) (*models.Address, error) {
	side := "shipping"
	if addressType == models.AddressTypeBilling {
		side = "billing"
	}

	if useDefault {
		addr, err := s.Repo.FindDefaultAddress(ctx, userID, addressType)
		if err != nil {
			return nil, err
		}
		if addr == nil {
			return nil, fmt.Errorf("%w: no default %s address available", ErrInvalidAddress, side)
		}
		return addr, nil
	}

	if !input.complete() {
		return nil, fmt.Errorf("%w: required %s address fields missing", ErrInvalidAddress, side)
	}

	addr := &models.Address{
		UserID:           userID,
		StreetAddress:    input.StreetAddress,
		ApartmentAddress: input.ApartmentAddress,
		Country:          input.Country,
		Zip:              input.Zip,
		AddressType:      addressType,
	}
	if err := s.Repo.SaveAddress(ctx, addr); err != nil {
		return nil, err
	}
	if setDefault {
		if err := s.Repo.SetDefaultAddress(ctx, addr); err != nil {
			return nil, err
		}
	}
	return addr, nil
}

func (s *CheckoutService) announce(ctx context.Context, order *models.Order, total float64) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, order.UserID, "Your order was successful!", notify.SeverityInfo)
	}
	if s.Producer == nil {
		return
	}
	err := s.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.ID), 10), map[string]interface{}{
		"type":     "order_placed",
		"orderID":  order.ID,
		"userID":   order.UserID,
		"refCode":  order.RefCode,
		"total":    total,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("order event publish failed", "error", err)
	}
}
