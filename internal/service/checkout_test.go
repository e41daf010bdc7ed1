package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/payment"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
)

type checkoutEnv struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Gateway  *fakeGateway
	Notifier *fakeNotifier
	Producer *fakeProducer
	Svc      *CheckoutService
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()

	r := newTestRepo(t)
	env := &checkoutEnv{
		Repo:     r,
		Cart:     &CartService{Repo: r},
		Gateway:  &fakeGateway{},
		Notifier: &fakeNotifier{},
		Producer: &fakeProducer{},
	}
	env.Svc = &CheckoutService{
		Repo:     r,
		Gateway:  env.Gateway,
		Producer: env.Producer,
		Notifier: env.Notifier,
	}

	createItem(t, r, "blue-shirt", 10, nil)
	createItem(t, r, "coat", 20, floatPtr(15))
	return env
}

// fillCart loads the seeded items into user 1's cart: 2x blue-shirt plus one
// discounted coat, 35 total.
func (env *checkoutEnv) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, _, err := env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	_, _, err = env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	_, _, err = env.Cart.AddItem(ctx, 1, "coat")
	require.NoError(t, err)
}

func shippingRequest() CheckoutRequest {
	return CheckoutRequest{
		ShippingAddress: AddressInput{
			StreetAddress: "1 Main St",
			Country:       "US",
			Zip:           "10001",
		},
		SameBillingAddress: true,
		PaymentToken:       "tok_visa",
		Email:              "buyer@example.com",
	}
}

func TestCheckoutNoActiveOrder(t *testing.T) {
	env := newCheckoutEnv(t)

	_, err := env.Svc.Checkout(context.Background(), 1, shippingRequest())
	assert.ErrorIs(t, err, ErrNoActiveOrder)
	assert.Zero(t, env.Gateway.calls())
}

func TestCheckoutMissingShippingFields(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)
	ctx := context.Background()

	req := shippingRequest()
	req.ShippingAddress.Zip = ""

	_, err := env.Svc.Checkout(ctx, 1, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "shipping")
	assert.Zero(t, env.Gateway.calls())

	// cart untouched
	order, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)
	assert.False(t, order.Ordered)
	assert.Len(t, order.Items, 2)
}

func TestCheckoutMissingBillingFields(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)

	req := shippingRequest()
	req.SameBillingAddress = false

	_, err := env.Svc.Checkout(context.Background(), 1, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "billing")
}

func TestCheckoutNoDefaultShippingOnFile(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)

	req := shippingRequest()
	req.UseDefaultShipping = true
	req.ShippingAddress = AddressInput{}

	_, err := env.Svc.Checkout(context.Background(), 1, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "shipping")
}

func TestCheckoutProviderErrorLeavesCartOpen(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)
	ctx := context.Background()
	env.Gateway.err = payment.ErrProvider

	_, err := env.Svc.Checkout(ctx, 1, shippingRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrProvider)

	order, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)
	assert.False(t, order.Ordered)
	assert.Empty(t, order.RefCode)

	var payments int64
	require.NoError(t, env.Repo.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 0, payments)
}

func TestCheckoutSuccess(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)
	ctx := context.Background()
	require.NoError(t, env.Repo.CreateCoupon(ctx, &models.Coupon{Code: "SAVE5", Amount: 5}))

	req := shippingRequest()
	req.CouponCode = "SAVE5"

	res, err := env.Svc.Checkout(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, float64(30), res.Total)
	assert.Empty(t, res.Notices)
	assert.True(t, res.Order.Ordered)
	assert.Len(t, res.Order.RefCode, 20)
	require.NotNil(t, res.Order.OrderedDate)

	// the provider was charged the coupon-adjusted total in cents
	require.Equal(t, 1, env.Gateway.calls())
	assert.EqualValues(t, 3000, env.Gateway.requests[0].AmountCents)
	assert.Equal(t, "usd", env.Gateway.requests[0].Currency)

	// cart is gone, payment recorded, lines frozen
	_, err = env.Repo.FindOpenOrder(ctx, 1)
	require.Error(t, err)

	placed, err := env.Repo.FindOrderByID(ctx, res.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, placed.Payment)
	assert.Equal(t, "ch_test", placed.Payment.ChargeID)
	assert.Equal(t, float64(30), placed.Payment.Amount)
	for _, li := range placed.Items {
		assert.True(t, li.Ordered)
	}

	// billing was cloned from shipping as a billing-typed copy
	require.NotNil(t, placed.BillingAddress)
	assert.Equal(t, models.AddressTypeBilling, placed.BillingAddress.AddressType)
	assert.Equal(t, "1 Main St", placed.BillingAddress.StreetAddress)
	require.NotNil(t, placed.ShippingAddress)
	assert.NotEqual(t, placed.ShippingAddress.ID, placed.BillingAddress.ID)

	require.NotEmpty(t, env.Notifier.notes)
	assert.Equal(t, uint(1), env.Notifier.notes[0].UserID)
}

func TestCheckoutInvalidCouponDoesNotAbort(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)

	req := shippingRequest()
	req.CouponCode = "NOPE"

	res, err := env.Svc.Checkout(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Contains(t, res.Notices, NoticeInvalidCoupon)
	assert.Equal(t, float64(35), res.Total)
	assert.True(t, res.Order.Ordered)
}

func TestCheckoutDefaultAddresses(t *testing.T) {
	env := newCheckoutEnv(t)
	env.fillCart(t)
	ctx := context.Background()

	req := shippingRequest()
	req.SetDefaultShipping = true
	req.SameBillingAddress = false
	req.BillingAddress = AddressInput{StreetAddress: "2 Billing Rd", Country: "US", Zip: "10002"}
	req.SetDefaultBilling = true

	_, err := env.Svc.Checkout(ctx, 1, req)
	require.NoError(t, err)

	ship, err := env.Repo.FindDefaultAddress(ctx, 1, models.AddressTypeShipping)
	require.NoError(t, err)
	require.NotNil(t, ship)
	assert.Equal(t, "1 Main St", ship.StreetAddress)

	bill, err := env.Repo.FindDefaultAddress(ctx, 1, models.AddressTypeBilling)
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.Equal(t, "2 Billing Rd", bill.StreetAddress)

	// second checkout reuses the stored defaults
	env.fillCart(t)
	second := CheckoutRequest{
		UseDefaultShipping: true,
		UseDefaultBilling:  true,
		PaymentToken:       "tok_visa",
	}
	res, err := env.Svc.Checkout(ctx, 1, second)
	require.NoError(t, err)
	assert.Equal(t, ship.ID, *res.Order.ShippingAddressID)
	assert.Equal(t, bill.ID, *res.Order.BillingAddressID)
}

func TestSetDefaultAddressKeepsSingleDefault(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	first := &models.Address{UserID: 1, StreetAddress: "1 Old St", Country: "US", Zip: "1", AddressType: models.AddressTypeShipping}
	require.NoError(t, env.Repo.SaveAddress(ctx, first))
	require.NoError(t, env.Repo.SetDefaultAddress(ctx, first))

	second := &models.Address{UserID: 1, StreetAddress: "2 New St", Country: "US", Zip: "2", AddressType: models.AddressTypeShipping}
	require.NoError(t, env.Repo.SaveAddress(ctx, second))
	require.NoError(t, env.Repo.SetDefaultAddress(ctx, second))

	var defaults int64
	err := env.Repo.DB.Model(&models.Address{}).
		Where("user_id = ? AND address_type = ? AND \"default\" = ?", 1, models.AddressTypeShipping, true).
		Count(&defaults).Error
	require.NoError(t, err)
	assert.EqualValues(t, 1, defaults)

	def, err := env.Repo.FindDefaultAddress(ctx, 1, models.AddressTypeShipping)
	require.NoError(t, err)
	assert.Equal(t, "2 New St", def.StreetAddress)
}
