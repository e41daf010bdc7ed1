package transport

import "github.com/triskelion9/justdjangoecomm/internal/models"

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type CartLineResponse struct {
	ItemID    uint    `json:"item_id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Quantity  uint    `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type CartSummaryResponse struct {
	OrderID    uint               `json:"order_id"`
	Items      []CartLineResponse `json:"items"`
	CouponCode string             `json:"coupon_code,omitempty"`
	Total      float64            `json:"total"`
}

type CartMutationResponse struct {
	Message string            `json:"message"`
	Line    *models.OrderItem `json:"line,omitempty"`
}

type AddressFields struct {
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
}

type CheckoutRequest struct {
	UseDefaultShipping bool          `json:"use_default_shipping"`
	ShippingAddress    AddressFields `json:"shipping_address"`
	SetDefaultShipping bool          `json:"set_default_shipping"`

	SameBillingAddress bool          `json:"same_billing_address"`
	UseDefaultBilling  bool          `json:"use_default_billing"`
	BillingAddress     AddressFields `json:"billing_address"`
	SetDefaultBilling  bool          `json:"set_default_billing"`

	CouponCode   string `json:"coupon_code"`
	PaymentToken string `json:"payment_token"`
	Email        string `json:"email"`
}

type CheckoutResponse struct {
	OrderID  uint     `json:"order_id"`
	RefCode  string   `json:"ref_code"`
	Total    float64  `json:"total"`
	Messages []string `json:"messages,omitempty"`
}

type RefundRequest struct {
	RefCode string `json:"ref_code"`
	Reason  string `json:"reason"`
}

type PaymentWebhookRequest struct {
	EventID  string `json:"event_id"`
	OrderRef string `json:"order_ref"`
	ChargeID string `json:"charge_id"`
	Email    string `json:"email"`
}

type SearchResponse struct {
	Total int64         `json:"total"`
	Items []models.Item `json:"items"`
}
