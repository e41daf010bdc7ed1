package models

import (
	"time"
)

const (
	AddressTypeShipping = "S"
	AddressTypeBilling  = "B"
)

const (
	CategoryShirt      = "S"
	CategorySportswear = "SW"
	CategoryOutwear    = "OW"
)

const (
	LabelPrimary   = "P"
	LabelSecondary = "S"
	LabelDanger    = "D"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type Item struct {
	ID            uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug          string   `gorm:"uniqueIndex;not null"     json:"slug"`
	Title         string   `gorm:"not null"                 json:"title"`
	Price         float64  `gorm:"not null"                 json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Category      string   `gorm:"not null;default:S"       json:"category"`
	Label         string   `gorm:"not null;default:P"       json:"label"`
	Description   string   `json:"description"`
	Quantity      int      `json:"quantity"`
}

// OrderItem is one line of a cart or a placed order. While the owning order
// has Ordered=false there is at most one line per (order, item) pair and
// quantity mutations go through the cart repo under a row lock.
type OrderItem struct {
	ID       uint `gorm:"primaryKey"                          json:"id"`
	OrderID  uint `gorm:"uniqueIndex:idx_order_item;not null" json:"order_id"`
	UserID   uint `gorm:"index;not null"                      json:"user_id"`
	ItemID   uint `gorm:"uniqueIndex:idx_order_item;not null" json:"item_id"`
	Quantity uint `gorm:"default:1;check:quantity>0"          json:"quantity"`
	Ordered  bool `gorm:"default:false"                       json:"ordered"`

	Item Item `gorm:"foreignKey:ItemID" json:"item"`
}

// Order doubles as the cart: Ordered=false is the open cart, at most one per
// user (enforced by the partial unique index on UserID). Received implies
// Delivered; granting a refund clears RefundRequested.
type Order struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null;uniqueIndex:uniq_user_open_cart,where:ordered = false" json:"user_id"`
	RefCode     string     `gorm:"index"          json:"ref_code"`
	StartDate   time.Time  `gorm:"not null"       json:"start_date"`
	OrderedDate *time.Time `json:"ordered_date,omitempty"`

	Ordered         bool `gorm:"index;default:false" json:"ordered"`
	Delivered       bool `gorm:"default:false"       json:"delivered"`
	Received        bool `gorm:"default:false"       json:"received"`
	RefundRequested bool `gorm:"default:false"       json:"refund_requested"`
	RefundGranted   bool `gorm:"default:false"       json:"refund_granted"`

	ShippingAddressID *uint `json:"shipping_address_id,omitempty"`
	BillingAddressID  *uint `json:"billing_address_id,omitempty"`
	PaymentID         *uint `json:"payment_id,omitempty"`
	CouponID          *uint `json:"coupon_id,omitempty"`

	Items           []OrderItem `gorm:"foreignKey:OrderID"           json:"items"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID"  json:"billing_address,omitempty"`
	Payment         *Payment    `gorm:"foreignKey:PaymentID"         json:"payment,omitempty"`
	Coupon          *Coupon     `gorm:"foreignKey:CouponID"          json:"coupon,omitempty"`
}

type Address struct {
	ID               uint   `gorm:"primaryKey"      json:"id"`
	UserID           uint   `gorm:"index;not null"  json:"user_id"`
	StreetAddress    string `gorm:"not null"        json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `gorm:"not null"        json:"country"`
	Zip              string `gorm:"not null"        json:"zip"`
	AddressType      string `gorm:"size:1;not null" json:"address_type"`
	Default          bool   `gorm:"default:false"   json:"default"`
}

type Coupon struct {
	ID     uint    `gorm:"primaryKey"           json:"id"`
	Code   string  `gorm:"uniqueIndex;not null" json:"code"`
	Amount float64 `gorm:"not null"             json:"amount"`
}

// Payment records one successful external charge, immutable after creation.
type Payment struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	ChargeID  string    `gorm:"uniqueIndex;not null" json:"charge_id"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	Amount    float64   `gorm:"not null"             json:"amount"`
	Timestamp time.Time `gorm:"not null"             json:"timestamp"`
}

type Refund struct {
	ID       uint   `gorm:"primaryKey"     json:"id"`
	OrderID  uint   `gorm:"index;not null" json:"order_id"`
	Reason   string `gorm:"not null"       json:"reason"`
	Accepted bool   `gorm:"default:false"  json:"accepted"`
}

// ProcessedEvent makes webhook confirmation exactly-once: the unique index on
// EventID rejects the second insert of a replayed provider event.
type ProcessedEvent struct {
	ID          uint      `gorm:"primaryKey"           json:"id"`
	EventID     string    `gorm:"uniqueIndex;not null" json:"event_id"`
	ProcessedAt time.Time `gorm:"not null"             json:"processed_at"`
}
