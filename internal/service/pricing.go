package service

import "github.com/triskelion9/justdjangoecomm/internal/models"

// LineTotal is quantity times list price.
func LineTotal(li models.OrderItem) float64 {
	return float64(li.Quantity) * li.Item.Price
}

// LineTotalDiscounted is quantity times discount price; only meaningful when
// the item carries one.
func LineTotalDiscounted(li models.OrderItem) float64 {
	if li.Item.DiscountPrice == nil {
		return 0
	}
	return float64(li.Quantity) * *li.Item.DiscountPrice
}

// LineFinal applies the per-line policy: a discount price, when present,
// always wins over the list price. It is never compared for being lower.
func LineFinal(li models.OrderItem) float64 {
	if li.Item.DiscountPrice != nil {
		return LineTotalDiscounted(li)
	}
	return LineTotal(li)
}

// OrderTotal sums the final line prices and subtracts the attached coupon
// once. The total may go negative when the coupon exceeds the item total;
// that matches the storefront's historical behavior and is deliberately not
// clamped here.
func OrderTotal(order *models.Order) float64 {
	var total float64
	for _, li := range order.Items {
		total += LineFinal(li)
	}
	if order.Coupon != nil {
		total -= order.Coupon.Amount
	}
	return total
}
