package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

func line(quantity uint, price float64, discount *float64) models.OrderItem {
	return models.OrderItem{
		Quantity: quantity,
		Item:     models.Item{Price: price, DiscountPrice: discount},
	}
}

func TestLineFinal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		li   models.OrderItem
		want float64
	}{
		{name: "list price", li: line(2, 10, nil), want: 20},
		{name: "discount wins", li: line(1, 20, floatPtr(15)), want: 15},
		{name: "discount wins even when higher", li: line(1, 10, floatPtr(12)), want: 12},
		{name: "quantity scales discount", li: line(3, 20, floatPtr(15)), want: 45},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LineFinal(tt.li))
		})
	}
}

func TestLineTotals(t *testing.T) {
	t.Parallel()

	li := line(2, 10, floatPtr(8))
	assert.Equal(t, float64(20), LineTotal(li))
	assert.Equal(t, float64(16), LineTotalDiscounted(li))
}

func TestOrderTotal(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		Items: []models.OrderItem{
			line(2, 10, nil),
			line(1, 20, floatPtr(15)),
		},
	}
	assert.Equal(t, float64(35), OrderTotal(order))

	order.Coupon = &models.Coupon{Code: "SAVE5", Amount: 5}
	assert.Equal(t, float64(30), OrderTotal(order))

	// recomputing never subtracts the coupon twice
	assert.Equal(t, float64(30), OrderTotal(order))
}

func TestOrderTotalMayGoNegative(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		Items:  []models.OrderItem{line(1, 10, nil)},
		Coupon: &models.Coupon{Code: "BIG", Amount: 100},
	}
	assert.Equal(t, float64(-90), OrderTotal(order))
}

func TestOrderTotalEmptyOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(0), OrderTotal(&models.Order{}))
}
