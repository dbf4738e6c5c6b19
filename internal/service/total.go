package service

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Total is Σ price × quantity over the order lines minus the coupon amount,
// never below zero. Lines must have their Item loaded.
func Total(order *models.Order) decimal.Decimal {
	sum := decimal.Zero
	for i := range order.Items {
		sum = sum.Add(order.Items[i].LineTotal())
	}
	if order.Coupon != nil {
		sum = sum.Sub(order.Coupon.Amount)
	}
	if sum.IsNegative() {
		return decimal.Zero
	}
	return sum
}

// MinorUnits converts an amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
