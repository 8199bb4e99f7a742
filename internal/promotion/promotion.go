// Package promotion проверяет купоны и подарочные карты и рассчитывает их вклад в сумму заказа.
package promotion

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ValidateCoupon проверяет, можно ли применить купон в момент now.
func ValidateCoupon(c model.Coupon, now time.Time) error {
	switch model.ComputeCouponStatus(c, now) {
	case model.CouponStatusDisabled:
		return model.ErrCouponDisabled
	case model.CouponStatusScheduled, model.CouponStatusExpired:
		return model.ErrCouponExpired
	case model.CouponStatusExhausted:
		return model.ErrCouponExhausted
	}
	return nil
}

// Scope возвращает сумму позиций, на которые распространяется купон.
func Scope(c model.Coupon, lines []model.CartLine) decimal.Decimal {
	scope := decimal.Zero
	for _, l := range lines {
		if c.Applicability.Includes(l.ProductID) {
			scope = scope.Add(l.Total())
		}
	}
	return scope
}

// CouponDiscount рассчитывает скидку купона для текущих позиций корзины.
// Результат всегда в пределах [0, scope] и округлён до копеек.
func CouponDiscount(c model.Coupon, lines []model.CartLine) decimal.Decimal {
	scope := Scope(c, lines)
	if !scope.IsPositive() || c.Value.IsNegative() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.Kind {
	case model.CouponKindFixed:
		discount = decimal.Min(c.Value, scope)
	case model.CouponKindPercentage:
		discount = decimal.Min(scope.Mul(c.Value).Div(hundred), scope)
	default:
		return decimal.Zero
	}

	return discount.Round(2)
}

// ValidateGiftCard проверяет, что подарочная карта активна в момент now.
func ValidateGiftCard(g model.GiftCard, now time.Time) error {
	if model.ComputeGiftCardStatus(g, now) != model.GiftCardStatusActive {
		return model.ErrGiftCardInvalid
	}
	return nil
}

// GiftCardAmount возвращает сумму, списываемую с подарочной карты.
// Купон применяется раньше карты: списание ограничено subtotal − discount.
func GiftCardAmount(g model.GiftCard, subtotal, discount decimal.Decimal) decimal.Decimal {
	remaining := subtotal.Sub(discount)
	if !remaining.IsPositive() || !g.Balance.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(g.Balance, remaining).Round(2)
}
