// Package pricing сводит корзину, промо-акции и доставку в итоговую сумму заказа.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/promotion"
	"github.com/mmeshcher/storefront/internal/shipping"
)

// TaxRate задаёт фиксированную ставку налога. Начисляется на subtotal до скидки и подарочной карты.
var TaxRate = decimal.RequireFromString("0.05")

// Quote содержит расчёт суммы для текущего состояния корзины.
type Quote struct {
	Payment          model.Payment          `json:"payment"`
	ShippingMethods  []model.ShippingMethod `json:"shippingMethods"`
	ShippingResolved bool                   `json:"shippingResolved"`
	Warnings         []string               `json:"warnings,omitempty"`
}

// Aggregator рассчитывает итоговую сумму. Результат не кэшируется: каждый вызов пересчитывает
// скидку и списание с карты из текущих позиций.
type Aggregator struct {
	shipping *shipping.Resolver
}

// NewAggregator создаёт Aggregator.
func NewAggregator(resolver *shipping.Resolver) *Aggregator {
	return &Aggregator{shipping: resolver}
}

// Quote рассчитывает разбивку суммы для сессии на момент now.
func (a *Aggregator) Quote(s *cart.Session, now time.Time) Quote {
	var q Quote

	subtotal := s.Subtotal()

	discount := decimal.Zero
	if s.Coupon != nil {
		if err := promotion.ValidateCoupon(*s.Coupon, now); err != nil {
			q.Warnings = append(q.Warnings, "coupon "+s.Coupon.Code+": "+err.Error())
		} else {
			discount = promotion.CouponDiscount(*s.Coupon, s.Lines)
		}
	}

	giftCard := decimal.Zero
	if s.GiftCard != nil {
		if err := promotion.ValidateGiftCard(*s.GiftCard, now); err != nil {
			q.Warnings = append(q.Warnings, "gift card: "+err.Error())
		} else {
			giftCard = promotion.GiftCardAmount(*s.GiftCard, subtotal, discount)
		}
	}

	q.ShippingMethods = a.shipping.Available(s.Lines)

	shippingFee := decimal.Zero
	if s.ShippingMethod != "" {
		for _, m := range q.ShippingMethods {
			if m.Name == s.ShippingMethod {
				shippingFee = m.Fee
				q.ShippingResolved = true
				break
			}
		}
		if !q.ShippingResolved {
			q.Warnings = append(q.Warnings, "shipping method "+s.ShippingMethod+" is no longer available")
		}
	}

	q.Payment = Compute(subtotal, discount, giftCard, shippingFee)
	return q
}

// Compute собирает разбивку суммы из компонентов.
// total = subtotal − discount − giftCard + shipping + tax, округляется до копеек и не бывает отрицательным.
func Compute(subtotal, discount, giftCard, shippingFee decimal.Decimal) model.Payment {
	tax := subtotal.Mul(TaxRate).Round(2)

	total := subtotal.Sub(discount).Sub(giftCard).Add(shippingFee).Add(tax).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return model.Payment{
		Subtotal:       subtotal.Round(2),
		Discount:       discount.Round(2),
		GiftCardAmount: giftCard.Round(2),
		ShippingFee:    shippingFee.Round(2),
		Tax:            tax,
		Total:          total,
	}
}
