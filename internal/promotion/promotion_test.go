package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/storefront/internal/model"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func line(productID string, price string, qty int) model.CartLine {
	return model.CartLine{ProductID: productID, UnitPrice: dec(price), Quantity: qty}
}

func coupon(kind model.CouponKind, value string, app model.Applicability) model.Coupon {
	return model.Coupon{
		Code:          "PROMO",
		Kind:          kind,
		Value:         dec(value),
		Applicability: app,
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
		Enabled:       true,
	}
}

func TestValidateCoupon(t *testing.T) {
	limit := 1

	tests := []struct {
		name   string
		modify func(c *model.Coupon)
		want   error
	}{
		{name: "valid", modify: func(c *model.Coupon) {}},
		{name: "expired", modify: func(c *model.Coupon) { c.ValidTo = now.Add(-time.Minute) }, want: model.ErrCouponExpired},
		{name: "not yet valid", modify: func(c *model.Coupon) { c.ValidFrom = now.Add(time.Minute) }, want: model.ErrCouponExpired},
		{name: "disabled", modify: func(c *model.Coupon) { c.Enabled = false }, want: model.ErrCouponDisabled},
		{name: "exhausted", modify: func(c *model.Coupon) {
			c.UsageLimit = &limit
			c.UsageCount = 1
		}, want: model.ErrCouponExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := coupon(model.CouponKindFixed, "10", model.Applicability{All: true})
			tt.modify(&c)

			err := ValidateCoupon(c, now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCouponDiscount(t *testing.T) {
	lines := []model.CartLine{
		line("a", "1000", 2),
		line("b", "300", 1),
	}

	tests := []struct {
		name   string
		coupon model.Coupon
		want   string
	}{
		{
			name:   "percentage on whole cart",
			coupon: coupon(model.CouponKindPercentage, "10", model.Applicability{All: true}),
			want:   "230",
		},
		{
			name:   "percentage on product set",
			coupon: coupon(model.CouponKindPercentage, "10", model.Applicability{ProductIDs: []string{"a"}}),
			want:   "200",
		},
		{
			name:   "percentage above 100 clamps to scope",
			coupon: coupon(model.CouponKindPercentage, "150", model.Applicability{ProductIDs: []string{"b"}}),
			want:   "300",
		},
		{
			name:   "fixed below scope",
			coupon: coupon(model.CouponKindFixed, "150", model.Applicability{All: true}),
			want:   "150",
		},
		{
			name:   "fixed above scope",
			coupon: coupon(model.CouponKindFixed, "5000", model.Applicability{ProductIDs: []string{"b"}}),
			want:   "300",
		},
		{
			name:   "product set without matching lines",
			coupon: coupon(model.CouponKindFixed, "50", model.Applicability{ProductIDs: []string{"z"}}),
			want:   "0",
		},
		{
			name:   "fractional percentage rounds to cents",
			coupon: coupon(model.CouponKindPercentage, "33.333", model.Applicability{ProductIDs: []string{"b"}}),
			want:   "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CouponDiscount(tt.coupon, lines)
			assert.True(t, dec(tt.want).Equal(got), "discount = %s, want %s", got, tt.want)
		})
	}
}

func TestCouponDiscount_FixedFullyDiscounts(t *testing.T) {
	lines := []model.CartLine{line("a", "1000", 2)}
	c := coupon(model.CouponKindFixed, "5000", model.Applicability{All: true})

	got := CouponDiscount(c, lines)
	assert.True(t, dec("2000").Equal(got), "discount = %s", got)
}

func TestValidateGiftCard(t *testing.T) {
	active := model.GiftCard{Balance: dec("500"), ExpiresAt: now.Add(time.Hour)}
	assert.NoError(t, ValidateGiftCard(active, now))

	used := active
	used.Balance = decimal.Zero
	assert.ErrorIs(t, ValidateGiftCard(used, now), model.ErrGiftCardInvalid)

	expired := active
	expired.ExpiresAt = now.Add(-time.Hour)
	assert.ErrorIs(t, ValidateGiftCard(expired, now), model.ErrGiftCardInvalid)

	disabled := active
	disabled.Disabled = true
	assert.ErrorIs(t, ValidateGiftCard(disabled, now), model.ErrGiftCardInvalid)
}

func TestGiftCardAmount(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		subtotal string
		discount string
		want     string
	}{
		{name: "balance below remaining", balance: "500", subtotal: "2000", discount: "200", want: "500"},
		{name: "balance above remaining", balance: "5000", subtotal: "2000", discount: "200", want: "1800"},
		{name: "fully discounted cart", balance: "500", subtotal: "2000", discount: "2000", want: "0"},
		{name: "empty balance", balance: "0", subtotal: "2000", discount: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := model.GiftCard{Balance: dec(tt.balance)}
			got := GiftCardAmount(card, dec(tt.subtotal), dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "amount = %s, want %s", got, tt.want)
		})
	}
}
