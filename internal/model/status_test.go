package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeCouponStatus(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	limit := 3

	base := Coupon{
		Code:      "SALE10",
		Kind:      CouponKindPercentage,
		Value:     decimal.NewFromInt(10),
		ValidFrom: now.Add(-24 * time.Hour),
		ValidTo:   now.Add(24 * time.Hour),
		Enabled:   true,
	}

	tests := []struct {
		name   string
		modify func(c *Coupon)
		want   CouponStatus
	}{
		{name: "active", modify: func(c *Coupon) {}, want: CouponStatusActive},
		{name: "disabled wins over window", modify: func(c *Coupon) {
			c.Enabled = false
			c.ValidTo = now.Add(-time.Hour)
		}, want: CouponStatusDisabled},
		{name: "not started", modify: func(c *Coupon) { c.ValidFrom = now.Add(time.Hour) }, want: CouponStatusScheduled},
		{name: "expired", modify: func(c *Coupon) { c.ValidTo = now.Add(-time.Second) }, want: CouponStatusExpired},
		{name: "exhausted", modify: func(c *Coupon) {
			c.UsageLimit = &limit
			c.UsageCount = 3
		}, want: CouponStatusExhausted},
		{name: "below limit", modify: func(c *Coupon) {
			c.UsageLimit = &limit
			c.UsageCount = 2
		}, want: CouponStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.modify(&c)
			assert.Equal(t, tt.want, ComputeCouponStatus(c, now))
		})
	}
}

func TestComputeGiftCardStatus(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		card GiftCard
		want GiftCardStatus
	}{
		{
			name: "active",
			card: GiftCard{Balance: decimal.NewFromInt(500), ExpiresAt: now.Add(time.Hour)},
			want: GiftCardStatusActive,
		},
		{
			name: "zero balance",
			card: GiftCard{Balance: decimal.Zero, ExpiresAt: now.Add(time.Hour)},
			want: GiftCardStatusUsed,
		},
		{
			name: "expired",
			card: GiftCard{Balance: decimal.NewFromInt(500), ExpiresAt: now.Add(-time.Hour)},
			want: GiftCardStatusExpired,
		},
		{
			name: "disabled",
			card: GiftCard{Balance: decimal.NewFromInt(500), ExpiresAt: now.Add(time.Hour), Disabled: true},
			want: GiftCardStatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeGiftCardStatus(tt.card, now))
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusFulfilled))

	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped} {
		assert.True(t, s.CanTransitionTo(OrderStatusCancelled), "cancel from %s", s)
	}

	assert.False(t, OrderStatusFulfilled.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatus("Lost").Valid())
}
