package model

import "time"

// CouponStatus описывает вычисляемый статус купона.
type CouponStatus string

const (
	CouponStatusActive    CouponStatus = "Active"
	CouponStatusScheduled CouponStatus = "Scheduled"
	CouponStatusExpired   CouponStatus = "Expired"
	CouponStatusDisabled  CouponStatus = "Disabled"
	CouponStatusExhausted CouponStatus = "Exhausted"
)

// ComputeCouponStatus вычисляет статус купона на момент now.
// Статус нигде не хранится, все проверки проходят через эту функцию.
func ComputeCouponStatus(c Coupon, now time.Time) CouponStatus {
	switch {
	case !c.Enabled:
		return CouponStatusDisabled
	case now.Before(c.ValidFrom):
		return CouponStatusScheduled
	case now.After(c.ValidTo):
		return CouponStatusExpired
	case c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit:
		return CouponStatusExhausted
	default:
		return CouponStatusActive
	}
}

// GiftCardStatus описывает вычисляемый статус подарочной карты.
type GiftCardStatus string

const (
	GiftCardStatusActive   GiftCardStatus = "Active"
	GiftCardStatusUsed     GiftCardStatus = "Used"
	GiftCardStatusExpired  GiftCardStatus = "Expired"
	GiftCardStatusDisabled GiftCardStatus = "Disabled"
)

// ComputeGiftCardStatus вычисляет статус подарочной карты на момент now.
func ComputeGiftCardStatus(g GiftCard, now time.Time) GiftCardStatus {
	switch {
	case g.Disabled:
		return GiftCardStatusDisabled
	case now.After(g.ExpiresAt):
		return GiftCardStatusExpired
	case !g.Balance.IsPositive():
		return GiftCardStatusUsed
	default:
		return GiftCardStatusActive
	}
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusFulfilled, OrderStatusCancelled},
}

// Valid сообщает, известен ли статус.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo проверяет, разрешён ли переход между статусами заказа.
// Из Fulfilled и Cancelled переходов нет.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
