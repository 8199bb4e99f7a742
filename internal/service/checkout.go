package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/fulfillment"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/promotion"
)

// Способы оплаты.
const (
	PaymentMethodCard = "card"
	PaymentMethodCOD  = "cod"
)

// CheckoutResult содержит результат оформления заказа.
type CheckoutResult struct {
	Order       *model.Order
	RedirectURL string
}

// Checkout оформляет заказ из корзины сессии. Купон и подарочная карта перечитываются из каталога
// и проверяются заново, расчёт суммы фиксируется в заказе. После сохранения заказа корзина очищается.
//
// Если заказ сохранён, но платёжный шлюз не ответил, возвращаются и результат, и ошибка ErrPaymentRedirect.
func (s *Service) Checkout(ctx context.Context, sid string, address model.Address, paymentMethod string) (*CheckoutResult, error) {
	res, err := s.checkout(ctx, sid, address, paymentMethod)
	if err != nil && res == nil {
		s.notify(ctx, notify.Event{Kind: notify.KindCheckout, SessionID: sid, Message: "checkout failed: " + err.Error()})
		return nil, err
	}

	orderID := res.Order.ID.String()
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindCheckout, SessionID: sid, OrderID: orderID, Message: "order placed, payment redirect failed"})
		return res, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindCheckout, Success: true, SessionID: sid, OrderID: orderID, Message: "order placed"})
	return res, nil
}

func (s *Service) checkout(ctx context.Context, sid string, address model.Address, paymentMethod string) (*CheckoutResult, error) {
	paymentMethod = strings.ToLower(strings.TrimSpace(paymentMethod))
	if paymentMethod != PaymentMethodCard && paymentMethod != PaymentMethodCOD {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidPayment, paymentMethod)
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	sess, err := s.restore(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	if err := s.refreshPromotions(ctx, sess); err != nil {
		return nil, err
	}

	quote := s.pricing.Quote(sess, s.now())
	if !quote.ShippingResolved {
		return nil, fmt.Errorf("%w: %q", model.ErrShippingUnavailable, sess.ShippingMethod)
	}

	order, err := s.orders.CreateOrder(ctx, snapshot(sess, quote.Payment), address, paymentMethod)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(ctx, sid); err != nil {
		s.logger.Warn("clear session after checkout", zap.Error(err), zap.String("order", order.ID.String()))
	}

	res := &CheckoutResult{Order: order}
	if paymentMethod == PaymentMethodCOD {
		return res, nil
	}

	if s.payments == nil {
		return res, fmt.Errorf("%w: gateway not configured", model.ErrPaymentRedirect)
	}

	url, err := s.payments.Redirect(ctx, order.ID, order.Payment)
	if err != nil {
		return res, fmt.Errorf("%w: %w", model.ErrPaymentRedirect, err)
	}
	res.RedirectURL = url

	return res, nil
}

// refreshPromotions заменяет купон и карту в сессии актуальными данными каталога.
// Недействительная промо-акция прерывает оформление.
func (s *Service) refreshPromotions(ctx context.Context, sess *cart.Session) error {
	now := s.now()

	if sess.Coupon != nil {
		c, err := s.catalog.GetCouponByCode(ctx, sess.Coupon.Code)
		if err != nil {
			return err
		}
		if err := promotion.ValidateCoupon(*c, now); err != nil {
			return err
		}
		sess.SetCoupon(*c)
	}

	if sess.GiftCard != nil {
		g, err := s.catalog.GetGiftCardByCode(ctx, sess.GiftCard.Code)
		if err != nil {
			return err
		}
		if err := promotion.ValidateGiftCard(*g, now); err != nil {
			return err
		}
		sess.SetGiftCard(*g)
	}

	return nil
}

func snapshot(sess *cart.Session, p model.Payment) fulfillment.Snapshot {
	items := make([]model.OrderItem, 0, len(sess.Lines))
	for _, l := range sess.Lines {
		items = append(items, model.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Size:        l.Size,
			Color:       l.Color,
		})
	}

	snap := fulfillment.Snapshot{
		Items:          items,
		Payment:        p,
		ShippingMethod: sess.ShippingMethod,
	}
	if sess.Coupon != nil && p.Discount.IsPositive() {
		snap.CouponCode = sess.Coupon.Code
	}
	if sess.GiftCard != nil && p.GiftCardAmount.IsPositive() {
		snap.GiftCardCode = sess.GiftCard.Code
	}
	return snap
}

func validateAddress(a model.Address) error {
	required := []struct{ field, value string }{
		{"fullName", a.FullName},
		{"line1", a.Line1},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", model.ErrInvalidAddress, r.field)
		}
	}
	return nil
}
