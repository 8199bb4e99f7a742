package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/promotion"
	"github.com/mmeshcher/storefront/internal/validation"
)

// GetCart возвращает корзину сессии с пересчитанной суммой.
func (s *Service) GetCart(ctx context.Context, sid string) (*CartView, error) {
	sess, err := s.restore(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// AddLine добавляет товар в корзину. Цена и параметры доставки берутся из каталога.
func (s *Service) AddLine(ctx context.Context, sid string, key model.LineKey, qty int) (*CartView, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	p, err := s.catalog.GetProduct(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		if inCart := quantityOf(sess, key.ProductID); inCart+qty > p.Stock {
			return fmt.Errorf("%w: %s", model.ErrInsufficientStock, p.ID)
		}

		return sess.AddLine(model.CartLine{
			ProductID:    p.ID,
			ProductName:  p.Name,
			UnitPrice:    p.Price,
			Size:         key.Size,
			Color:        key.Color,
			Shipping:     p.Shipping,
			GiftIncluded: p.GiftIncluded,
		}, qty)
	})
}

// SetQuantity задаёт количество позиции; qty <= 0 удаляет позицию.
func (s *Service) SetQuantity(ctx context.Context, sid string, key model.LineKey, qty int) (*CartView, error) {
	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		return sess.SetQuantity(key, qty)
	})
}

// RemoveLine удаляет позицию из корзины.
func (s *Service) RemoveLine(ctx context.Context, sid string, key model.LineKey) (*CartView, error) {
	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		return sess.RemoveLine(key)
	})
}

// ClearCart очищает корзину и удаляет сохранённую сессию.
func (s *Service) ClearCart(ctx context.Context, sid string) (*CartView, error) {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return s.view(cart.New()), nil
}

// ApplyCoupon проверяет купон и делает его активным, заменяя предыдущий.
// При ошибке корзина не меняется.
func (s *Service) ApplyCoupon(ctx context.Context, sid, code string) (*CartView, error) {
	code = validation.NormalizeCode(code)

	view, err := s.applyCoupon(ctx, sid, code)
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindCoupon, SessionID: sid, Message: "coupon " + code + " rejected: " + err.Error()})
		return nil, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindCoupon, Success: true, SessionID: sid, Message: "coupon " + code + " applied"})
	return view, nil
}

func (s *Service) applyCoupon(ctx context.Context, sid, code string) (*CartView, error) {
	if !validation.IsValidCouponCode(code) {
		return nil, fmt.Errorf("%w: %q", model.ErrCouponNotFound, code)
	}

	c, err := s.catalog.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := promotion.ValidateCoupon(*c, s.now()); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		sess.SetCoupon(*c)
		return nil
	})
}

// RemoveCoupon снимает активный купон.
func (s *Service) RemoveCoupon(ctx context.Context, sid string) (*CartView, error) {
	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		sess.RemoveCoupon()
		return nil
	})
}

// ApplyGiftCard проверяет подарочную карту и делает её активной, заменяя предыдущую.
func (s *Service) ApplyGiftCard(ctx context.Context, sid, code string) (*CartView, error) {
	code = validation.NormalizeCode(code)

	view, err := s.applyGiftCard(ctx, sid, code)
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindGiftCard, SessionID: sid, Message: "gift card rejected: " + err.Error()})
		return nil, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindGiftCard, Success: true, SessionID: sid, Message: "gift card applied"})
	return view, nil
}

func (s *Service) applyGiftCard(ctx context.Context, sid, code string) (*CartView, error) {
	if !validation.IsValidGiftCardNumber(code) {
		return nil, model.ErrGiftCardNotFound
	}

	g, err := s.catalog.GetGiftCardByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := promotion.ValidateGiftCard(*g, s.now()); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		sess.SetGiftCard(*g)
		return nil
	})
}

// RemoveGiftCard снимает активную подарочную карту.
func (s *Service) RemoveGiftCard(ctx context.Context, sid string) (*CartView, error) {
	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		sess.RemoveGiftCard()
		return nil
	})
}

// SelectShipping выбирает способ доставки из доступных для текущей корзины.
func (s *Service) SelectShipping(ctx context.Context, sid, method string) (*CartView, error) {
	return s.mutate(ctx, sid, func(sess *cart.Session) error {
		if _, err := s.shipping.Resolve(sess.Lines, method); err != nil {
			return err
		}
		sess.SelectShipping(method)
		return nil
	})
}

func quantityOf(sess *cart.Session, productID string) int {
	n := 0
	for _, l := range sess.Lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}
