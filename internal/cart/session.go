// Package cart содержит сессию корзины покупателя.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// Session хранит состояние корзины: позиции, применённые купон и подарочная карта, выбранная доставка.
// Сохранение выполняется явно через session.Store, методы Session хранилище не трогают.
type Session struct {
	Lines          []model.CartLine `json:"lines"`
	Coupon         *model.Coupon    `json:"coupon,omitempty"`
	GiftCard       *model.GiftCard  `json:"giftCard,omitempty"`
	ShippingMethod string           `json:"shippingMethod,omitempty"`
}

// New возвращает пустую сессию.
func New() *Session {
	return &Session{Lines: []model.CartLine{}}
}

// AddLine добавляет позицию; позиции с одинаковым ключом объединяются суммированием количества.
func (s *Session) AddLine(line model.CartLine, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	if i := s.find(line.Key()); i >= 0 {
		s.Lines[i].Quantity += qty
		return nil
	}

	line.Quantity = qty
	s.Lines = append(s.Lines, line)
	return nil
}

// RemoveLine удаляет позицию по ключу.
func (s *Session) RemoveLine(key model.LineKey) error {
	i := s.find(key)
	if i < 0 {
		return model.ErrLineNotFound
	}
	s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	return nil
}

// SetQuantity задаёт количество позиции; qty <= 0 удаляет её.
func (s *Session) SetQuantity(key model.LineKey, qty int) error {
	if qty <= 0 {
		return s.RemoveLine(key)
	}

	i := s.find(key)
	if i < 0 {
		return model.ErrLineNotFound
	}
	s.Lines[i].Quantity = qty
	return nil
}

// Clear сбрасывает позиции, купон, подарочную карту и доставку одновременно.
func (s *Session) Clear() {
	s.Lines = []model.CartLine{}
	s.Coupon = nil
	s.GiftCard = nil
	s.ShippingMethod = ""
}

// SetCoupon делает купон активным, заменяя предыдущий.
func (s *Session) SetCoupon(c model.Coupon) {
	s.Coupon = &c
}

// RemoveCoupon снимает активный купон.
func (s *Session) RemoveCoupon() {
	s.Coupon = nil
}

// SetGiftCard делает подарочную карту активной, заменяя предыдущую.
func (s *Session) SetGiftCard(g model.GiftCard) {
	s.GiftCard = &g
}

// RemoveGiftCard снимает активную подарочную карту.
func (s *Session) RemoveGiftCard() {
	s.GiftCard = nil
}

// SelectShipping запоминает выбранный способ доставки.
func (s *Session) SelectShipping(method string) {
	s.ShippingMethod = method
}

// Subtotal возвращает сумму unitPrice × quantity по всем позициям.
func (s *Session) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// IsEmpty сообщает, есть ли в корзине позиции.
func (s *Session) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s *Session) find(key model.LineKey) int {
	for i, l := range s.Lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
