package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/service"
)

type couponResponse struct {
	Code  string           `json:"code"`
	Kind  model.CouponKind `json:"kind"`
	Value decimal.Decimal  `json:"value"`
}

type giftCardResponse struct {
	Last4   string          `json:"last4"`
	Balance decimal.Decimal `json:"balance"`
}

type cartResponse struct {
	Lines            []model.CartLine       `json:"lines"`
	Coupon           *couponResponse        `json:"coupon,omitempty"`
	GiftCard         *giftCardResponse      `json:"giftCard,omitempty"`
	ShippingMethod   string                 `json:"shippingMethod,omitempty"`
	ShippingMethods  []model.ShippingMethod `json:"shippingMethods"`
	ShippingResolved bool                   `json:"shippingResolved"`
	Payment          model.Payment          `json:"payment"`
	Warnings         []string               `json:"warnings,omitempty"`
}

func newCartResponse(v *service.CartView) cartResponse {
	resp := cartResponse{
		Lines:            v.Session.Lines,
		ShippingMethod:   v.Session.ShippingMethod,
		ShippingMethods:  v.Quote.ShippingMethods,
		ShippingResolved: v.Quote.ShippingResolved,
		Payment:          v.Quote.Payment,
		Warnings:         v.Quote.Warnings,
	}
	if resp.Lines == nil {
		resp.Lines = []model.CartLine{}
	}
	if c := v.Session.Coupon; c != nil {
		resp.Coupon = &couponResponse{Code: c.Code, Kind: c.Kind, Value: c.Value}
	}
	if g := v.Session.GiftCard; g != nil {
		last4 := g.Code
		if len(last4) > 4 {
			last4 = last4[len(last4)-4:]
		}
		resp.GiftCard = &giftCardResponse{Last4: last4, Balance: g.Balance}
	}
	return resp
}

// cartAction выполняет операцию над корзиной текущей сессии и возвращает её новое состояние.
func (h *Handler) cartAction(w http.ResponseWriter, r *http.Request, fn func(sid string) (*service.CartView, error)) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	view, err := fn(sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCartResponse(view))
}

// GetCart возвращает корзину с расчётом суммы и доступными способами доставки.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.GetCart(r.Context(), sid)
	})
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (l lineRequest) key() model.LineKey {
	return model.LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (h *Handler) decodeLine(w http.ResponseWriter, r *http.Request) (lineRequest, bool) {
	var req lineRequest
	if !decodeJSON(r, &req) || req.ProductID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// AddLine добавляет товар в корзину.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.AddLine(r.Context(), sid, req.key(), req.Quantity)
	})
}

// SetQuantity меняет количество позиции.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.SetQuantity(r.Context(), sid, req.key(), req.Quantity)
	})
}

// RemoveLine удаляет позицию.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.RemoveLine(r.Context(), sid, req.key())
	})
}

// ClearCart очищает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.ClearCart(r.Context(), sid)
	})
}

type codeRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon применяет купон.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.ApplyCoupon(r.Context(), sid, req.Code)
	})
}

// RemoveCoupon снимает купон.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.RemoveCoupon(r.Context(), sid)
	})
}

// ApplyGiftCard применяет подарочную карту.
func (h *Handler) ApplyGiftCard(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.ApplyGiftCard(r.Context(), sid, req.Code)
	})
}

// RemoveGiftCard снимает подарочную карту.
func (h *Handler) RemoveGiftCard(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.RemoveGiftCard(r.Context(), sid)
	})
}

type shippingRequest struct {
	Method string `json:"method"`
}

// SelectShipping выбирает способ доставки.
func (h *Handler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.cartAction(w, r, func(sid string) (*service.CartView, error) {
		return h.service.SelectShipping(r.Context(), sid, req.Method)
	})
}

type checkoutRequest struct {
	Address       model.Address `json:"address"`
	PaymentMethod string        `json:"paymentMethod"`
}

type checkoutResponse struct {
	OrderID     string        `json:"orderId"`
	Status      string        `json:"status"`
	RedirectURL string        `json:"redirectUrl,omitempty"`
	Breakdown   model.Payment `json:"breakdown"`
	CreatedAt   string        `json:"createdAt"`
}

// Checkout оформляет заказ. Если заказ сохранён, но платёжный шлюз недоступен,
// клиент получает 502 вместе с номером заказа.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req checkoutRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.Checkout(r.Context(), sid, req.Address, req.PaymentMethod)
	if err != nil {
		if res != nil && res.Order != nil {
			h.logger.Error("payment redirect failed", zap.Error(err), zap.String("order", res.Order.ID.String()))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment_redirect_failed", OrderID: res.Order.ID.String()})
			return
		}
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:     res.Order.ID.String(),
		Status:      string(res.Order.Status),
		RedirectURL: res.RedirectURL,
		Breakdown:   res.Order.Payment,
		CreatedAt:   res.Order.CreatedAt.Format(time.RFC3339),
	})
}
