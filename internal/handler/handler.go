// Package handler содержит HTTP-обработчики API витрины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	GetCart(ctx context.Context, sid string) (*service.CartView, error)
	AddLine(ctx context.Context, sid string, key model.LineKey, qty int) (*service.CartView, error)
	SetQuantity(ctx context.Context, sid string, key model.LineKey, qty int) (*service.CartView, error)
	RemoveLine(ctx context.Context, sid string, key model.LineKey) (*service.CartView, error)
	ClearCart(ctx context.Context, sid string) (*service.CartView, error)
	ApplyCoupon(ctx context.Context, sid, code string) (*service.CartView, error)
	RemoveCoupon(ctx context.Context, sid string) (*service.CartView, error)
	ApplyGiftCard(ctx context.Context, sid, code string) (*service.CartView, error)
	RemoveGiftCard(ctx context.Context, sid string) (*service.CartView, error)
	SelectShipping(ctx context.Context, sid, method string) (*service.CartView, error)
	Checkout(ctx context.Context, sid string, address model.Address, paymentMethod string) (*service.CheckoutResult, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string) (*model.Order, error)
	AddNote(ctx context.Context, id uuid.UUID, content, author string) (model.Note, error)
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service  Service
	logger   *zap.Logger
	sessions *middleware.SessionMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, sessions *middleware.SessionMiddleware) *Handler {
	return &Handler{
		service:  s,
		logger:   logger,
		sessions: sessions,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	OrderID string `json:"orderId,omitempty"`
}

// errorKinds сопоставляет доменные ошибки с HTTP-статусом и кодом для клиента.
var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{model.ErrCouponNotFound, http.StatusUnprocessableEntity, "coupon_not_found"},
	{model.ErrCouponExpired, http.StatusUnprocessableEntity, "coupon_expired"},
	{model.ErrCouponDisabled, http.StatusUnprocessableEntity, "coupon_disabled"},
	{model.ErrCouponExhausted, http.StatusUnprocessableEntity, "coupon_exhausted"},
	{model.ErrGiftCardNotFound, http.StatusUnprocessableEntity, "gift_card_not_found"},
	{model.ErrGiftCardInvalid, http.StatusUnprocessableEntity, "gift_card_invalid"},
	{model.ErrShippingUnavailable, http.StatusUnprocessableEntity, "shipping_unavailable"},
	{model.ErrInsufficientStock, http.StatusUnprocessableEntity, "insufficient_stock"},
	{model.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart"},
	{model.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity"},
	{model.ErrInvalidAddress, http.StatusUnprocessableEntity, "invalid_address"},
	{model.ErrInvalidPayment, http.StatusUnprocessableEntity, "invalid_payment_method"},
	{model.ErrEmptyNote, http.StatusUnprocessableEntity, "empty_note"},
	{model.ErrEmptyTrackingID, http.StatusUnprocessableEntity, "empty_tracking_id"},
	{model.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{model.ErrLineNotFound, http.StatusNotFound, "line_not_found"},
	{model.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{model.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{model.ErrOrderUpdateFailed, http.StatusInternalServerError, "order_update_failed"},
	{model.ErrPaymentRedirect, http.StatusBadGateway, "payment_redirect_failed"},
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			if k.status >= http.StatusInternalServerError {
				h.logger.Error("request failed", zap.Error(err), zap.String("uri", r.RequestURI))
			}
			writeJSON(w, k.status, errorResponse{Error: k.kind})
			return
		}
	}

	h.logger.Error("internal error", zap.Error(err), zap.String("uri", r.RequestURI))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) bool {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v) == nil
}
