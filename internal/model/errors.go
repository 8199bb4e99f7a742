package model

import "errors"

// Ошибки проверки промо-акций. Состояние корзины при них не меняется.
var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponExpired    = errors.New("coupon expired")
	ErrCouponDisabled   = errors.New("coupon disabled")
	ErrCouponExhausted  = errors.New("coupon usage limit reached")
	ErrGiftCardNotFound = errors.New("gift card not found")
	ErrGiftCardInvalid  = errors.New("gift card is not active")
)

// Ошибки корзины и доставки.
var (
	ErrShippingUnavailable = errors.New("shipping method unavailable")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidAddress      = errors.New("shipping address is incomplete")
	ErrInvalidPayment      = errors.New("payment method is not supported")
)

// Ошибки жизненного цикла заказа.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrEmptyNote         = errors.New("note content is empty")
	ErrEmptyTrackingID   = errors.New("tracking id is empty")
	ErrOrderUpdateFailed = errors.New("order update failed")
	ErrPaymentRedirect   = errors.New("payment redirect failed")
)
