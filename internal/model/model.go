// Package model содержит доменные сущности витрины: корзину, промо-акции и заказы.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingOption описывает доступность способа доставки для позиции корзины.
type ShippingOption struct {
	Enabled bool            `json:"enabled"`
	Fee     decimal.Decimal `json:"fee"`
}

// ShippingCapability сопоставляет имя способа доставки и его параметры для товара.
type ShippingCapability map[string]ShippingOption

// Product описывает товар каталога в хранилище документов.
type Product struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Stock        int
	Shipping     ShippingCapability
	GiftIncluded string
}

// LineKey идентифицирует позицию корзины.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLine описывает позицию корзины покупателя.
type CartLine struct {
	ProductID    string             `json:"productId"`
	ProductName  string             `json:"productName"`
	UnitPrice    decimal.Decimal    `json:"unitPrice"`
	Quantity     int                `json:"quantity"`
	Size         string             `json:"size"`
	Color        string             `json:"color"`
	Shipping     ShippingCapability `json:"shipping"`
	GiftIncluded string             `json:"giftIncluded,omitempty"`
}

// Key возвращает ключ идентичности позиции.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Total возвращает стоимость позиции без скидок.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CouponKind описывает тип скидки купона.
type CouponKind string

const (
	CouponKindPercentage CouponKind = "percentage"
	CouponKindFixed      CouponKind = "fixed"
)

// Applicability ограничивает действие купона всей корзиной или набором товаров.
type Applicability struct {
	All        bool     `json:"all"`
	ProductIDs []string `json:"productIds,omitempty"`
}

// Includes сообщает, распространяется ли купон на товар.
func (a Applicability) Includes(productID string) bool {
	if a.All {
		return true
	}
	for _, id := range a.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Coupon описывает купон. Администрируется вне витрины; здесь изменяется только счётчик использований.
type Coupon struct {
	Code          string          `json:"code"`
	Kind          CouponKind      `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	Applicability Applicability   `json:"applicability"`
	ValidFrom     time.Time       `json:"validFrom"`
	ValidTo       time.Time       `json:"validTo"`
	UsageLimit    *int            `json:"usageLimit,omitempty"`
	UsageCount    int             `json:"usageCount"`
	Enabled       bool            `json:"enabled"`
}

// GiftCard описывает подарочную карту.
type GiftCard struct {
	Code         string          `json:"code"`
	InitialValue decimal.Decimal `json:"initialValue"`
	Balance      decimal.Decimal `json:"balance"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Disabled     bool            `json:"disabled"`
}

// ShippingMethod описывает способ доставки, доступный для текущей корзины.
type ShippingMethod struct {
	Name              string          `json:"name"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	Fee               decimal.Decimal `json:"fee"`
}

// OrderStatus описывает этап выполнения заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusFulfilled  OrderStatus = "Fulfilled"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderItem хранит неизменяемый снимок позиции на момент оформления заказа.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
}

// Address содержит адрес доставки заказа.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Payment содержит разбивку итоговой суммы заказа.
type Payment struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	GiftCardAmount decimal.Decimal `json:"giftCardAmount"`
	ShippingFee    decimal.Decimal `json:"shippingFee"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// Note описывает запись журнала заказа. Журнал только дополняется.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	NoteAuthorAdmin  = "Admin"
	NoteAuthorSystem = "System"
)

// Order описывает оформленный заказ.
type Order struct {
	ID             uuid.UUID
	Items          []OrderItem
	Address        Address
	PaymentMethod  string
	Payment        Payment
	CouponCode     string
	GiftCardCode   string
	ShippingMethod string
	Status         OrderStatus
	TrackingID     string
	Notes          []Note
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusTransition описывает изменение статуса, которое хранилище применяет атомарно:
// статус, системная запись в журнал и, при отмене, возврат товара на склад.
type StatusTransition struct {
	Noop    bool
	Status  OrderStatus
	Note    string
	Restock bool
}
