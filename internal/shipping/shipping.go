// Package shipping определяет способы доставки, доступные для корзины, и их стоимость.
package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// Method описывает известный витрине способ доставки.
type Method struct {
	Name              string
	EstimatedDelivery string
}

// DefaultMethods содержит способы доставки по умолчанию.
var DefaultMethods = []Method{
	{Name: "Standard", EstimatedDelivery: "3-5 business days"},
	{Name: "Express", EstimatedDelivery: "1-2 business days"},
}

// Resolver вычисляет доступные способы доставки по позициям корзины.
type Resolver struct {
	methods []Method
}

// NewResolver создаёт Resolver для списка известных способов. Порядок списка сохраняется в выдаче.
func NewResolver(methods []Method) *Resolver {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	return &Resolver{methods: methods}
}

// Available возвращает способы, которые включены хотя бы у одной позиции.
// Стоимость способа складывается из fee × quantity только по позициям, где он включён.
func (r *Resolver) Available(lines []model.CartLine) []model.ShippingMethod {
	res := make([]model.ShippingMethod, 0, len(r.methods))
	for _, m := range r.methods {
		fee, ok := methodFee(lines, m.Name)
		if !ok {
			continue
		}
		res = append(res, model.ShippingMethod{
			Name:              m.Name,
			EstimatedDelivery: m.EstimatedDelivery,
			Fee:               fee,
		})
	}
	return res
}

// Resolve возвращает способ доставки с рассчитанной стоимостью или ErrShippingUnavailable.
func (r *Resolver) Resolve(lines []model.CartLine, name string) (model.ShippingMethod, error) {
	for _, m := range r.Available(lines) {
		if m.Name == name {
			return m, nil
		}
	}
	return model.ShippingMethod{}, fmt.Errorf("%w: %q", model.ErrShippingUnavailable, name)
}

func methodFee(lines []model.CartLine, name string) (decimal.Decimal, bool) {
	fee := decimal.Zero
	enabled := false
	for _, l := range lines {
		opt, ok := l.Shipping[name]
		if !ok || !opt.Enabled {
			continue
		}
		enabled = true
		fee = fee.Add(opt.Fee.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return fee, enabled
}
