// Package fulfillment управляет жизненным циклом оформленного заказа.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/storefront/internal/model"
)

// Store описывает хранилище заказов. Каждый метод выполняется одной транзакцией.
type Store interface {
	// CreateOrder сохраняет заказ вместе с первой записью журнала, резервирует товар
	// и фиксирует использование купона и подарочной карты.
	CreateOrder(ctx context.Context, order *model.Order, note model.Note) error
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// TransitionOrder блокирует заказ, передаёт plan текущий статус и применяет результат.
	TransitionOrder(ctx context.Context, id uuid.UUID, plan func(current model.OrderStatus) (model.StatusTransition, error)) (*model.Order, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string, note model.Note) (*model.Order, error)
	AddNote(ctx context.Context, id uuid.UUID, note model.Note) (model.Note, error)
}

// Snapshot содержит расчёт корзины, зафиксированный на момент оформления.
type Snapshot struct {
	Items          []model.OrderItem
	Payment        model.Payment
	CouponCode     string
	GiftCardCode   string
	ShippingMethod string
}

// Manager создаёт заказы и переводит их по статусам.
type Manager struct {
	store Store
}

// NewManager создаёт Manager поверх хранилища.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// CreateOrder сохраняет неизменяемую запись заказа в статусе Pending.
func (m *Manager) CreateOrder(ctx context.Context, snap Snapshot, address model.Address, paymentMethod string) (*model.Order, error) {
	if len(snap.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	items := make([]model.OrderItem, len(snap.Items))
	copy(items, snap.Items)

	order := &model.Order{
		ID:             uuid.New(),
		Items:          items,
		Address:        address,
		PaymentMethod:  paymentMethod,
		Payment:        snap.Payment,
		CouponCode:     snap.CouponCode,
		GiftCardCode:   snap.GiftCardCode,
		ShippingMethod: snap.ShippingMethod,
		Status:         model.OrderStatusPending,
	}

	note := systemNote("Order placed")
	if err := m.store.CreateOrder(ctx, order, note); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

// GetOrder возвращает заказ с журналом.
func (m *Manager) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.store.GetOrder(ctx, id)
}

// SetStatus переводит заказ в новый статус. Повторная установка того же статуса ничего не меняет;
// при отмене товар возвращается на склад в той же транзакции, что и смена статуса.
func (m *Manager) SetStatus(ctx context.Context, id uuid.UUID, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, next)
	}

	order, err := m.store.TransitionOrder(ctx, id, func(current model.OrderStatus) (model.StatusTransition, error) {
		return PlanTransition(current, next)
	})
	if err != nil {
		return nil, lifecycleError(err)
	}
	return order, nil
}

// PlanTransition решает, что нужно сделать при переходе из current в next.
func PlanTransition(current, next model.OrderStatus) (model.StatusTransition, error) {
	if current == next {
		return model.StatusTransition{Noop: true}, nil
	}
	if !current.CanTransitionTo(next) {
		return model.StatusTransition{}, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, current, next)
	}

	return model.StatusTransition{
		Status:  next,
		Note:    fmt.Sprintf("Order status changed from %s to %s", current, next),
		Restock: next == model.OrderStatusCancelled && current != model.OrderStatusCancelled,
	}, nil
}

// UpdateTracking сохраняет непустой трек-номер и добавляет системную запись, статус не меняется.
func (m *Manager) UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string) (*model.Order, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, model.ErrEmptyTrackingID
	}
	note := systemNote("Tracking ID updated to " + trackingID)

	order, err := m.store.UpdateTracking(ctx, id, trackingID, note)
	if err != nil {
		return nil, lifecycleError(err)
	}
	return order, nil
}

// AddNote добавляет запись в журнал заказа. Возвращённая запись содержит идентификатор
// и время, назначенные хранилищем.
func (m *Manager) AddNote(ctx context.Context, id uuid.UUID, content, author string) (model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Note{}, model.ErrEmptyNote
	}
	if author == "" {
		author = model.NoteAuthorAdmin
	}

	note, err := m.store.AddNote(ctx, id, model.Note{ID: uuid.New(), Content: content, Author: author})
	if err != nil {
		return model.Note{}, lifecycleError(err)
	}
	return note, nil
}

func systemNote(content string) model.Note {
	return model.Note{ID: uuid.New(), Content: content, Author: model.NoteAuthorSystem}
}

func lifecycleError(err error) error {
	if errors.Is(err, model.ErrOrderNotFound) || errors.Is(err, model.ErrInvalidTransition) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrOrderUpdateFailed, err)
}
