package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
)

// GetOrder возвращает заказ вместе с журналом.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

// SetOrderStatus переводит заказ в новый статус.
func (s *Service) SetOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orders.SetStatus(ctx, id, status)
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindOrder, OrderID: id.String(), Message: "status update failed: " + err.Error()})
		return nil, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindOrder, Success: true, OrderID: id.String(), Message: fmt.Sprintf("order status is %s", order.Status)})
	return order, nil
}

// UpdateTracking сохраняет трек-номер заказа.
func (s *Service) UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string) (*model.Order, error) {
	order, err := s.orders.UpdateTracking(ctx, id, trackingID)
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindShipping, OrderID: id.String(), Message: "tracking update failed: " + err.Error()})
		return nil, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindShipping, Success: true, OrderID: id.String(), Message: "tracking id updated"})
	return order, nil
}

// AddNote добавляет запись оператора в журнал заказа.
func (s *Service) AddNote(ctx context.Context, id uuid.UUID, content, author string) (model.Note, error) {
	note, err := s.orders.AddNote(ctx, id, content, author)
	if err != nil {
		s.notify(ctx, notify.Event{Kind: notify.KindOrder, OrderID: id.String(), Message: "note not saved: " + err.Error()})
		return model.Note{}, err
	}

	s.notify(ctx, notify.Event{Kind: notify.KindOrder, Success: true, OrderID: id.String(), Message: "note added"})
	return note, nil
}
