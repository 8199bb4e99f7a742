// Package service реализует бизнес-логику витрины: корзину, промо-акции, оформление и сопровождение заказов.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/fulfillment"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/pricing"
	"github.com/mmeshcher/storefront/internal/session"
	"github.com/mmeshcher/storefront/internal/shipping"
)

// Catalog описывает чтение товаров и промо-акций из хранилища документов.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetGiftCardByCode(ctx context.Context, code string) (*model.GiftCard, error)
}

// SessionStore описывает долговременное хранение сессии корзины.
type SessionStore interface {
	Save(ctx context.Context, id string, s *cart.Session) error
	Restore(ctx context.Context, id string) (*cart.Session, error)
	Clear(ctx context.Context, id string) error
}

// OrderManager описывает жизненный цикл заказа.
type OrderManager interface {
	CreateOrder(ctx context.Context, snap fulfillment.Snapshot, address model.Address, paymentMethod string) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string) (*model.Order, error)
	AddNote(ctx context.Context, id uuid.UUID, content, author string) (model.Note, error)
}

// PaymentGateway возвращает ссылку для перенаправления на оплату.
type PaymentGateway interface {
	Redirect(ctx context.Context, orderID uuid.UUID, p model.Payment) (string, error)
}

// Deps содержит зависимости сервиса.
type Deps struct {
	Catalog  Catalog
	Sessions SessionStore
	Orders   OrderManager
	Payments PaymentGateway
	Notifier notify.Notifier
	Shipping *shipping.Resolver
	Logger   *zap.Logger
}

// Service содержит бизнес-логику витрины.
type Service struct {
	catalog  Catalog
	sessions SessionStore
	orders   OrderManager
	payments PaymentGateway
	notifier notify.Notifier
	shipping *shipping.Resolver
	pricing  *pricing.Aggregator
	logger   *zap.Logger
	now      func() time.Time
}

// NewService создаёт сервис витрины.
func NewService(d Deps) *Service {
	resolver := d.Shipping
	if resolver == nil {
		resolver = shipping.NewResolver(nil)
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	return &Service{
		catalog:  d.Catalog,
		sessions: d.Sessions,
		orders:   d.Orders,
		payments: d.Payments,
		notifier: notifier,
		shipping: resolver,
		pricing:  pricing.NewAggregator(resolver),
		logger:   logger,
		now:      time.Now,
	}
}

// CartView содержит состояние корзины вместе с актуальным расчётом суммы.
type CartView struct {
	Session *cart.Session
	Quote   pricing.Quote
}

func (s *Service) view(sess *cart.Session) *CartView {
	return &CartView{Session: sess, Quote: s.pricing.Quote(sess, s.now())}
}

func (s *Service) restore(ctx context.Context, sid string) (*cart.Session, error) {
	sess, err := s.sessions.Restore(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sid string, sess *cart.Session) error {
	if err := s.sessions.Save(ctx, sid, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// mutate восстанавливает сессию, применяет fn и сохраняет результат.
// Если fn вернула ошибку, сохранённое состояние не меняется.
func (s *Service) mutate(ctx context.Context, sid string, fn func(sess *cart.Session) error) (*CartView, error) {
	sess, err := s.restore(ctx, sid)
	if err != nil {
		return nil, err
	}

	if err := fn(sess); err != nil {
		return nil, err
	}

	if err := s.save(ctx, sid, sess); err != nil {
		return nil, err
	}

	return s.view(sess), nil
}

func (s *Service) notify(ctx context.Context, e notify.Event) {
	e.At = s.now()
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.Warn("notification failed", zap.Error(err), zap.String("kind", string(e.Kind)))
	}
}
