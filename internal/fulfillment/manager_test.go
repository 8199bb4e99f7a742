package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront/internal/model"
)

// memStore повторяет транзакционную семантику хранилища в памяти: изменения
// применяются к копии и публикуются только при успехе.
type memStore struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*model.Order
	stock   map[string]int
	failTx  error
	clockAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		orders:  make(map[uuid.UUID]*model.Order),
		stock:   map[string]int{"shirt": 10, "hat": 5},
		clockAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) stamp(n model.Note) model.Note {
	s.clockAt = s.clockAt.Add(time.Second)
	n.CreatedAt = s.clockAt
	return n
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	c.Notes = append([]model.Note(nil), o.Notes...)
	return &c
}

func (s *memStore) CreateOrder(ctx context.Context, order *model.Order, note model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range order.Items {
		if s.stock[it.ProductID] < it.Quantity {
			return model.ErrInsufficientStock
		}
	}
	for _, it := range order.Items {
		s.stock[it.ProductID] -= it.Quantity
	}

	order.Notes = []model.Note{s.stamp(note)}
	order.CreatedAt = s.clockAt
	order.UpdatedAt = s.clockAt
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *memStore) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *memStore) TransitionOrder(ctx context.Context, id uuid.UUID, plan func(model.OrderStatus) (model.StatusTransition, error)) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}

	tr, err := plan(o.Status)
	if err != nil {
		return nil, err
	}
	if tr.Noop {
		return cloneOrder(o), nil
	}

	next := cloneOrder(o)
	stock := make(map[string]int, len(s.stock))
	for k, v := range s.stock {
		stock[k] = v
	}

	next.Status = tr.Status
	next.Notes = append(next.Notes, s.stamp(model.Note{ID: uuid.New(), Content: tr.Note, Author: model.NoteAuthorSystem}))
	if tr.Restock {
		for _, it := range next.Items {
			stock[it.ProductID] += it.Quantity
		}
	}

	if s.failTx != nil {
		return nil, s.failTx
	}

	s.orders[id] = next
	s.stock = stock
	return cloneOrder(next), nil
}

func (s *memStore) UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string, note model.Note) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	if s.failTx != nil {
		return nil, s.failTx
	}
	o.TrackingID = trackingID
	o.Notes = append(o.Notes, s.stamp(note))
	return cloneOrder(o), nil
}

func (s *memStore) AddNote(ctx context.Context, id uuid.UUID, note model.Note) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return model.Note{}, model.ErrOrderNotFound
	}
	if s.failTx != nil {
		return model.Note{}, s.failTx
	}
	note = s.stamp(note)
	o.Notes = append(o.Notes, note)
	return note, nil
}

func testSnapshot() Snapshot {
	return Snapshot{
		Items: []model.OrderItem{
			{ProductID: "shirt", ProductName: "Shirt", UnitPrice: decimal.NewFromInt(500), Quantity: 2, Size: "M", Color: "blue"},
			{ProductID: "hat", ProductName: "Hat", UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
		},
		Payment: model.Payment{
			Subtotal: decimal.NewFromInt(2000),
			Total:    decimal.NewFromInt(2100),
		},
		ShippingMethod: "Standard",
	}
}

func createTestOrder(t *testing.T, m *Manager) *model.Order {
	t.Helper()
	order, err := m.CreateOrder(context.Background(), testSnapshot(), model.Address{City: "Moscow"}, "card")
	require.NoError(t, err)
	return order
}

func TestCreateOrder_ReservesStockAndAddsNote(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)

	order := createTestOrder(t, m)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 8, store.stock["shirt"])
	assert.Equal(t, 4, store.stock["hat"])
	require.Len(t, order.Notes, 1)
	assert.Equal(t, model.NoteAuthorSystem, order.Notes[0].Author)
}

func TestCreateOrder_SnapshotDetachedFromCaller(t *testing.T) {
	m := NewManager(newMemStore())
	snap := testSnapshot()

	order, err := m.CreateOrder(context.Background(), snap, model.Address{}, "card")
	require.NoError(t, err)

	snap.Items[0].Quantity = 99
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	m := NewManager(newMemStore())

	_, err := m.CreateOrder(context.Background(), Snapshot{}, model.Address{}, "card")
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestSetStatus_CancelRestocksOnce(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)
	ctx := context.Background()

	cancelled, err := m.SetStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, store.stock["shirt"])
	assert.Equal(t, 5, store.stock["hat"])
	require.Len(t, cancelled.Notes, 2)
	assert.Equal(t, "Order status changed from Pending to Cancelled", cancelled.Notes[1].Content)
	assert.Equal(t, model.NoteAuthorSystem, cancelled.Notes[1].Author)

	again, err := m.SetStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, store.stock["shirt"])
	assert.Equal(t, 5, store.stock["hat"])
	assert.Len(t, again.Notes, 2)
}

func TestSetStatus_HappyPath(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)
	ctx := context.Background()

	for _, s := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusFulfilled} {
		_, err := m.SetStatus(ctx, order.ID, s)
		require.NoError(t, err, "transition to %s", s)
	}

	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFulfilled, got.Status)
	assert.Len(t, got.Notes, 4)
	assert.Equal(t, 8, store.stock["shirt"])
}

func TestSetStatus_CannotCancelFulfilled(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)
	ctx := context.Background()

	for _, s := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusFulfilled} {
		_, err := m.SetStatus(ctx, order.ID, s)
		require.NoError(t, err)
	}

	_, err := m.SetStatus(ctx, order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFulfilled, got.Status)
	assert.Len(t, got.Notes, 4)
	assert.Equal(t, 8, store.stock["shirt"])
	assert.Equal(t, 4, store.stock["hat"])
}

func TestSetStatus_FailedCommitLeavesNoTrace(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)

	store.failTx = errors.New("connection reset by peer")

	_, err := m.SetStatus(context.Background(), order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, model.ErrOrderUpdateFailed)

	store.failTx = nil
	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Len(t, got.Notes, 1)
	assert.Equal(t, 8, store.stock["shirt"])
}

func TestSetStatus_ConcurrentCancelRestocksOnce(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.SetStatus(context.Background(), order.ID, model.OrderStatusCancelled)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, store.stock["shirt"])
	assert.Equal(t, 5, store.stock["hat"])

	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Notes, 2)
}

func TestSetStatus_Errors(t *testing.T) {
	m := NewManager(newMemStore())
	order := createTestOrder(t, m)
	ctx := context.Background()

	_, err := m.SetStatus(ctx, uuid.New(), model.OrderStatusProcessing)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = m.SetStatus(ctx, order.ID, model.OrderStatus("Lost"))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = m.SetStatus(ctx, order.ID, model.OrderStatusShipped)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestUpdateTracking(t *testing.T) {
	m := NewManager(newMemStore())
	order := createTestOrder(t, m)

	got, err := m.UpdateTracking(context.Background(), order.ID, " TRK-42 ")
	require.NoError(t, err)

	assert.Equal(t, "TRK-42", got.TrackingID)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "Tracking ID updated to TRK-42", got.Notes[1].Content)
}

func TestUpdateTracking_RejectsBlank(t *testing.T) {
	m := NewManager(newMemStore())
	order := createTestOrder(t, m)

	_, err := m.UpdateTracking(context.Background(), order.ID, "   ")
	assert.ErrorIs(t, err, model.ErrEmptyTrackingID)

	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TrackingID)
	assert.Len(t, got.Notes, 1)
}

func TestAddNote(t *testing.T) {
	store := newMemStore()
	m := NewManager(store)
	order := createTestOrder(t, m)
	ctx := context.Background()

	note, err := m.AddNote(ctx, order.ID, "Customer called", "")
	require.NoError(t, err)
	assert.Equal(t, model.NoteAuthorAdmin, note.Author)
	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.False(t, note.CreatedAt.IsZero())

	_, err = m.AddNote(ctx, order.ID, "   ", "Admin")
	assert.ErrorIs(t, err, model.ErrEmptyNote)

	store.failTx = errors.New("boom")
	_, err = m.AddNote(ctx, order.ID, "lost", "Admin")
	assert.ErrorIs(t, err, model.ErrOrderUpdateFailed)
}

func TestPlanTransition(t *testing.T) {
	tr, err := PlanTransition(model.OrderStatusShipped, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, tr.Restock)
	assert.Equal(t, "Order status changed from Shipped to Cancelled", tr.Note)

	tr, err = PlanTransition(model.OrderStatusCancelled, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, tr.Noop)
	assert.False(t, tr.Restock)

	tr, err = PlanTransition(model.OrderStatusPending, model.OrderStatusProcessing)
	require.NoError(t, err)
	assert.False(t, tr.Restock)
}
