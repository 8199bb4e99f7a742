package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/promotion"
)

// CreateOrder сохраняет заказ и первую запись журнала. В той же транзакции резервируется товар,
// увеличивается счётчик использований купона и списывается баланс подарочной карты.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *model.Order, note model.Note) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, it := range order.Items {
			tag, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
				it.ProductID, it.Quantity,
			)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			if tag.RowsAffected() != 1 {
				return fmt.Errorf("%w: %s", model.ErrInsufficientStock, it.ProductID)
			}
		}

		now := time.Now()

		if order.CouponCode != "" {
			if err := redeemCoupon(ctx, tx, order.CouponCode, now); err != nil {
				return err
			}
		}

		if order.GiftCardCode != "" && order.Payment.GiftCardAmount.IsPositive() {
			if err := redeemGiftCard(ctx, tx, order.GiftCardCode, toCents(order.Payment.GiftCardAmount), now); err != nil {
				return err
			}
		}

		p := order.Payment
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (
				id, status, items, address, payment_method,
				subtotal_cents, discount_cents, gift_card_cents, shipping_cents, tax_cents, total_cents,
				coupon_code, gift_card_code, shipping_method
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING created_at, updated_at`,
			order.ID, string(order.Status), order.Items, order.Address, order.PaymentMethod,
			toCents(p.Subtotal), toCents(p.Discount), toCents(p.GiftCardAmount),
			toCents(p.ShippingFee), toCents(p.Tax), toCents(p.Total),
			order.CouponCode, order.GiftCardCode, order.ShippingMethod,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		stored, err := insertNote(ctx, tx, order.ID, note)
		if err != nil {
			return err
		}
		order.Notes = []model.Note{stored}

		return nil
	})
}

func redeemCoupon(ctx context.Context, tx pgx.Tx, code string, now time.Time) error {
	c, err := scanCoupon(tx.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1 FOR UPDATE`,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", model.ErrCouponNotFound, code)
		}
		return fmt.Errorf("lock coupon: %w", err)
	}

	if err := promotion.ValidateCoupon(*c, now); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE coupons SET usage_count = usage_count + 1 WHERE code = $1`, code); err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	return nil
}

func redeemGiftCard(ctx context.Context, tx pgx.Tx, code string, amountCents int64, now time.Time) error {
	g, err := scanGiftCard(tx.QueryRow(ctx,
		`SELECT `+giftCardColumns+` FROM gift_cards WHERE code = $1 FOR UPDATE`,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrGiftCardNotFound
		}
		return fmt.Errorf("lock gift card: %w", err)
	}

	if err := promotion.ValidateGiftCard(*g, now); err != nil {
		return err
	}
	if toCents(g.Balance) < amountCents {
		return fmt.Errorf("%w: balance changed", model.ErrGiftCardInvalid)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE gift_cards SET balance_cents = balance_cents - $2 WHERE code = $1`,
		code, amountCents,
	); err != nil {
		return fmt.Errorf("debit gift card: %w", err)
	}
	return nil
}

// GetOrder возвращает заказ вместе с журналом записей.
func (r *PostgresRepository) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var (
		o      model.Order
		status string
		cents  [6]int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, status, tracking_id, items, address, payment_method,
			subtotal_cents, discount_cents, gift_card_cents, shipping_cents, tax_cents, total_cents,
			coupon_code, gift_card_code, shipping_method, created_at, updated_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(
		&o.ID, &status, &o.TrackingID, &o.Items, &o.Address, &o.PaymentMethod,
		&cents[0], &cents[1], &cents[2], &cents[3], &cents[4], &cents[5],
		&o.CouponCode, &o.GiftCardCode, &o.ShippingMethod, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Status = model.OrderStatus(status)
	o.Payment = model.Payment{
		Subtotal:       fromCents(cents[0]),
		Discount:       fromCents(cents[1]),
		GiftCardAmount: fromCents(cents[2]),
		ShippingFee:    fromCents(cents[3]),
		Tax:            fromCents(cents[4]),
		Total:          fromCents(cents[5]),
	}

	notes, err := r.getNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Notes = notes

	return &o, nil
}

func (r *PostgresRepository) getNotes(ctx context.Context, orderID uuid.UUID) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, content, author, created_at
		 FROM order_notes
		 WHERE order_id = $1
		 ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.Author, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return notes, nil
}

// TransitionOrder меняет статус заказа. Строка заказа блокируется, текущий статус перечитывается
// внутри транзакции, поэтому параллельные отмены не вернут товар на склад дважды.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, id uuid.UUID, plan func(current model.OrderStatus) (model.StatusTransition, error)) (*model.Order, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var (
			status string
			items  []model.OrderItem
		)
		err := tx.QueryRow(ctx,
			`SELECT status, items FROM orders WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&status, &items)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		tr, err := plan(model.OrderStatus(status))
		if err != nil {
			return err
		}
		if tr.Noop {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
			id, string(tr.Status),
		); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if _, err := insertNote(ctx, tx, id, model.Note{ID: uuid.New(), Content: tr.Note, Author: model.NoteAuthorSystem}); err != nil {
			return err
		}

		if tr.Restock {
			for _, it := range items {
				tag, err := tx.Exec(ctx,
					`UPDATE products SET stock = stock + $2 WHERE id = $1`,
					it.ProductID, it.Quantity,
				)
				if err != nil {
					return fmt.Errorf("restock %s: %w", it.ProductID, err)
				}
				if tag.RowsAffected() != 1 {
					return fmt.Errorf("restock %s: %w", it.ProductID, model.ErrProductNotFound)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrder(ctx, id)
}

// UpdateTracking сохраняет трек-номер и запись журнала в одной транзакции.
func (r *PostgresRepository) UpdateTracking(ctx context.Context, id uuid.UUID, trackingID string, note model.Note) (*model.Order, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE orders SET tracking_id = $2, updated_at = NOW() WHERE id = $1`,
			id, trackingID,
		)
		if err != nil {
			return fmt.Errorf("update tracking: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return model.ErrOrderNotFound
		}

		_, err = insertNote(ctx, tx, id, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrder(ctx, id)
}

// AddNote добавляет запись в журнал заказа и возвращает её с временем, назначенным БД.
func (r *PostgresRepository) AddNote(ctx context.Context, id uuid.UUID, note model.Note) (model.Note, error) {
	var stored model.Note
	err := r.withRetry(ctx, func() error {
		var err error
		stored, err = insertNote(ctx, r.pool, id, note)
		return err
	})
	return stored, err
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertNote(ctx context.Context, q querier, orderID uuid.UUID, note model.Note) (model.Note, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO order_notes (id, order_id, content, author) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		note.ID, orderID, note.Content, note.Author,
	).Scan(&note.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return model.Note{}, model.ErrOrderNotFound
		}
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}
