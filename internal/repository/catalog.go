package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

const couponColumns = `code, kind, value_cents, applies_to_all, product_ids, valid_from, valid_to, usage_limit, usage_count, enabled`

const giftCardColumns = `code, initial_cents, balance_cents, expires_at, disabled`

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var (
		p          model.Product
		priceCents int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price_cents, stock, shipping, gift_included FROM products WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &priceCents, &p.Stock, &p.Shipping, &p.GiftIncluded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	p.Price = fromCents(priceCents)
	return &p, nil
}

// GetCouponByCode возвращает купон по коду.
func (r *PostgresRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrCouponNotFound, code)
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

// GetGiftCardByCode возвращает подарочную карту по номеру.
func (r *PostgresRepository) GetGiftCardByCode(ctx context.Context, code string) (*model.GiftCard, error) {
	g, err := scanGiftCard(r.pool.QueryRow(ctx,
		`SELECT `+giftCardColumns+` FROM gift_cards WHERE code = $1`,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGiftCardNotFound
		}
		return nil, fmt.Errorf("get gift card: %w", err)
	}
	return g, nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		c          model.Coupon
		kind       string
		valueCents int64
		usageLimit *int32
	)
	err := row.Scan(
		&c.Code, &kind, &valueCents,
		&c.Applicability.All, &c.Applicability.ProductIDs,
		&c.ValidFrom, &c.ValidTo,
		&usageLimit, &c.UsageCount, &c.Enabled,
	)
	if err != nil {
		return nil, err
	}

	c.Kind = model.CouponKind(kind)
	c.Value = fromCents(valueCents)
	if usageLimit != nil {
		v := int(*usageLimit)
		c.UsageLimit = &v
	}
	return &c, nil
}

func scanGiftCard(row pgx.Row) (*model.GiftCard, error) {
	var (
		g            model.GiftCard
		initialCents int64
		balanceCents int64
	)
	if err := row.Scan(&g.Code, &initialCents, &balanceCents, &g.ExpiresAt, &g.Disabled); err != nil {
		return nil, err
	}

	g.InitialValue = fromCents(initialCents)
	g.Balance = fromCents(balanceCents)
	return &g, nil
}
