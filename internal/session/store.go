// Package session сохраняет сессию корзины в Redis, чтобы она переживала перезагрузку страницы.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/model"
)

// ErrNotFound возвращается, если сохранённой сессии нет.
var ErrNotFound = errors.New("session not found")

const (
	fieldLines    = "lines"
	fieldCoupon   = "coupon"
	fieldGiftCard = "giftcard"
	fieldShipping = "shipping"
)

var fields = []string{fieldLines, fieldCoupon, fieldGiftCard, fieldShipping}

// RedisStore хранит каждую часть сессии под фиксированным ключом cart:{id}:{field}.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище сессий с указанным временем жизни.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Save целиком записывает сессию одной транзакцией MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, id string, sess *cart.Session) error {
	values := make(map[string]any, len(fields))

	lines, err := json.Marshal(sess.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines failed: %w", err)
	}
	values[fieldLines] = lines

	if sess.Coupon != nil {
		b, err := json.Marshal(sess.Coupon)
		if err != nil {
			return fmt.Errorf("marshal coupon failed: %w", err)
		}
		values[fieldCoupon] = b
	}

	if sess.GiftCard != nil {
		b, err := json.Marshal(sess.GiftCard)
		if err != nil {
			return fmt.Errorf("marshal gift card failed: %w", err)
		}
		values[fieldGiftCard] = b
	}

	if sess.ShippingMethod != "" {
		values[fieldShipping] = sess.ShippingMethod
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, f := range fields {
			key := cacheKey(id, f)
			if v, ok := values[f]; ok {
				pipe.Set(ctx, key, v, s.ttl)
			} else {
				pipe.Del(ctx, key)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save failed: %w", err)
	}
	return nil
}

// Restore читает сессию. Если ни одного ключа нет, возвращает ErrNotFound.
func (s *RedisStore) Restore(ctx context.Context, id string) (*cart.Session, error) {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = cacheKey(id, f)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	found := false
	for _, v := range vals {
		if v != nil {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	sess := cart.New()

	if raw, ok := vals[0].(string); ok {
		var lines []model.CartLine
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			return nil, fmt.Errorf("unmarshal lines failed: %w", err)
		}
		if lines != nil {
			sess.Lines = lines
		}
	}

	if raw, ok := vals[1].(string); ok {
		var c model.Coupon
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("unmarshal coupon failed: %w", err)
		}
		sess.Coupon = &c
	}

	if raw, ok := vals[2].(string); ok {
		var g model.GiftCard
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, fmt.Errorf("unmarshal gift card failed: %w", err)
		}
		sess.GiftCard = &g
	}

	if raw, ok := vals[3].(string); ok {
		sess.ShippingMethod = raw
	}

	return sess, nil
}

// Clear удаляет все ключи сессии.
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = cacheKey(id, f)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(id, field string) string {
	return fmt.Sprintf("cart:%s:%s", id, field)
}
