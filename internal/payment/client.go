// Package payment предоставляет клиент платёжного шлюза, выдающего ссылку для перенаправления покупателя.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/mmeshcher/storefront/internal/model"
)

// Client инкапсулирует HTTP-взаимодействие с платёжным шлюзом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
}

type redirectRequest struct {
	OrderID string        `json:"order_id"`
	Payment model.Payment `json:"payment"`
}

type redirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// NewClient создаёт HTTP-клиент платёжного шлюза по указанному адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:    "payment-gateway",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Redirect запрашивает у шлюза ссылку на оплату заказа. Протокол шлюза не интерпретируется:
// успехом считается только непустая ссылка.
func (c *Client) Redirect(ctx context.Context, orderID uuid.UUID, p model.Payment) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("payment client not configured")
	}

	return c.breaker.Execute(func() (string, error) {
		return c.redirect(ctx, orderID, p)
	})
}

func (c *Client) redirect(ctx context.Context, orderID uuid.UUID, p model.Payment) (string, error) {
	body, err := json.Marshal(redirectRequest{OrderID: orderID.String(), Payment: p})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result redirectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.RedirectURL == "" {
		return "", fmt.Errorf("empty redirect url")
	}

	return result.RedirectURL, nil
}
