package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/mmeshcher/storefront/internal/model"
)

func TestRedirect_OK(t *testing.T) {
	orderID := uuid.New()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/payments" {
			t.Errorf("path = %s, want /api/payments", r.URL.Path)
		}

		var req redirectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.OrderID != orderID.String() {
			t.Errorf("order id = %s, want %s", req.OrderID, orderID)
		}
		if !req.Payment.Total.Equal(decimal.NewFromInt(1900)) {
			t.Errorf("total = %s, want 1900", req.Payment.Total)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(redirectResponse{RedirectURL: "https://pay.example/session/1"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	url, err := client.Redirect(ctx, orderID, model.Payment{Total: decimal.NewFromInt(1900)})
	if err != nil {
		t.Fatalf("Redirect error: %v", err)
	}
	if url != "https://pay.example/session/1" {
		t.Fatalf("url = %q", url)
	}
}

func TestRedirect_GatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	_, err := client.Redirect(context.Background(), uuid.New(), model.Payment{})
	if err == nil {
		t.Fatalf("expected error for 502")
	}
}

func TestRedirect_EmptyURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(redirectResponse{})
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Redirect(context.Background(), uuid.New(), model.Payment{})
	if err == nil {
		t.Fatalf("expected error for empty redirect url")
	}
}

func TestRedirect_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	for i := 0; i < 5; i++ {
		_, _ = client.Redirect(context.Background(), uuid.New(), model.Payment{})
	}

	_, err := client.Redirect(context.Background(), uuid.New(), model.Payment{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want open breaker", err)
	}
	if calls != 5 {
		t.Fatalf("gateway calls = %d, want 5", calls)
	}
}

func TestRedirect_NotConfigured(t *testing.T) {
	var client *Client
	if _, err := client.Redirect(context.Background(), uuid.New(), model.Payment{}); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
