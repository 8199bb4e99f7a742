package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/storefront/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)

			r.Post("/lines", h.AddLine)
			r.Put("/lines", h.SetQuantity)
			r.Delete("/lines", h.RemoveLine)

			r.Post("/coupon", h.ApplyCoupon)
			r.Delete("/coupon", h.RemoveCoupon)

			r.Post("/giftcard", h.ApplyGiftCard)
			r.Delete("/giftcard", h.RemoveGiftCard)

			r.Put("/shipping", h.SelectShipping)
		})

		r.Post("/api/checkout", h.Checkout)
	})

	r.Route("/api/admin/orders/{id}", func(r chi.Router) {
		r.Get("/", h.GetOrder)
		r.Put("/status", h.SetOrderStatus)
		r.Put("/tracking", h.UpdateTracking)
		r.Post("/notes", h.AddNote)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
