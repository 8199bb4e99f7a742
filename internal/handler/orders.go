package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/storefront/internal/model"
)

type noteResponse struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

func newNoteResponse(n model.Note) noteResponse {
	return noteResponse{
		ID:        n.ID.String(),
		Content:   n.Content,
		Author:    n.Author,
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
	}
}

type orderResponse struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Items          []model.OrderItem `json:"items"`
	Address        model.Address     `json:"address"`
	PaymentMethod  string            `json:"paymentMethod"`
	Payment        model.Payment     `json:"payment"`
	CouponCode     string            `json:"couponCode,omitempty"`
	ShippingMethod string            `json:"shippingMethod"`
	TrackingID     string            `json:"trackingId,omitempty"`
	Notes          []noteResponse    `json:"notes"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}

func newOrderResponse(o *model.Order) orderResponse {
	notes := make([]noteResponse, 0, len(o.Notes))
	for _, n := range o.Notes {
		notes = append(notes, newNoteResponse(n))
	}

	return orderResponse{
		ID:             o.ID.String(),
		Status:         string(o.Status),
		Items:          o.Items,
		Address:        o.Address,
		PaymentMethod:  o.PaymentMethod,
		Payment:        o.Payment,
		CouponCode:     o.CouponCode,
		ShippingMethod: o.ShippingMethod,
		TrackingID:     o.TrackingID,
		Notes:          notes,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// GetOrder возвращает заказ с журналом.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetOrderStatus переводит заказ в новый статус.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(r, &req) || req.Status == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.SetOrderStatus(r.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

type trackingRequest struct {
	TrackingID string `json:"trackingId"`
}

// UpdateTracking сохраняет трек-номер.
func (h *Handler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req trackingRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.UpdateTracking(r.Context(), id, req.TrackingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

type noteRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// AddNote добавляет запись в журнал заказа и возвращает её в том виде, в каком она сохранена.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	note, err := h.service.AddNote(r.Context(), id, req.Content, req.Author)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newNoteResponse(note))
}
