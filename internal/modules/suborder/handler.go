package suborder

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sndev/marketplace-backend/internal/modules/auth"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

// Handler exposes sub-order HTTP endpoints.
type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sub-orders", func(r chi.Router) {
		r.Get("/seller/{sellerID}", h.listBySeller) // GET   /api/sub-orders/seller/{sellerID}?status=PENDING&page=0&size=20
		r.Patch("/{id}/status", h.updateStatus)     // PATCH /api/sub-orders/{id}/status
	})
}

func (h *Handler) listBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerID")

	// sellers only see their own queue
	caller, ok := auth.UserID(r.Context())
	if !ok || caller != sellerID {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not allowed to list these sub-orders"})
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	result, err := h.service.ListBySeller(r.Context(), sellerID, q.Get("status"), page, size)
	if err != nil {
		respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sub, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	// only the owning seller may advance the fulfilment status
	caller, ok := auth.UserID(r.Context())
	if !ok || caller != sub.SellerID {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not allowed to update this sub-order"})
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, updated)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
