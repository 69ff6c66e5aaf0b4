package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sndev/marketplace-backend/internal/modules/auth"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

// Handler exposes order and cart HTTP endpoints. It is thin glue:
// decode, validate, check ownership against the JWT caller, delegate.
type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.create)                      // POST   /api/orders
		r.Get("/", h.getAll)                       // GET    /api/orders
		r.Get("/user/{userID}", h.listByUser)      // GET    /api/orders/user/{userID}
		r.Get("/{id}", h.getByID)                  // GET    /api/orders/{id}
		r.Patch("/{id}/command", h.patch)          // PATCH  /api/orders/{id}/command
		r.Post("/{id}/confirm", h.confirm)         // POST   /api/orders/{id}/confirm
		r.Get("/{id}/sub-orders", h.subOrders)     // GET    /api/orders/{id}/sub-orders
		r.Delete("/{id}", h.delete)                // DELETE /api/orders/{id}
		r.Delete("/user/{userID}", h.deleteByUser) // DELETE /api/orders/user/{userID}
	})
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/user/{userID}", h.getCart)                      // GET    /api/cart/user/{userID}
		r.Patch("/{id}", h.upsertItem)                          // PATCH  /api/cart/{id}
		r.Delete("/{id}/products/{productID}", h.removeItem)    // DELETE /api/cart/{id}/products/{productID}
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Create(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAll(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PatchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !h.callerOwnsOrder(w, r, id) {
		return
	}
	o, err := h.service.Patch(r.Context(), id, req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.callerOwnsOrder(w, r, id) {
		return
	}
	o, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) subOrders(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.callerOwnsOrder(w, r, id) {
		return
	}
	subs, err := h.service.SubOrdersByParent(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, subs)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.callerOwnsOrder(w, r, id) {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteByUser wipes a user's order history; used by the user-service
// account-deletion flow. Only the user themselves may trigger it.
func (h *Handler) deleteByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if caller, ok := auth.UserID(r.Context()); !ok || caller != userID {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not allowed to delete these orders"})
		return
	}
	if err := h.service.DeleteByUser(r.Context(), userID); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── cart endpoints ───────────────────────────────────────────────────────────

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	o, err := h.service.CartByUser(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	if caller, ok := auth.UserID(r.Context()); !ok || caller != o.UserID {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not allowed to view this cart"})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) upsertItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpsertItem(r.Context(), id, req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	productID := chi.URLParam(r, "productID")
	if _, err := h.service.RemoveItem(r.Context(), id, productID); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// callerOwnsOrder writes a 403 and returns false when the JWT caller is
// not the order's owner.
func (h *Handler) callerOwnsOrder(w http.ResponseWriter, r *http.Request, id string) bool {
	o, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return false
	}
	caller, ok := auth.UserID(r.Context())
	if !ok || caller != o.UserID {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not allowed to modify this order"})
		return false
	}
	return true
}

func fail(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
