package stats

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

// Handler exposes the statistics endpoint.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	// GET /api/orders/statistics/user/{userID}
	r.Get("/api/orders/statistics/user/{userID}", h.userStatistics)
}

func (h *Handler) userStatistics(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.UserStatistics(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, result)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
