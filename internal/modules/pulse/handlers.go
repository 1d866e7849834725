package pulse

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles market pulse HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new market pulse handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market_pulse").Logger(),
	}
}

// RegisterRoutes registers market pulse routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleStore)
	r.Get("/cached", h.HandleGetCached)
}

// HandleStore stores a market pulse payload
// POST /api/market-pulse
func (h *Handler) HandleStore(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid JSON body"})
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Store(payload))
}

// HandleGetCached returns today's market pulse if still valid
// GET /api/market-pulse/cached
func (h *Handler) HandleGetCached(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.GetCached())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
