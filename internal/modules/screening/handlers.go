package screening

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles comparison and screening HTTP requests
type Handler struct {
	engine *Engine
	log    zerolog.Logger
}

// NewHandler creates a new screening handler
func NewHandler(engine *Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "screening").Logger(),
	}
}

// RegisterRoutes registers screening routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/compare", h.HandleCompare)
	r.Post("/screen", h.HandleScreen)
}

type compareRequest struct {
	Symbols    []string `json:"symbols"`
	Dimensions []string `json:"dimensions"`
}

// HandleCompare compares symbols across analysis dimensions
// POST /api/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid JSON body"})
		return
	}

	h.writeJSON(w, http.StatusOK, h.engine.Compare(req.Symbols, req.Dimensions))
}

// HandleScreen filters the stored universe against criteria
// POST /api/screen
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	var criteria map[string]any
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid JSON body"})
		return
	}

	h.writeJSON(w, http.StatusOK, h.engine.Screen(criteria))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
