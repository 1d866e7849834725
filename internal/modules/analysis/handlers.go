package analysis

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// RegisterRoutes registers analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/fundamental/{symbol}", h.HandleStoreFundamental)
	r.Post("/sentiment/{symbol}", h.HandleStoreSentiment)
	r.Get("/sentiment/{symbol}/cached", h.HandleGetCachedSentiment)
}

// HandleStoreFundamental stores a fundamental analysis payload
// POST /api/analysis/fundamental/{symbol}
func (h *Handler) HandleStoreFundamental(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.StoreFundamentalAnalysis(symbol, payload))
}

// HandleStoreSentiment stores a sentiment analysis payload
// POST /api/analysis/sentiment/{symbol}
func (h *Handler) HandleStoreSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.StoreSentimentAnalysis(symbol, payload))
}

// HandleGetCachedSentiment returns the cached sentiment for a symbol
// GET /api/analysis/sentiment/{symbol}/cached
func (h *Handler) HandleGetCachedSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	h.writeJSON(w, http.StatusOK, h.service.GetCachedSentiment(symbol))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"status": "error", "error": message})
}
