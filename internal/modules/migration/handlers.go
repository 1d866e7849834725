package migration

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles migration HTTP requests
type Handler struct {
	migrator    *Migrator
	defaultPath string
	log         zerolog.Logger
}

// NewHandler creates a new migration handler. defaultPath is used when the
// request doesn't name a legacy database.
func NewHandler(migrator *Migrator, defaultPath string, log zerolog.Logger) *Handler {
	return &Handler{
		migrator:    migrator,
		defaultPath: defaultPath,
		log:         log.With().Str("handler", "migration").Logger(),
	}
}

// RegisterRoutes registers migration routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/migrate", h.HandleMigrate)
}

type migrateRequest struct {
	LegacyPath string `json:"legacy_path"`
}

// HandleMigrate imports the legacy fundamental analyses database
// POST /api/migrate
func (h *Handler) HandleMigrate(w http.ResponseWriter, r *http.Request) {
	path := h.defaultPath

	// body is optional
	if r.Body != nil && r.ContentLength != 0 {
		var req migrateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid JSON body"})
			return
		}
		if req.LegacyPath != "" {
			path = req.LegacyPath
		}
	}

	h.writeJSON(w, http.StatusOK, h.migrator.Migrate(path))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
