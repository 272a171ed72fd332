// Package api provides the HTTP API: handlers, websocket progress stream and middleware.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/factchecker/veracity/internal/database"
	"github.com/factchecker/veracity/internal/models"
	"github.com/factchecker/veracity/internal/verify"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 1 << 20

// Handler contains all HTTP handlers.
type Handler struct {
	engine  *verify.Engine
	store   database.Store
	reports *cache.Cache
	version string
}

// NewHandler creates a new handler. store may be nil, in which case the audit
// endpoint is unavailable.
func NewHandler(engine *verify.Engine, store database.Store, reports *cache.Cache, version string) *Handler {
	return &Handler{
		engine:  engine,
		store:   store,
		reports: reports,
		version: version,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":           "healthy",
		"version":          h.version,
		"knowledge_topics": h.engine.KnowledgeBase().Len(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// Analyze runs the pipeline on the request text. Reports are cached by document hash.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := verify.DocumentHash(req.Text)
	if cached, ok := h.reports.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.engine.Analyze(r.Context(), req.Text, nil)
	if err != nil {
		status, message := analysisErrorStatus(err)
		writeError(w, status, message)
		return
	}

	h.reports.SetDefault(key, report)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, report)
}

// analysisErrorStatus maps an engine error to an HTTP status and client message.
func analysisErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "Text is required"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Analysis cancelled"
	default:
		log.Error().Err(err).Msg("Analysis failed")
		return http.StatusInternalServerError, "Analysis failed: " + err.Error()
	}
}

// Topics lists the knowledge base topics the engine consults.
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topics": h.engine.KnowledgeBase().Summaries(),
	})
}

// GetAuditLogs returns paginated audit logs.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "Audit log is not enabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	logs, err := h.store.GetAuditLogs(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		writeError(w, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
