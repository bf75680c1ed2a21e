// Package httpapi is the thin HTTP layer over the recorder. It decodes
// lifecycle transitions, delegates to the recorder, and keeps transport
// concerns out of the audit core.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trail/internal/recorder"
	"trail/pkg/audit"
)

type Handler struct {
	recorder *recorder.Recorder
	store    audit.Store
	logger   *slog.Logger
}

func NewHandler(rec *recorder.Recorder, store audit.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{recorder: rec, store: store, logger: logger}
}

type transitionPolicy struct {
	Events    []audit.Event `json:"events,omitempty"`
	Include   []string      `json:"include,omitempty"`
	Exclude   []string      `json:"exclude,omitempty"`
	Strict    bool          `json:"strict,omitempty"`
	Hidden    []string      `json:"hidden,omitempty"`
	Visible   []string      `json:"visible,omitempty"`
	Threshold int           `json:"threshold,omitempty"`
}

type transitionRequest struct {
	AuditableType string           `json:"auditable_type"`
	AuditableID   string           `json:"auditable_id"`
	Event         audit.Event      `json:"event"`
	Attributes    audit.Snapshot   `json:"attributes"`
	Original      audit.Snapshot   `json:"original"`
	Policy        transitionPolicy `json:"policy"`
}

// subject adapts an ingested transition to the audit.Subject interface.
type subject struct {
	req transitionRequest
}

func (s subject) AuditableID() string        { return s.req.AuditableID }
func (s subject) AuditableType() string      { return s.req.AuditableType }
func (s subject) Attributes() audit.Snapshot { return s.req.Attributes }
func (s subject) Original() audit.Snapshot   { return s.req.Original }

func (s subject) AuditPolicy() audit.Policy {
	p := s.req.Policy
	return audit.Policy{
		Events:    p.Events,
		Include:   p.Include,
		Exclude:   p.Exclude,
		Strict:    p.Strict,
		Hidden:    p.Hidden,
		Visible:   p.Visible,
		Threshold: p.Threshold,
	}
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AuditableType == "" || req.AuditableID == "" || req.Event == "" {
		writeError(w, http.StatusBadRequest, "auditable_type, auditable_id, and event are required")
		return
	}

	record, err := h.recorder.Record(r.Context(), subject{req: req}, req.Event)
	if err != nil {
		if errors.Is(err, audit.ErrNoDiffStrategy) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "audit record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "audit record failed")
		return
	}
	if record == nil {
		// Event not allow-listed or auditing disabled for this runtime.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	auditableType := chi.URLParam(r, "auditableType")
	auditableID := chi.URLParam(r, "auditableID")

	records, err := h.store.ListByAuditable(r.Context(), auditableType, auditableID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "audit list failed")
		return
	}
	if records == nil {
		records = []audit.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"audits": records})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
