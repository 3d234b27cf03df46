package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

// Controller is the part of the daemon the API drives
type Controller interface {
	Latest() (timemanager.Report, bool)
	RefreshNow(ctx context.Context) timemanager.Report
	Focused() bool
	SetFocused(focused bool)
}

// Handler implements the HTTP handlers
type Handler struct {
	controller Controller
	logger     *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(controller Controller, logger *zap.Logger) *Handler {
	return &Handler{
		controller: controller,
		logger:     logger,
	}
}

// FocusRequest is the body of POST /api/focus
type FocusRequest struct {
	Focused *bool `json:"focused"`
}

// FocusResponse reports the focus state after a change
type FocusResponse struct {
	Focused bool `json:"focused"`
}

// ErrorResponse is returned for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus handles GET /api/status. Before the daemon has produced a
// report the calendar is loaded synchronously.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	report, ok := h.controller.Latest()
	if !ok {
		report = h.controller.RefreshNow(r.Context())
	}
	writeJSON(w, http.StatusOK, report)
}

// SetFocus handles POST /api/focus
func (h *Handler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Focused == nil {
		writeError(w, http.StatusBadRequest, "focused is required", nil)
		return
	}

	h.controller.SetFocused(*req.Focused)
	h.logger.Info("Focus set via API", zap.Bool("focused", *req.Focused))

	writeJSON(w, http.StatusOK, FocusResponse{Focused: h.controller.Focused()})
}

// Refresh handles POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.RefreshNow(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
