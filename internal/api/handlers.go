package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/tools"
	"github.com/financaspro/financas/internal/tracing"
)

// readyProbe bounds how long the health check waits for the store.
const readyProbe = 200 * time.Millisecond

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyProbe)
	defer cancel()

	if err := h.store.Ready(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: still initializing", store.ErrStoreUnavailable)
		}
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, map[string]string{
		"status":  "ok",
		"version": tracing.Version,
	})
}

func (h *handler) listTools(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.registry.Tools())
}

func (h *handler) callTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params := map[string]interface{}{}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorResponse(w, r, fmt.Errorf("%w: read body: %v", tools.ErrInvalidParams, err))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			writeErrorResponse(w, r, fmt.Errorf("%w: body must be a JSON object: %v", tools.ErrInvalidParams, err))
			return
		}
	}

	result, err := h.registry.Call(r.Context(), name, params)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) exportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	filename := fmt.Sprintf("financas-backup-%s.json", h.service.Today())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) importBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorResponse(w, r, fmt.Errorf("%w: read body: %v", tools.ErrInvalidParams, err))
		return
	}
	if err := h.service.Import(r.Context(), data); err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccessWithMessage(w, "backup imported", nil)
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccessWithMessage(w, "all data cleared", nil)
}
