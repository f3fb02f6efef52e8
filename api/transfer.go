package api

import (
	"io"
	"net/http"

	"emotion-panel/panel"
)

// maxImportSize bounds the body of an import request.
const maxImportSize = 1 << 20

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.panel.ExportJSON(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="emotion-panel-settings.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) exportSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, panel.Schema())
}

func (h *handler) importBlob(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if err := h.panel.Import(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.panel.Config())
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.panel.ResetAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
