package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"emotion-panel/document"
)

func (h *handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.docs.List()
	infos := make([]document.Info, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, d.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// createDocument registers a host page and attaches it to the
// auto-analyze observer.
func (h *handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	d, err := h.docs.Create(strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err)
		return
	}
	h.panel.Attach(d.ID, d)
	writeJSON(w, http.StatusCreated, d.Info())
}

func (h *handler) closeDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.docs.Close(id); err != nil {
		writeError(w, err)
		return
	}
	h.panel.Detach(id)
	w.WriteHeader(http.StatusNoContent)
}
