package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"emotion-panel/history"
	"emotion-panel/panel"
)

// analyze classifies the given text, or the latest paragraph of a
// document when only documentId is sent.
func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	text := req.Text
	if req.DocumentID != "" {
		d, ok := h.docs.Get(req.DocumentID)
		if !ok {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		if text == "" {
			text, _ = d.Latest()
		}
	}

	res, err := h.panel.Analyze(r.Context(), text)
	if err != nil {
		if errors.Is(err, panel.ErrConfigInvalid) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, err)
		return
	}

	if d, ok := h.docs.Get(req.DocumentID); ok {
		d.Send(emotionEvent(res))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) testConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey    string `json:"apiKey"`
		ModelName string `json:"modelName"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.panel.TestConnection(r.Context(), req.APIKey, req.ModelName))
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.panel.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
