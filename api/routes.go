// Package api is the HTTP and websocket surface the overlay panel talks to.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"emotion-panel/document"
	"emotion-panel/emotion"
	"emotion-panel/panel"
	"emotion-panel/preset"
)

// ResetParam is the query parameter that triggers a full reset.
const ResetParam = "emotion_reset"

// RegisterRoutes builds the router. It also routes panel notifications
// and automatic results to the connected documents.
func RegisterRoutes(p *panel.Panel, docs *document.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{panel: p, docs: docs}
	r.Use(h.resetSignal)

	p.SetNotifier(panel.NotifierFunc(func(level panel.Level, message string) {
		log.Printf("[%s] %s", level, message)
		docs.Broadcast(document.Event{Type: "notice", Level: string(level), Message: message})
	}))
	p.OnAutoResult(func(id string, res panel.Result) {
		if d, ok := docs.Get(id); ok {
			d.Send(emotionEvent(res))
		}
	})

	r.Get("/api/config", h.getConfig)
	r.Put("/api/config", h.putConfig)

	r.Get("/api/taxonomy", h.getTaxonomy)
	r.Post("/api/taxonomy", h.addLabel)
	r.Delete("/api/taxonomy/{label}", h.removeLabel)
	r.Get("/api/taxonomy/{label}/image", h.labelImage)

	r.Post("/api/analyze", h.analyze)
	r.Post("/api/analyze/test", h.testConnection)
	r.Get("/api/history", h.getHistory)

	r.Get("/api/presets", h.listPresets)
	r.Post("/api/presets", h.saveCurrentPreset)
	r.Post("/api/presets/sync", h.syncPreset)
	r.Put("/api/presets/{name}", h.putPreset)
	r.Delete("/api/presets/{name}", h.deletePreset)
	r.Post("/api/presets/{name}/load", h.loadPreset)

	r.Get("/api/export", h.export)
	r.Get("/api/export/schema", h.exportSchema)
	r.Post("/api/import", h.importBlob)
	r.Post("/api/reset", h.reset)

	r.Get("/api/ui", h.getUI)
	r.Put("/api/ui", h.putUI)

	r.Get("/api/documents", h.listDocuments)
	r.Post("/api/documents", h.createDocument)
	r.Delete("/api/documents/{id}", h.closeDocument)
	r.Get("/api/documents/{id}/ws", h.handleWS)

	return r
}

type handler struct {
	panel *panel.Panel
	docs  *document.Manager
}

// resetSignal restores factory settings before routing any request that
// carries emotion_reset=true.
func (h *handler) resetSignal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get(ResetParam) == "true" {
			if err := h.panel.ResetAll(r.Context()); err != nil {
				log.Printf("reset signal: %v", err)
				http.Error(w, "failed to reset settings", http.StatusInternalServerError)
				return
			}
			log.Printf("settings reset by %s signal", ResetParam)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *panel.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, panel.ErrEmptyText),
		errors.Is(err, panel.ErrInvalidFormat),
		errors.Is(err, emotion.ErrEmptyLabel),
		errors.Is(err, preset.ErrEmptyName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, preset.ErrNotFound):
		http.Error(w, "preset not found", http.StatusNotFound)
	case errors.Is(err, document.ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, emotion.ErrProtectedLabel):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, document.ErrNameTaken):
		http.Error(w, "document name already in use", http.StatusConflict)
	default:
		log.Printf("api: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// pathParam returns a decoded URL parameter. Labels and preset names may
// be non-ASCII.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func emotionEvent(res panel.Result) document.Event {
	return document.Event{
		Type:      "emotion",
		Label:     res.Label,
		Image:     res.Image,
		Timestamp: res.Timestamp,
	}
}
