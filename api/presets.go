package api

import (
	"encoding/json"
	"net/http"

	"emotion-panel/preset"
)

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.panel.Presets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []preset.Preset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": h.panel.Config().CharacterName,
		"presets": list,
	})
}

// saveCurrentPreset stores the live configuration under the given name,
// or under the current character name when none is sent.
func (h *handler) saveCurrentPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Name == "" {
		req.Name = h.panel.Config().CharacterName
	}
	updated, err := h.panel.SaveCurrentAsPreset(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if updated {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"name": req.Name, "updated": updated})
}

func (h *handler) putPreset(w http.ResponseWriter, r *http.Request) {
	var p preset.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.Name = pathParam(r, "name")
	updated, err := h.panel.SavePreset(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if updated {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"name": p.Name, "updated": updated})
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	orphaned, err := h.panel.DeletePreset(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"orphaned": orphaned})
}

func (h *handler) loadPreset(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.panel.LoadPreset(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handler) syncPreset(w http.ResponseWriter, r *http.Request) {
	synced, err := h.panel.SyncCurrentToPreset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"synced": synced})
}
