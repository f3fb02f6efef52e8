package api

import (
	"encoding/json"
	"net/http"

	"emotion-panel/panel"
)

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.panel.Config())
}

func (h *handler) putConfig(w http.ResponseWriter, r *http.Request) {
	var cfg panel.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	report, err := h.panel.SaveConfig(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) getTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.panel.Taxonomy())
}

func (h *handler) addLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cfg, err := h.panel.AddLabel(r.Context(), req.Label, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Taxonomy)
}

func (h *handler) removeLabel(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.panel.RemoveLabel(r.Context(), pathParam(r, "label"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Taxonomy)
}

func (h *handler) labelImage(w http.ResponseWriter, r *http.Request) {
	label := pathParam(r, "label")
	resolved, url, ok := h.panel.ResolveImage(label)
	writeJSON(w, http.StatusOK, map[string]any{
		"label":    label,
		"resolved": resolved,
		"image":    url,
		"found":    ok,
	})
}

func (h *handler) getUI(w http.ResponseWriter, r *http.Request) {
	ui, err := h.panel.UIState(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ui)
}

// putUI updates only the fields present in the body; "position": null
// clears the stored position.
func (h *handler) putUI(w http.ResponseWriter, r *http.Request) {
	var req map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if pos, ok := req["position"]; ok {
		if err := h.panel.SetPosition(r.Context(), pos); err != nil {
			writeError(w, err)
			return
		}
	}
	if raw, ok := req["collapsed"]; ok {
		var collapsed bool
		if err := json.Unmarshal(raw, &collapsed); err != nil {
			http.Error(w, "collapsed must be a boolean", http.StatusBadRequest)
			return
		}
		if err := h.panel.SetCollapsed(r.Context(), collapsed); err != nil {
			writeError(w, err)
			return
		}
	}
	h.getUI(w, r)
}
