package api_test

import (
	"context"
	"net/http"
	"testing"

	"emotion-panel/panel"
	"emotion-panel/preset"
)

type presetList struct {
	Current string          `json:"current"`
	Presets []preset.Preset `json:"presets"`
}

func TestPresetsEmpty(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodGet, "/api/presets", "")
	expectStatus(t, resp, http.StatusOK)
	var got presetList
	decode(t, resp, &got)
	if len(got.Presets) != 0 || got.Current != panel.DefaultCharacterName {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestSaveCurrentPresetCreatesThenUpdates(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")

	expectStatus(t, env.do(t, http.MethodPost, "/api/presets", ""), http.StatusCreated)
	expectStatus(t, env.do(t, http.MethodPost, "/api/presets", `{"name":"Alice"}`), http.StatusOK)

	resp := env.do(t, http.MethodGet, "/api/presets", "")
	var got presetList
	decode(t, resp, &got)
	if len(got.Presets) != 1 || got.Presets[0].Name != "Alice" || got.Current != "Alice" {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestPutPresetAndLoad(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")

	resp := env.do(t, http.MethodPut, "/api/presets/Bob",
		`{"apiKey":"bob-key","modelName":"gpt-4o-mini","taxonomy":{"Happy":"b.png"},"autoAnalyze":true}`)
	expectStatus(t, resp, http.StatusCreated)

	resp = env.do(t, http.MethodPost, "/api/presets/Bob/load", "")
	expectStatus(t, resp, http.StatusOK)
	var cfg panel.Config
	decode(t, resp, &cfg)
	if cfg.CharacterName != "Bob" || cfg.APIKey != "bob-key" || cfg.ModelName != "gpt-4o-mini" || !cfg.AutoAnalyze {
		t.Fatalf("preset not applied: %+v", cfg)
	}
	if cfg.Taxonomy.Len() != 5 {
		t.Fatalf("protected labels missing after load: %v", cfg.Taxonomy.Labels())
	}
}

func TestLoadMissingPresetIs404(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodPost, "/api/presets/Nobody/load", ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/presets/Nobody", ""), http.StatusNotFound)
}

func TestDeleteCurrentPresetIsOrphaned(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")
	expectStatus(t, env.do(t, http.MethodPost, "/api/presets", ""), http.StatusCreated)

	resp := env.do(t, http.MethodDelete, "/api/presets/Alice", "")
	expectStatus(t, resp, http.StatusOK)
	var got map[string]bool
	decode(t, resp, &got)
	if !got["orphaned"] {
		t.Fatalf("expected orphaned=true, got %v", got)
	}
	if env.panel.Config().CharacterName != "Alice" {
		t.Fatal("deleting the preset changed the live config")
	}
}

func TestSyncPreset(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")

	resp := env.do(t, http.MethodPost, "/api/presets/sync", "")
	var got map[string]bool
	decode(t, resp, &got)
	if got["synced"] {
		t.Fatal("synced without an existing preset")
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/presets", ""), http.StatusCreated)
	env.do(t, http.MethodPost, "/api/taxonomy", `{"label":"Excited","image":"e.png"}`)

	p, err := env.panel.Preset(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	if !p.Taxonomy.Has("Excited") {
		t.Fatal("label change not synced to the current preset")
	}
}
