package api_test

import (
	"net/http"
	"testing"

	"emotion-panel/document"
)

func TestListDocumentsEmpty(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodGet, "/api/documents", "")
	expectStatus(t, resp, http.StatusOK)
	var docs []document.Info
	decode(t, resp, &docs)
	if len(docs) != 0 {
		t.Fatalf("expected 0 documents, got %d", len(docs))
	}
}

func TestCreateDocument201(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodPost, "/api/documents", `{"name":"chapter-1"}`)
	expectStatus(t, resp, http.StatusCreated)
	var info document.Info
	decode(t, resp, &info)
	if info.Name != "chapter-1" || info.ID == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, ok := env.docs.Get(info.ID); !ok {
		t.Fatal("document not registered")
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodPost, "/api/documents", `{"name":""}`), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/api/documents", `nope`), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodPost, "/api/documents", `{"name":"dup"}`), http.StatusCreated)
	expectStatus(t, env.do(t, http.MethodPost, "/api/documents", `{"name":"dup"}`), http.StatusConflict)
}

func TestCloseDocument(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, `,"autoAnalyze":true`)

	resp := env.do(t, http.MethodPost, "/api/documents", `{"name":"chapter-1"}`)
	var info document.Info
	decode(t, resp, &info)
	if env.panel.Observing() != 1 {
		t.Fatalf("expected 1 observed document, got %d", env.panel.Observing())
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/documents/"+info.ID, ""), http.StatusNoContent)
	if env.panel.Observing() != 0 {
		t.Fatal("closed document still observed")
	}
	expectStatus(t, env.do(t, http.MethodDelete, "/api/documents/"+info.ID, ""), http.StatusNotFound)
}
