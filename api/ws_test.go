package api_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"emotion-panel/document"
)

type wsMsg struct {
	Type      string `json:"type"`
	Data      string `json:"data,omitempty"`
	Label     string `json:"label,omitempty"`
	Image     string `json:"image,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
}

func dialWS(t *testing.T, env *testEnv, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

// connect dials the document feed and waits until the server has
// registered the connection.
func connect(t *testing.T, env *testEnv, d *document.Document) *websocket.Conn {
	t.Helper()
	conn, _, err := dialWS(t, env, "/api/documents/"+d.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(2 * time.Second)
	for !d.Info().Connected {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

// readUntil returns the first message of the given type.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) wsMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg wsMsg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWSNotFound(t *testing.T) {
	env := newTestServer(t)
	_, resp, err := dialWS(t, env, "/api/documents/nonexistent/ws")
	if err == nil {
		t.Fatal("expected error connecting to nonexistent document")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func TestWSReplaysLatestEmotion(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")
	env.do(t, http.MethodPost, "/api/analyze", `{"text":"So glad"}`)

	d, _ := env.docs.Create("replay")
	conn, _, err := dialWS(t, env, "/api/documents/"+d.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	msg := readUntil(t, conn, "emotion")
	if msg.Label != "Happy" || msg.Image == "" {
		t.Fatalf("unexpected replay %+v", msg)
	}
}

func TestWSParagraphTriggersAutoAnalyze(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, `,"autoAnalyze":true`)
	env.endpoint.answer = "Angry"

	resp := env.do(t, http.MethodPost, "/api/documents", `{"name":"chapter-1"}`)
	var info document.Info
	decode(t, resp, &info)
	d, _ := env.docs.Get(info.ID)
	conn := connect(t, env, d)

	if err := conn.WriteJSON(wsMsg{Type: "paragraph", Data: "Alice slammed the door."}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readUntil(t, conn, "emotion")
	if msg.Label != "Angry" || msg.Timestamp == "" {
		t.Fatalf("unexpected emotion %+v", msg)
	}
	if last, _ := d.Latest(); last != "Alice slammed the door." {
		t.Fatalf("paragraph not buffered, latest %q", last)
	}
}

func TestWSNoAutoAnalyzeWhenDisabled(t *testing.T) {
	env := newTestServer(t)
	env.saveKey(t, "")

	resp := env.do(t, http.MethodPost, "/api/documents", `{"name":"quiet"}`)
	var info document.Info
	decode(t, resp, &info)
	d, _ := env.docs.Get(info.ID)
	conn := connect(t, env, d)

	conn.WriteJSON(wsMsg{Type: "paragraph", Data: "Nothing happens."})
	deadline := time.Now().Add(2 * time.Second)
	for d.Info().Paragraphs == 0 {
		if time.Now().After(deadline) {
			t.Fatal("paragraph never arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	env.endpoint.mu.Lock()
	calls := env.endpoint.calls
	env.endpoint.mu.Unlock()
	if calls != 0 {
		t.Fatalf("endpoint called %d times with auto-analyze off", calls)
	}
}

func TestWSNoticeBroadcast(t *testing.T) {
	env := newTestServer(t)
	d, _ := env.docs.Create("notices")
	conn := connect(t, env, d)

	env.saveKey(t, "")
	msg := readUntil(t, conn, "notice")
	if msg.Level == "" || msg.Message == "" {
		t.Fatalf("unexpected notice %+v", msg)
	}
}

func TestWSClosedOnDocumentClose(t *testing.T) {
	env := newTestServer(t)
	d, _ := env.docs.Create("close-test")
	conn := connect(t, env, d)

	expectStatus(t, env.do(t, http.MethodDelete, "/api/documents/"+d.ID, ""), http.StatusNoContent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn.ReadJSON(&msg); err != nil {
		// Connection was closed without a JSON message.
		return
	}
	if msg.Type != "closed" {
		t.Fatalf("expected 'closed' message, got %q", msg.Type)
	}
}

func TestWSClientDisplacement(t *testing.T) {
	env := newTestServer(t)
	d, _ := env.docs.Create("displace-test")

	conn1 := connect(t, env, d)
	conn2, _, err := dialWS(t, env, "/api/documents/"+d.ID+"/ws")
	if err != nil {
		t.Fatalf("conn2 dial: %v", err)
	}
	defer conn2.Close()

	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn1.ReadJSON(&msg); err == nil {
		t.Logf("conn1 received message after displacement: %q (not a failure)", msg.Type)
	}
}
