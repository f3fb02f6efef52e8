package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"emotion-panel/document"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type      string `json:"type"`
	Data      string `json:"data,omitempty"`
	Label     string `json:"label,omitempty"`
	Image     string `json:"image,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
}

func eventMessage(ev document.Event) wsMessage {
	return wsMessage{
		Type:      ev.Type,
		Label:     ev.Label,
		Image:     ev.Image,
		Timestamp: ev.Timestamp,
		Level:     ev.Level,
		Message:   ev.Message,
	}
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.docs.Get(id)
	if !ok {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	outChan := make(chan document.Event, 64)
	kick := d.SetClient(outChan)
	defer d.ClearClient(outChan)

	// Show the most recent emotion straight away.
	if entries, err := h.panel.History(r.Context()); err == nil && len(entries) > 0 {
		_, url, _ := h.panel.ResolveImage(entries[0].Label)
		msg := wsMessage{
			Type:      "emotion",
			Label:     entries[0].Label,
			Image:     url,
			Timestamp: entries[0].Timestamp,
		}
		if err := writeMsg(msg); err != nil {
			log.Printf("WS replay error: %v", err)
			return
		}
	}

	// Exits when ClearClient closes outChan.
	go func() {
		for ev := range outChan {
			if err := writeMsg(eventMessage(ev)); err != nil {
				return
			}
		}
	}()

	connDone := make(chan struct{})
	go func() {
		select {
		case <-d.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced by a newer connection: close without "closed".
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// The document stays registered after a disconnect.
			return
		}

		switch msg.Type {
		case "paragraph":
			d.Append(msg.Data)
		}
	}
}
