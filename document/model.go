package document

import (
	"strings"
	"sync"
	"time"
)

const maxParagraphs = 50

// Event is pushed to the client attached to a document.
type Event struct {
	Type      string `json:"type"`
	Label     string `json:"label,omitempty"`
	Image     string `json:"image,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Info is a point-in-time view of a document for listing.
type Info struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Connected  bool      `json:"connected"`
	Observed   bool      `json:"observed"`
	Paragraphs int       `json:"paragraphs"`
}

// Document is a host page whose text is streamed in paragraph by paragraph.
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time

	paragraphs *paragraphBuf

	outMu      sync.Mutex
	outChan    chan Event
	kickChan   chan struct{}
	lastActive time.Time

	obsMu    sync.Mutex
	observer *subscription

	done      chan struct{}
	closeOnce sync.Once
}

func newDocument(id, name string) *Document {
	now := time.Now()
	return &Document{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		lastActive: now,
		paragraphs: newParagraphBuf(maxParagraphs),
		done:       make(chan struct{}),
	}
}

type paragraphBuf struct {
	mu   sync.Mutex
	data []string
	max  int
}

func newParagraphBuf(max int) *paragraphBuf {
	return &paragraphBuf{max: max}
}

func (b *paragraphBuf) Write(p string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p)
	if len(b.data) > b.max {
		b.data = b.data[len(b.data)-b.max:]
	}
}

func (b *paragraphBuf) Last() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return "", false
	}
	return b.data[len(b.data)-1], true
}

func (b *paragraphBuf) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]string, len(b.data))
	copy(cp, b.data)
	return cp
}

func (b *paragraphBuf) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

type subscription struct {
	ch   chan string
	done chan struct{}
	once sync.Once
}

func newSubscription() *subscription {
	return &subscription{ch: make(chan string, 16), done: make(chan struct{})}
}

// close stops delivery. Paragraphs still queued are dropped.
func (s *subscription) close() {
	s.once.Do(func() { close(s.done) })
}

// Append records a new paragraph and hands it to the observer, if any.
// Blank paragraphs are ignored. It reports whether text was recorded.
func (d *Document) Append(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	d.paragraphs.Write(text)

	d.outMu.Lock()
	d.lastActive = time.Now()
	d.outMu.Unlock()

	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	if d.observer != nil {
		select {
		case d.observer.ch <- text:
		case <-d.observer.done:
		default:
		}
	}
	return true
}

// Latest returns the most recent paragraph.
func (d *Document) Latest() (string, bool) {
	return d.paragraphs.Last()
}

// Paragraphs returns a copy of the buffered paragraphs, oldest first.
func (d *Document) Paragraphs() []string {
	return d.paragraphs.Snapshot()
}

// Subscribe calls fn for each paragraph appended from now on. A document
// has at most one observer: subscribing displaces the previous one. The
// returned cancel func is safe to call more than once.
func (d *Document) Subscribe(fn func(text string)) (cancel func()) {
	sub := newSubscription()

	d.obsMu.Lock()
	if d.observer != nil {
		d.observer.close()
	}
	d.observer = sub
	d.obsMu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case text := <-sub.ch:
				select {
				case <-sub.done:
					return
				default:
				}
				fn(text)
			}
		}
	}()

	return func() {
		d.obsMu.Lock()
		if d.observer == sub {
			d.observer = nil
		}
		sub.close()
		d.obsMu.Unlock()
	}
}

// Observed reports whether an observer is subscribed.
func (d *Document) Observed() bool {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	return d.observer != nil
}

// SetClient registers a channel to receive events. If a previous client is
// connected it is kicked: its kick channel is closed so the websocket
// handler can close that connection. Returns a kick channel that will be
// closed if this client is itself later displaced.
func (d *Document) SetClient(ch chan Event) <-chan struct{} {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	if d.kickChan != nil {
		close(d.kickChan)
	}
	kick := make(chan struct{})
	d.kickChan = kick
	d.outChan = ch
	return kick
}

// ClearClient is called when a connection ends. It only updates state if
// ch is still the current owner, and always closes ch so the pump exits.
func (d *Document) ClearClient(ch chan Event) {
	d.outMu.Lock()
	if d.outChan == ch {
		d.outChan = nil
		d.kickChan = nil
	}
	d.outMu.Unlock()
	close(ch)
}

// Send delivers ev to the connected client, dropping it if there is none
// or the client is not keeping up.
func (d *Document) Send(ev Event) bool {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	if d.outChan == nil {
		return false
	}
	select {
	case d.outChan <- ev:
		return true
	default:
		return false
	}
}

// Done is closed when the document is closed.
func (d *Document) Done() <-chan struct{} {
	return d.done
}

func (d *Document) close() {
	d.closeOnce.Do(func() {
		d.obsMu.Lock()
		if d.observer != nil {
			d.observer.close()
			d.observer = nil
		}
		d.obsMu.Unlock()
		close(d.done)
	})
}

// Info returns a snapshot for listing.
func (d *Document) Info() Info {
	d.outMu.Lock()
	connected := d.outChan != nil
	lastActive := d.lastActive
	d.outMu.Unlock()
	return Info{
		ID:         d.ID,
		Name:       d.Name,
		CreatedAt:  d.CreatedAt,
		LastActive: lastActive,
		Connected:  connected,
		Observed:   d.Observed(),
		Paragraphs: d.paragraphs.Len(),
	}
}
