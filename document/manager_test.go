package document

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager()
	d, err := m.Create("chapter-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if d.Name != "chapter-1" {
		t.Fatalf("expected name 'chapter-1', got %q", d.Name)
	}
	got, ok := m.Get(d.ID)
	if !ok || got.ID != d.ID {
		t.Fatal("Get did not return the created document")
	}
}

func TestCreateNameUniqueness(t *testing.T) {
	m := NewManager()
	m.Create("dup")
	if _, err := m.Create("dup"); err != ErrNameTaken {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestListOldestFirst(t *testing.T) {
	m := NewManager()
	a, _ := m.Create("a")
	time.Sleep(2 * time.Millisecond)
	m.Create("b")
	list := m.List()
	if len(list) != 2 || list[0].ID != a.ID {
		t.Fatalf("unexpected list order")
	}
}

func TestClose(t *testing.T) {
	m := NewManager()
	d, _ := m.Create("closeme")
	if err := m.Close(d.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := m.Get(d.ID); ok {
		t.Fatal("document still exists after Close")
	}
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed")
	}
	if err := m.Close(d.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAndLatest(t *testing.T) {
	d := newDocument("id", "doc")
	if _, ok := d.Latest(); ok {
		t.Fatal("expected no paragraph yet")
	}
	if d.Append("   ") {
		t.Fatal("blank paragraph recorded")
	}
	d.Append("first")
	d.Append("  second  ")
	got, ok := d.Latest()
	if !ok || got != "second" {
		t.Fatalf("expected 'second', got %q", got)
	}
}

func TestParagraphBufferBounded(t *testing.T) {
	d := newDocument("id", "doc")
	for i := 0; i < maxParagraphs+10; i++ {
		d.Append(fmt.Sprintf("p%d", i))
	}
	ps := d.Paragraphs()
	if len(ps) != maxParagraphs {
		t.Fatalf("expected %d paragraphs, got %d", maxParagraphs, len(ps))
	}
	if ps[0] != "p10" {
		t.Fatalf("expected oldest kept to be p10, got %q", ps[0])
	}
}

func TestSubscribeReceivesNewText(t *testing.T) {
	d := newDocument("id", "doc")
	got := make(chan string, 4)
	cancel := d.Subscribe(func(text string) { got <- text })
	defer cancel()

	d.Append("hello")
	select {
	case text := <-got:
		if text != "hello" {
			t.Fatalf("expected 'hello', got %q", text)
		}
	case <-time.After(time.Second):
		t.Fatal("observer not called")
	}
}

func TestSubscribeDisplacesPrevious(t *testing.T) {
	d := newDocument("id", "doc")
	first := make(chan string, 4)
	second := make(chan string, 4)
	cancelFirst := d.Subscribe(func(text string) { first <- text })
	d.Subscribe(func(text string) { second <- text })

	d.Append("once")
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("new observer not called")
	}
	select {
	case text := <-first:
		t.Fatalf("displaced observer still called with %q", text)
	case <-time.After(50 * time.Millisecond):
	}

	// Cancelling the displaced subscription must not detach the new one.
	cancelFirst()
	if !d.Observed() {
		t.Fatal("stale cancel removed current observer")
	}
}

func TestCancelStopsObserver(t *testing.T) {
	d := newDocument("id", "doc")
	got := make(chan string, 4)
	cancel := d.Subscribe(func(text string) { got <- text })
	cancel()
	cancel()

	d.Append("after")
	select {
	case text := <-got:
		t.Fatalf("cancelled observer called with %q", text)
	case <-time.After(50 * time.Millisecond):
	}
	if d.Observed() {
		t.Fatal("document still observed after cancel")
	}
}

func TestCancelDropsQueuedParagraphs(t *testing.T) {
	d := newDocument("id", "doc")
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	var mu sync.Mutex
	calls := 0
	cancel := d.Subscribe(func(text string) {
		mu.Lock()
		calls++
		mu.Unlock()
		select {
		case entered <- struct{}{}:
		default:
		}
		<-gate
	})

	d.Append("first")
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("observer never called")
	}
	d.Append("second")
	d.Append("third")
	d.Append("fourth")

	cancel()
	close(gate)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected only the in-flight call, got %d calls", calls)
	}
}

func TestResubscribeStopsPreviousQueue(t *testing.T) {
	d := newDocument("id", "doc")
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	var mu sync.Mutex
	oldCalls := 0
	d.Subscribe(func(text string) {
		mu.Lock()
		oldCalls++
		mu.Unlock()
		select {
		case entered <- struct{}{}:
		default:
		}
		<-gate
	})
	d.Append("first")
	<-entered
	d.Append("queued")

	got := make(chan string, 4)
	cancel := d.Subscribe(func(text string) { got <- text })
	defer cancel()
	close(gate)

	d.Append("new")
	select {
	case text := <-got:
		if text != "new" {
			t.Fatalf("new observer got %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("new observer never called")
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if oldCalls != 1 {
		t.Fatalf("displaced observer kept firing: %d calls", oldCalls)
	}
}

func TestClientDisplacement(t *testing.T) {
	d := newDocument("id", "doc")
	first := make(chan Event, 1)
	kick := d.SetClient(first)
	second := make(chan Event, 1)
	d.SetClient(second)

	select {
	case <-kick:
	default:
		t.Fatal("first client not kicked")
	}

	// Displaced client clearing must not detach the new one.
	d.ClearClient(first)
	if !d.Send(Event{Type: "notice"}) {
		t.Fatal("send to current client failed")
	}
	if ev := <-second; ev.Type != "notice" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if !d.Info().Connected {
		t.Fatal("expected connected")
	}
	d.ClearClient(second)
	if d.Send(Event{Type: "notice"}) {
		t.Fatal("send succeeded with no client")
	}
}

func TestBroadcast(t *testing.T) {
	m := NewManager()
	a, _ := m.Create("a")
	b, _ := m.Create("b")
	ca := make(chan Event, 1)
	cb := make(chan Event, 1)
	a.SetClient(ca)
	b.SetClient(cb)

	m.Broadcast(Event{Type: "notice", Message: "hi"})
	if (<-ca).Message != "hi" || (<-cb).Message != "hi" {
		t.Fatal("broadcast not delivered to every client")
	}
}
