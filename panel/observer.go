package panel

import (
	"context"
	"errors"
	"log"
	"time"
)

// autoAnalyzeTimeout bounds one automatic classification.
const autoAnalyzeTimeout = 30 * time.Second

// TextSource delivers new text as it appears in a host document.
type TextSource interface {
	Subscribe(fn func(text string)) (cancel func())
}

// Attach registers a text source. While auto-analyze is on, every new
// paragraph it delivers is classified.
func (p *Panel) Attach(id string, src TextSource) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	if cancel, ok := p.cancels[id]; ok {
		cancel()
		delete(p.cancels, id)
	}
	p.sources[id] = src
	if p.armed {
		p.cancels[id] = src.Subscribe(p.autoHandler(id))
	}
}

// Detach forgets a text source and stops observing it.
func (p *Panel) Detach(id string) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	if cancel, ok := p.cancels[id]; ok {
		cancel()
	}
	delete(p.cancels, id)
	delete(p.sources, id)
}

// Observing returns how many sources are being observed.
func (p *Panel) Observing() int {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	return len(p.cancels)
}

// rearm tears down every subscription and, when enabled, subscribes again.
func (p *Panel) rearm(enabled bool) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	for id, cancel := range p.cancels {
		cancel()
		delete(p.cancels, id)
	}
	p.armed = enabled
	if !enabled {
		return
	}
	for id, src := range p.sources {
		p.cancels[id] = src.Subscribe(p.autoHandler(id))
	}
}

func (p *Panel) autoHandler(id string) func(text string) {
	return func(text string) {
		ctx, cancel := context.WithTimeout(context.Background(), autoAnalyzeTimeout)
		defer cancel()

		res, err := p.Analyze(ctx, text)
		if err != nil {
			if !errors.Is(err, ErrEmptyText) {
				log.Printf("auto-analyze %s: %v", id, err)
			}
			return
		}

		p.hookMu.RLock()
		fn := p.onAuto
		p.hookMu.RUnlock()
		if fn != nil {
			fn(id, res)
		}
	}
}
