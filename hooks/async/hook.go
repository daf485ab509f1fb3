// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{ScanMissEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := nsmap.New(nsmap.Options{Hooks: hooks})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/nsmap"
)

// Hooks forwards events to inner on a worker pool. When the queue is full
// the event is dropped rather than blocking the map.
type Hooks struct {
	inner nsmap.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
	mu    sync.RWMutex // guards q against send-after-close
	done  bool
}

var _ nsmap.Hooks = (*Hooks)(nil)

func New(inner nsmap.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events fired afterwards
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.done = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.done {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Purged(t string, n int, r string) { h.try(func() { h.inner.Purged(t, n, r) }) }
func (h *Hooks) Kept(t, r string)                 { h.try(func() { h.inner.Kept(t, r) }) }
func (h *Hooks) Leaked(t string, p bool)          { h.try(func() { h.inner.Leaked(t, p) }) }
func (h *Hooks) ScanMiss(k string)                { h.try(func() { h.inner.ScanMiss(k) }) }
func (h *Hooks) CleanupError(t string, err error) { h.try(func() { h.inner.CleanupError(t, err) }) }
