// SPDX-License-Identifier: MIT
package visualizer

import (
	"sync"
	"sync/atomic"
	"time"

	"specterm/internal/canvas"
	"specterm/internal/log"
	"specterm/pkg/bitint"
)

// Presenter turns height arrays into terminal output.
type Presenter interface {
	// Resize changes the grid the next frame is drawn on.
	Resize(width, height int)
	// Present draws heights. The slice is only valid during the call.
	Present(heights []float64)
	Close() error
}

const warnInterval = time.Second

// errorLimiter logs present failures at most once per interval.
type errorLimiter struct {
	interval   time.Duration
	now        func() time.Time
	last       time.Time
	suppressed int
}

func newErrorLimiter(interval time.Duration) *errorLimiter {
	return &errorLimiter{interval: interval, now: time.Now}
}

// report reports whether err was logged.
func (l *errorLimiter) report(err error) bool {
	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		l.suppressed++
		return false
	}
	log.Warnf("Render: present failed: %v (%d suppressed)", err, l.suppressed)
	l.last = now
	l.suppressed = 0
	return true
}

// SyncPresenter draws on the calling goroutine, which is the audio callback.
// A slow terminal stalls the callback.
type SyncPresenter struct {
	canvas *canvas.Canvas[[]float64]
	sink   canvas.Sink
	errs   *errorLimiter
}

// NewSyncPresenter draws with renderer onto sink.
func NewSyncPresenter(sink canvas.Sink, renderer *BarRenderer) *SyncPresenter {
	c := canvas.New[[]float64](0, 0)
	c.RegisterUpdate(renderer.Update)
	return &SyncPresenter{canvas: c, sink: sink, errs: newErrorLimiter(warnInterval)}
}

func (p *SyncPresenter) Resize(width, height int) {
	p.canvas.Resize(width, height)
}

func (p *SyncPresenter) Present(heights []float64) {
	p.canvas.Update(heights)
	if err := p.canvas.Present(p.sink); err != nil {
		p.errs.report(err)
	}
}

func (p *SyncPresenter) Close() error {
	return nil
}

// frame is one height array together with the grid it was computed for.
type frame struct {
	heights []float64
	width   int
	height  int
}

// frameSlot is a single-entry mailbox where a newer frame replaces one that
// has not been taken yet.
type frameSlot struct {
	mu      sync.Mutex
	pending frame
	full    bool
	ready   chan struct{}
}

func newFrameSlot() *frameSlot {
	return &frameSlot{ready: make(chan struct{}, 1)}
}

// put stores a copy of heights. It reports true when an untaken frame was
// replaced.
func (s *frameSlot) put(heights []float64, width, height int) (dropped bool) {
	s.mu.Lock()
	dropped = s.full
	s.pending.heights = bitint.Grow(s.pending.heights, len(heights))
	copy(s.pending.heights, heights)
	s.pending.width, s.pending.height = width, height
	s.full = true
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return dropped
}

// take swaps the pending frame into dst. It reports false when the slot is
// empty.
func (s *frameSlot) take(dst *frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return false
	}
	*dst, s.pending = s.pending, *dst
	s.full = false
	return true
}

// AsyncPresenter draws on its own goroutine, fed through a frameSlot. The
// audio callback never waits for the terminal; frames that arrive while one
// is being drawn replace each other and only the latest is drawn.
type AsyncPresenter struct {
	canvas *canvas.Canvas[[]float64]
	sink   canvas.Sink
	errs   *errorLimiter

	// Written only by the producer.
	width, height int

	slot    *frameSlot
	dropped atomic.Uint64
	drawn   atomic.Uint64

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAsyncPresenter starts the render goroutine.
func NewAsyncPresenter(sink canvas.Sink, renderer *BarRenderer) *AsyncPresenter {
	c := canvas.New[[]float64](0, 0)
	c.RegisterUpdate(renderer.Update)
	p := &AsyncPresenter{
		canvas: c,
		sink:   sink,
		errs:   newErrorLimiter(warnInterval),
		slot:   newFrameSlot(),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Resize records the grid for subsequent frames. The canvas itself is
// resized on the render goroutine just before the first such frame is drawn.
func (p *AsyncPresenter) Resize(width, height int) {
	p.width, p.height = width, height
}

func (p *AsyncPresenter) Present(heights []float64) {
	if p.slot.put(heights, p.width, p.height) {
		p.dropped.Add(1)
	}
}

func (p *AsyncPresenter) run() {
	defer p.wg.Done()
	var f frame
	for {
		select {
		case <-p.done:
			return
		case <-p.slot.ready:
		}
		if !p.slot.take(&f) {
			continue
		}
		p.canvas.Resize(f.width, f.height)
		p.canvas.Update(f.heights)
		if err := p.canvas.Present(p.sink); err != nil {
			p.errs.report(err)
		}
		p.drawn.Add(1)
	}
}

// Dropped returns the number of frames replaced before they were drawn.
func (p *AsyncPresenter) Dropped() uint64 {
	return p.dropped.Load()
}

// Drawn returns the number of frames presented.
func (p *AsyncPresenter) Drawn() uint64 {
	return p.drawn.Load()
}

// Close stops the render goroutine and waits for it. A frame still in the
// slot is discarded.
func (p *AsyncPresenter) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
		log.Debugf("Render: %d frames drawn, %d dropped", p.Drawn(), p.Dropped())
	})
	return nil
}

var (
	_ Presenter = (*SyncPresenter)(nil)
	_ Presenter = (*AsyncPresenter)(nil)
)
