// SPDX-License-Identifier: MIT
/*
Package visualizer turns captured audio periods into terminal frames.

The Coordinator runs on the audio callback. Each period it:
- drains pending terminal events, applying resizes and quit requests
- mixes the interleaved period to mono and feeds the spectrum history
- computes one bar height per column
- forwards the heights to the optional transport and the Presenter

Because events are drained before the transform, a frame is always computed
for the most recent terminal size.

Thread Safety:
- Period and Resize must be called from one goroutine at a time
- Stats may be read from any goroutine
*/
package visualizer

import (
	"sync/atomic"

	"specterm/internal/analysis"
	"specterm/internal/audio"
	"specterm/internal/log"
	"specterm/internal/terminal"
	"specterm/internal/transport"
	"specterm/pkg/bitint"
)

// Options wires a Coordinator. Transport, Events and OnQuit are optional.
type Options struct {
	Spectrum  *analysis.Spectrum
	Presenter Presenter
	Transport transport.Transport
	Events    <-chan terminal.Event
	// OnQuit is called once, on the first quit event.
	OnQuit func()
}

// Stats counts what happened to the periods seen so far.
type Stats struct {
	Periods         uint64 // periods delivered to Period
	Rendered        uint64 // periods that produced a frame
	SkippedInvalid  uint64 // no channels or less than one full frame
	SkippedWarmup   uint64 // not enough samples since the last resize
	Resizes         uint64
	TransportErrors uint64
}

type Coordinator struct {
	spectrum  *analysis.Spectrum
	presenter Presenter
	transport transport.Transport
	events    <-chan terminal.Event
	onQuit    func()

	mono    []float32
	heights []float64
	rows    int

	quit atomic.Bool

	periods         atomic.Uint64
	rendered        atomic.Uint64
	skippedInvalid  atomic.Uint64
	skippedWarmup   atomic.Uint64
	resizes         atomic.Uint64
	transportErrors atomic.Uint64
}

// NewCoordinator creates a Coordinator. Call Resize with the initial
// terminal size before the first period.
func NewCoordinator(opts Options) *Coordinator {
	return &Coordinator{
		spectrum:  opts.Spectrum,
		presenter: opts.Presenter,
		transport: opts.Transport,
		events:    opts.Events,
		onQuit:    opts.OnQuit,
	}
}

// Period handles one audio period. It matches audio.PeriodFunc.
func (c *Coordinator) Period(interleaved []float32, channels int) {
	c.periods.Add(1)
	c.drainEvents()

	if channels <= 0 || len(interleaved) < channels {
		c.skippedInvalid.Add(1)
		return
	}

	c.mono = bitint.Grow(c.mono, len(interleaved)/channels)
	n := audio.MixToMono(c.mono, interleaved, channels)
	c.spectrum.Push(c.mono[:n])

	if !c.spectrum.Heights(c.rows, c.heights) {
		c.skippedWarmup.Add(1)
		return
	}

	if c.transport != nil {
		if err := c.transport.Send(c.heights); err != nil {
			c.transportErrors.Add(1)
		}
	}
	c.presenter.Present(c.heights)
	c.rendered.Add(1)
}

// drainEvents applies every queued event without blocking.
func (c *Coordinator) drainEvents() {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				return
			}
			c.handleEvent(ev)
		default:
			return
		}
	}
}

func (c *Coordinator) handleEvent(ev terminal.Event) {
	switch ev.Type {
	case terminal.EventQuit:
		if c.quit.CompareAndSwap(false, true) && c.onQuit != nil {
			c.onQuit()
		}
	case terminal.EventResize:
		c.Resize(ev.Width, ev.Height)
	}
}

// Resize resizes the presenter, rebuilds the spectrum for width columns and
// reallocates the height array.
func (c *Coordinator) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	c.presenter.Resize(width, height)
	c.spectrum.Resize(width)
	c.heights = make([]float64, width)
	c.rows = height
	c.resizes.Add(1)
	log.Debugf("Visualizer: resized to %dx%d", width, height)
}

// QuitRequested reports whether a quit event has been seen.
func (c *Coordinator) QuitRequested() bool {
	return c.quit.Load()
}

// Stats returns a snapshot of the period counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Periods:         c.periods.Load(),
		Rendered:        c.rendered.Load(),
		SkippedInvalid:  c.skippedInvalid.Load(),
		SkippedWarmup:   c.skippedWarmup.Load(),
		Resizes:         c.resizes.Load(),
		TransportErrors: c.transportErrors.Load(),
	}
}

// LogStats writes the counters to the debug log.
func (c *Coordinator) LogStats() {
	s := c.Stats()
	log.Debugf("Visualizer: %d periods, %d rendered, %d skipped (invalid), %d skipped (warm-up), %d resizes, %d transport errors",
		s.Periods, s.Rendered, s.SkippedInvalid, s.SkippedWarmup, s.Resizes, s.TransportErrors)
}
