// SPDX-License-Identifier: MIT
package terminal

import (
	"context"

	"specterm/internal/log"
)

// SizeFunc reports the current terminal size.
type SizeFunc func() (width, height int, err error)

// DefaultEventBuffer is the capacity of the event channel.
const DefaultEventBuffer = 16

// Events returns the receive side of the event channel. It is closed when Run
// returns.
func (r *EventReader) Events() <-chan Event {
	return r.events
}

// send delivers ev, blocking until there is room or ctx is done.
func (r *EventReader) send(ctx context.Context, ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// resize queries the terminal size and queues an EventResize.
func (r *EventReader) resize(ctx context.Context) bool {
	if r.size == nil {
		return true
	}
	w, h, err := r.size()
	if err != nil {
		log.Warnf("Terminal: resize ignored: %v", err)
		return true
	}
	return r.send(ctx, Event{Type: EventResize, Width: w, Height: h})
}

// dispatch decodes one read and queues the resulting events. It reports
// false once ctx is done.
func (r *EventReader) dispatch(ctx context.Context, buf []byte) bool {
	ok := true
	decodeKeys(buf, func(ev Event) {
		if ok {
			ok = r.send(ctx, ev)
		}
	})
	return ok
}
