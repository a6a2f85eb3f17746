// SPDX-License-Identifier: MIT
//go:build !unix

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// EventReader is the single producer of terminal events. Without SIGWINCH
// only keys are reported.
type EventReader struct {
	in     *os.File
	size   SizeFunc
	events chan Event
}

// NewEventReader reads keys from in and resolves resizes through size.
func NewEventReader(in *os.File, size SizeFunc, buffer int) *EventReader {
	return &EventReader{
		in:     in,
		size:   size,
		events: make(chan Event, max(buffer, 1)),
	}
}

// Run produces events until ctx is cancelled or the input reaches EOF.
func (r *EventReader) Run(ctx context.Context) error {
	defer close(r.events)

	type chunk struct {
		data []byte
		err  error
	}
	reads := make(chan chunk)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := r.in.Read(buf)
			c := chunk{data: append([]byte(nil), buf[:n]...), err: err}
			select {
			case reads <- c:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-reads:
			if len(c.data) > 0 && !r.dispatch(ctx, c.data) {
				return nil
			}
			if errors.Is(c.err, io.EOF) {
				r.send(ctx, Event{Type: EventQuit})
				return nil
			}
			if c.err != nil {
				return fmt.Errorf("failed to read input: %w", c.err)
			}
		}
	}
}
