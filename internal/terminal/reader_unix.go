// SPDX-License-Identifier: MIT
//go:build unix

package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

const pollTimeoutMs = 100

// EventReader is the single producer of terminal events. It polls the input
// for keys and listens for SIGWINCH.
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

// Run produces events until ctx is cancelled or the input reaches EOF. EOF
// queues an EventQuit. The event channel is closed on return.
func (r *EventReader) Run(ctx context.Context) error {
	defer close(r.events)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	fd := int(r.in.Fd())
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	buf := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			if !r.resize(ctx) {
				return nil
			}
		default:
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("failed to poll input: %w", err)
		}
		if n == 0 {
			continue
		}

		rn, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if rn == 0 {
			r.send(ctx, Event{Type: EventQuit})
			return nil
		}
		if !r.dispatch(ctx, buf[:rn]) {
			return nil
		}
	}
}
