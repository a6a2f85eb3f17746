// SPDX-License-Identifier: MIT
//go:build unix

package terminal

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func newPipeReader(t *testing.T, size SizeFunc) (*EventReader, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return NewEventReader(r, size, DefaultEventBuffer), w
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestEventReaderKeysAndEOF(t *testing.T) {
	reader, w := newPipeReader(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- reader.Run(ctx) }()

	if _, err := w.Write([]byte("xq")); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, reader.Events()); ev.Type != EventKey || ev.Rune != 'x' {
		t.Errorf("first event = %+v, want key x", ev)
	}
	if ev := nextEvent(t, reader.Events()); ev.Type != EventQuit {
		t.Errorf("second event = %+v, want quit", ev)
	}

	w.Close()
	if ev := nextEvent(t, reader.Events()); ev.Type != EventQuit {
		t.Errorf("EOF event = %+v, want quit", ev)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after EOF")
	}
	if _, ok := <-reader.Events(); ok {
		t.Error("event channel should be closed after Run returns")
	}
}

func TestEventReaderStopsOnCancel(t *testing.T) {
	reader, _ := newPipeReader(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- reader.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEventReaderResize(t *testing.T) {
	calls := 0
	size := func() (int, int, error) {
		calls++
		if calls == 2 {
			return 0, 0, errors.New("no tty")
		}
		return 132, 43, nil
	}
	reader, _ := newPipeReader(t, size)
	ctx := context.Background()

	if !reader.resize(ctx) {
		t.Fatal("resize() = false")
	}
	ev := nextEvent(t, reader.Events())
	if ev.Type != EventResize || ev.Width != 132 || ev.Height != 43 {
		t.Errorf("resize event = %+v, want 132x43", ev)
	}

	if !reader.resize(ctx) {
		t.Fatal("resize() with a size error should keep running")
	}
	select {
	case ev := <-reader.Events():
		t.Errorf("unexpected event after size error: %+v", ev)
	default:
	}
}

func TestTerminalRequiresTTY(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	term := NewWithFiles(r, w)
	if err := term.Init(); err == nil {
		t.Error("Init() on a pipe should fail")
	}
	term.Fini() // no-op without Init
	if _, _, err := term.Size(); err == nil {
		t.Error("Size() on a pipe should fail")
	}
}
