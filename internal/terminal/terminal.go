// SPDX-License-Identifier: MIT
//
// Package terminal owns the interactive terminal: raw mode, the alternate
// screen, an ANSI sink for the canvas and the keyboard/resize event stream.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// Terminal switches the controlling terminal into raw mode on the alternate
// screen and restores it on Fini.
type Terminal struct {
	in  *os.File
	out *os.File

	writer *Writer

	mu       sync.Mutex
	oldState *term.State
	active   bool
}

// New returns a Terminal bound to stdin and stdout.
func New() *Terminal {
	return NewWithFiles(os.Stdin, os.Stdout)
}

// NewWithFiles binds a Terminal to the given input and output files.
func NewWithFiles(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out, writer: NewWriter(out)}
}

// Init enters raw mode, switches to the alternate screen, disables auto-wrap,
// hides the cursor and clears the screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		return nil
	}

	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = old
	t.active = true

	if err := t.writer.writeRaw(csiAltScreenEnter, csiAutoWrapOff, csiCursorHide, csiSGR0, csiClear); err != nil {
		t.restoreLocked()
		return fmt.Errorf("failed to set up screen: %w", err)
	}
	return nil
}

// Fini undoes Init. It is safe to call more than once and without a prior
// successful Init.
func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	_ = t.writer.writeRaw(csiSGR0, csiClear, csiCursorShow, csiAutoWrapOn, csiAltScreenExit)
	t.restoreLocked()
}

func (t *Terminal) restoreLocked() {
	if t.oldState != nil {
		_ = term.Restore(int(t.in.Fd()), t.oldState)
		t.oldState = nil
	}
	t.active = false
}

// Size reports the output terminal's size in cells.
func (t *Terminal) Size() (width, height int, err error) {
	width, height, err = term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	return max(width, 0), max(height, 0), nil
}

// Writer returns the canvas sink writing to the terminal.
func (t *Terminal) Writer() *Writer {
	return t.writer
}

// Input returns the file events are read from.
func (t *Terminal) Input() *os.File {
	return t.in
}
