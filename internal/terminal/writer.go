// SPDX-License-Identifier: MIT
package terminal

import (
	"bufio"
	"io"
	"unicode/utf8"

	"specterm/internal/canvas"
)

const outputBufferSize = 128 * 1024

// Writer turns canvas output into ANSI escape sequences. Cursor moves to the
// position the cursor already occupies are dropped, and SGR is emitted only
// when the style differs from the previous cell.
type Writer struct {
	out io.Writer
	w   *bufio.Writer

	cursorCol   int
	cursorRow   int
	cursorValid bool

	lastStyle canvas.Style
	lastValid bool
}

var _ canvas.Sink = (*Writer)(nil)

// NewWriter buffers output to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, w: bufio.NewWriterSize(out, outputBufferSize)}
}

func (w *Writer) MoveTo(col, row int) error {
	if w.cursorValid && col == w.cursorCol && row == w.cursorRow {
		return nil
	}
	writeCursorPos(w.w, col, row)
	w.cursorCol, w.cursorRow = col, row
	w.cursorValid = true
	return nil
}

func (w *Writer) WriteStyled(r rune, s canvas.Style) error {
	if !w.lastValid || s != w.lastStyle {
		w.writeStyle(s)
		w.lastStyle = s
		w.lastValid = true
	}

	if r < utf8.RuneSelf {
		if r < ' ' || r == 0x7f {
			r = ' '
		}
		w.w.WriteByte(byte(r))
	} else {
		w.w.WriteRune(r)
	}
	w.cursorCol++
	return nil
}

// Flush resets the style and writes the buffered output. A write error
// invalidates the cached cursor and style.
func (w *Writer) Flush() error {
	if w.lastValid {
		w.w.Write(csiSGR0)
		w.lastValid = false
	}
	if err := w.w.Flush(); err != nil {
		w.invalidate()
		w.w.Reset(w.out) // drop the partial frame
		return err
	}
	return nil
}

// writeStyle emits one combined SGR sequence: reset, attributes, then colors.
func (w *Writer) writeStyle(s canvas.Style) {
	b := w.w
	b.Write(csi)
	b.WriteByte('0')
	if s.Attrs&canvas.AttrBold != 0 {
		b.WriteString(";1")
	}
	if s.Attrs&canvas.AttrDim != 0 {
		b.WriteString(";2")
	}
	if s.Attrs&canvas.AttrReverse != 0 {
		b.WriteString(";7")
	}
	if s.Fg != canvas.ColorDefault {
		b.WriteString(";38;5;")
		writeInt(b, int(s.Fg))
	}
	if s.Bg != canvas.ColorDefault {
		b.WriteString(";48;5;")
		writeInt(b, int(s.Bg))
	}
	b.WriteByte('m')
}

func (w *Writer) invalidate() {
	w.cursorValid = false
	w.lastValid = false
}

// Clear erases the screen and homes the cursor.
func (w *Writer) Clear() error {
	w.w.Write(csiSGR0)
	w.w.Write(csiClear)
	w.invalidate()
	return w.w.Flush()
}

func (w *Writer) writeRaw(seq ...[]byte) error {
	for _, s := range seq {
		w.w.Write(s)
	}
	w.invalidate()
	return w.w.Flush()
}
