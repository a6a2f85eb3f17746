// SPDX-License-Identifier: MIT
package terminal

import "unicode/utf8"

// EventType classifies terminal events.
type EventType uint8

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKey
)

func (t EventType) String() string {
	switch t {
	case EventQuit:
		return "quit"
	case EventResize:
		return "resize"
	case EventKey:
		return "key"
	default:
		return "none"
	}
}

// Event is a user or terminal event. Width and Height are set for
// EventResize, Rune for EventKey.
type Event struct {
	Type   EventType
	Width  int
	Height int
	Rune   rune
}

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// decodeKeys splits one read from stdin into events. q, Q, Ctrl-C and a lone
// ESC quit. Escape sequences (arrow keys, function keys) are consumed and
// ignored, as are invalid UTF-8 bytes.
func decodeKeys(buf []byte, emit func(Event)) {
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == keyCtrlC || b == 'q' || b == 'Q':
			emit(Event{Type: EventQuit})
			i++
		case b == keyEsc:
			if i+1 == len(buf) {
				emit(Event{Type: EventQuit})
				return
			}
			i += escapeLen(buf[i:])
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError || size > 1 {
				emit(Event{Type: EventKey, Rune: r})
			}
			i += size
		}
	}
}

// escapeLen returns the length of the escape sequence at the start of seq,
// which begins with ESC and has at least one more byte.
func escapeLen(seq []byte) int {
	switch seq[1] {
	case '[':
		// CSI: parameters and intermediates, then a final byte in 0x40-0x7e.
		for j := 2; j < len(seq); j++ {
			if seq[j] >= 0x40 && seq[j] <= 0x7e {
				return j + 1
			}
		}
		return len(seq)
	case 'O':
		// SS3: one more byte.
		return min(3, len(seq))
	default:
		// Alt+key.
		return 2
	}
}
