// SPDX-License-Identifier: MIT
/*
Package canvas implements a double-buffered terminal grid with cell-level
diffing.

A Canvas owns two frames of width*height cells. The installed update function
writes the back frame; Present emits only the cells that differ from the
front frame, then swaps the two. After a resize every cell is emitted once,
because indices of the old frames no longer map to the same screen positions.

The canvas is generic over the per-call payload handed to the update function
and knows nothing about what that payload means.

Thread Safety:
- None. A Canvas must be driven from a single goroutine.
*/
package canvas

// Sink receives the output of Present.
type Sink interface {
	MoveTo(col, row int) error
	WriteStyled(r rune, s Style) error
	Flush() error
}

// UpdateFunc writes the back frame. frame is row-major: frame[row*width+col].
type UpdateFunc[T any] func(frame []Cell, width, height int, data T)

// Canvas is a diffing grid parameterized by the update payload type T.
type Canvas[T any] struct {
	frames  [2][]Cell
	front   int // index into frames of the last presented frame
	width   int
	height  int
	resized bool
	update  UpdateFunc[T]
}

// New creates a canvas of the given size. The first Present repaints fully.
func New[T any](width, height int) *Canvas[T] {
	c := &Canvas[T]{}
	c.Resize(width, height)
	return c
}

// Size returns the current dimensions in cells.
func (c *Canvas[T]) Size() (width, height int) {
	return c.width, c.height
}

// Resized reports whether the next Present will repaint every cell.
func (c *Canvas[T]) Resized() bool {
	return c.resized
}

// Resize reallocates both frames to width*height blank cells and schedules a
// full repaint. Resizing to the current size does nothing. Negative
// dimensions are treated as zero.
func (c *Canvas[T]) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	if c.frames[0] != nil && width == c.width && height == c.height {
		return
	}

	size := width * height
	for i := range c.frames {
		frame := make([]Cell, size)
		for j := range frame {
			frame[j] = Blank
		}
		c.frames[i] = frame
	}

	c.width = width
	c.height = height
	c.resized = true
}

// RegisterUpdate installs fn as the update function, replacing any previous one.
func (c *Canvas[T]) RegisterUpdate(fn UpdateFunc[T]) {
	c.update = fn
}

// Update runs the update function against the back frame. Without an update
// function installed it does nothing.
func (c *Canvas[T]) Update(data T) {
	if c.update == nil {
		return
	}
	c.update(c.back(), c.width, c.height, data)
}

// Present writes dirty cells to sink, flushes it and swaps the frames.
//
// A cell is dirty when it differs between the front and back frame, or when
// the canvas was resized since the last Present. On a sink error the frames
// are left untouched and the resized flag is forced on, so the next Present
// repaints the whole grid.
func (c *Canvas[T]) Present(sink Sink) error {
	front := c.frames[c.front]
	back := c.back()

	for row := range c.height {
		rowStart := row * c.width
		for col := range c.width {
			idx := rowStart + col
			cell := back[idx]
			if !c.resized && cell == front[idx] {
				continue
			}
			if err := sink.MoveTo(col, row); err != nil {
				c.resized = true
				return err
			}
			if err := sink.WriteStyled(cell.Rune, cell.Style); err != nil {
				c.resized = true
				return err
			}
		}
	}

	c.resized = false
	if err := sink.Flush(); err != nil {
		c.resized = true
		return err
	}

	c.front = 1 - c.front

	// The new back frame is two presents old; bring it level with what is on
	// screen so the next diff only sees what the next Update changes.
	copy(c.frames[1-c.front], c.frames[c.front])
	return nil
}

func (c *Canvas[T]) back() []Cell {
	return c.frames[1-c.front]
}
