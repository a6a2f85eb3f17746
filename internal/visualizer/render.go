// SPDX-License-Identifier: MIT
package visualizer

import (
	"fmt"
	"unicode/utf8"

	"specterm/internal/canvas"
)

// RenderConfig holds the cells drawn for the filled and empty part of a bar.
type RenderConfig struct {
	Fill  canvas.Cell
	Empty canvas.Cell
}

// DefaultRenderConfig draws bars as reversed spaces over a black background.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Fill:  canvas.Cell{Rune: ' ', Style: canvas.Style{Fg: canvas.ColorDefault, Bg: canvas.ColorDefault, Attrs: canvas.AttrReverse}},
		Empty: canvas.Cell{Rune: ' ', Style: canvas.DefaultStyle.Background(canvas.ColorBlack)},
	}
}

// NewRenderConfig returns the default styles with the given fill and empty
// characters. Each must be exactly one rune.
func NewRenderConfig(fillChar, emptyChar string) (RenderConfig, error) {
	cfg := DefaultRenderConfig()
	fill, err := singleRune(fillChar)
	if err != nil {
		return cfg, fmt.Errorf("fill character: %w", err)
	}
	empty, err := singleRune(emptyChar)
	if err != nil {
		return cfg, fmt.Errorf("empty character: %w", err)
	}
	cfg.Fill.Rune = fill
	cfg.Empty.Rune = empty
	return cfg, nil
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("want a single character, got %q", s)
	}
	return r, nil
}

// BarRenderer draws one vertical bar per column, growing from the bottom row.
type BarRenderer struct {
	cfg RenderConfig
}

func NewBarRenderer(cfg RenderConfig) *BarRenderer {
	return &BarRenderer{cfg: cfg}
}

// Update is a canvas.UpdateFunc. A cell counted from the bottom is filled
// while its index is below the column's height. Columns without a height
// are drawn empty.
func (r *BarRenderer) Update(frame []canvas.Cell, width, height int, heights []float64) {
	for col := range width {
		h := 0.0
		if col < len(heights) {
			h = heights[col]
		}
		for i := range height {
			cell := r.cfg.Empty
			if float64(i) < h {
				cell = r.cfg.Fill
			}
			frame[(height-1-i)*width+col] = cell
		}
	}
}
