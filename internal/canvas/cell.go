// SPDX-License-Identifier: MIT
package canvas

// Color is a terminal color. Values 0-255 select the 256-color palette,
// ColorDefault leaves the terminal's own color in place.
type Color int16

// ColorDefault selects the terminal default foreground or background.
const ColorDefault Color = -1

// Standard palette entries used by the renderer.
const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// Attr is a bitmask of text attributes.
type Attr uint8

const (
	AttrNone    Attr = 0
	AttrBold    Attr = 1 << 0
	AttrDim     Attr = 1 << 1
	AttrReverse Attr = 1 << 2
)

// Style is the display attribute of a cell.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// DefaultStyle renders with the terminal's default colors and no attributes.
var DefaultStyle = Style{Fg: ColorDefault, Bg: ColorDefault}

// Foreground returns a copy of s with the foreground color replaced.
func (s Style) Foreground(c Color) Style {
	s.Fg = c
	return s
}

// Background returns a copy of s with the background color replaced.
func (s Style) Background(c Color) Style {
	s.Bg = c
	return s
}

// Cell is a single character display unit. Cells are comparable with ==.
type Cell struct {
	Rune  rune
	Style Style
}

// Blank is the cell every frame is initialized to.
var Blank = Cell{Rune: ' ', Style: DefaultStyle}
