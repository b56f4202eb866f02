package font

import (
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// FromTinyfont builds a column font by rasterizing every printable ASCII
// rune of f into a width by height cell. baseline is the cell row that
// tinyfont draws the text baseline on. Glyph pixels falling outside the cell
// are clipped.
func FromTinyfont(f tinyfont.Fonter, width, height int, baseline int16) (Font, error) {
	if width < 1 || width > 32 {
		return Font{}, fmt.Errorf("invalid cell width %d", width)
	}
	if height < 1 || height > 8 {
		return Font{}, fmt.Errorf("invalid cell height %d", height)
	}

	font := Font{
		Width:  width,
		Height: height,
		Table:  make([]uint8, NumGlyphs*width),
	}

	cell := columnCell{
		w:    int16(width),
		h:    int16(height),
		cols: make([]uint8, width),
	}

	for ch := byte(0x21); ch < 0x7f; ch++ {
		cell.clear()
		tinyfont.WriteLine(&cell, f, 0, baseline, string(rune(ch)), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		copy(font.Table[Offset(ch, width):], cell.cols)
	}

	return font, nil
}

// TomThumb returns a 4x6 font built from tinyfont's TomThumb.
func TomThumb() (Font, error) {
	return FromTinyfont(&tinyfont.TomThumb, 4, 6, 5)
}

// Picopixel returns a 5x7 font built from tinyfont's Picopixel.
func Picopixel() (Font, error) {
	return FromTinyfont(&tinyfont.Picopixel, 5, 7, 6)
}

// columnCell is a drivers.Displayer that records lit pixels as column
// bit-patterns.
type columnCell struct {
	w, h int16
	cols []uint8
}

var _ drivers.Displayer = (*columnCell)(nil)

func (c *columnCell) Size() (x, y int16) {
	return c.w, c.h
}

func (c *columnCell) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	if col.R|col.G|col.B == 0 {
		c.cols[x] &^= 1 << uint(y)
		return
	}
	c.cols[x] |= 1 << uint(y)
}

func (c *columnCell) Display() error {
	return nil
}

func (c *columnCell) clear() {
	for i := range c.cols {
		c.cols[i] = 0
	}
}
