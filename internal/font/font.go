// Package font implements the fixed-width column font store used by the
// renderer. A font is a flat table of column bit-patterns indexed by
// character code.
package font

import (
	"fmt"

	"github.com/pkg/errors"
)

// NumGlyphs is the number of glyphs a font table must hold: one per byte
// value.
const NumGlyphs = 256

// Font is an immutable column font. Bit 0 of each column drives the top LED.
type Font struct {
	// Width is the number of columns per glyph.
	Width int
	// Height is the number of rows a glyph may light.
	Height int
	// Table holds NumGlyphs*Width columns, glyph after glyph.
	Table []uint8
}

// Offset returns the index of the first column of ch's glyph in a table of
// the given width. The 5-column case avoids a multiplication.
func Offset(ch byte, width int) int {
	if width == 5 {
		return (int(ch) << 2) + int(ch)
	}
	return int(ch) * width
}

// Column returns column col of ch's glyph.
func (f Font) Column(ch byte, col int) uint8 {
	return f.Table[Offset(ch, f.Width)+col]
}

// Glyph returns the columns of ch's glyph. The returned slice aliases the
// table and must not be modified.
func (f Font) Glyph(ch byte) []uint8 {
	off := Offset(ch, f.Width)
	return f.Table[off : off+f.Width : off+f.Width]
}

// Validate checks that the table is complete.
func (f Font) Validate() error {
	if f.Width < 1 {
		return fmt.Errorf("invalid font width %d", f.Width)
	}
	if f.Height < 1 || f.Height > 8 {
		return fmt.Errorf("invalid font height %d", f.Height)
	}
	if len(f.Table) != NumGlyphs*f.Width {
		return fmt.Errorf("font table has %d columns, want %d", len(f.Table), NumGlyphs*f.Width)
	}
	return nil
}

// Covers checks that text is displayable with this font: it must not be
// empty and every byte up to the terminator must have a glyph. The renderer
// relies on this check having been done ahead of time.
func (f Font) Covers(text []byte) error {
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, "invalid font")
	}
	if len(text) == 0 || text[0] == 0 {
		return errors.New("empty message")
	}
	for i, ch := range text {
		if ch == 0 {
			break
		}
		if Offset(ch, f.Width)+f.Width > len(f.Table) {
			return fmt.Errorf("no glyph for byte 0x%02x at offset %d", ch, i)
		}
	}
	return nil
}

// ByName returns one of the built-in fonts.
func ByName(name string) (Font, error) {
	switch name {
	case "", "5x8":
		return Font5x8(), nil
	case "tomthumb":
		return TomThumb()
	case "picopixel":
		return Picopixel()
	default:
		return Font{}, fmt.Errorf("unknown font %q", name)
	}
}
