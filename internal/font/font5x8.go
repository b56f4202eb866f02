package font

// Font5x8 returns the built-in 5x8 font. Printable ASCII and the common
// CP437 umlauts have glyphs; every other byte is blank. Every call returns
// its own copy of the table.
func Font5x8() Font {
	table := make([]uint8, 0, NumGlyphs*5)
	for _, glyph := range font5x8 {
		table = append(table, glyph[:]...)
	}
	return Font{
		Width:  5,
		Height: 8,
		Table:  table,
	}
}

var font5x8 = [NumGlyphs][5]uint8{
	' ':  {0x00, 0x00, 0x00, 0x00, 0x00},
	'!':  {0x00, 0x00, 0x5f, 0x00, 0x00},
	'"':  {0x00, 0x07, 0x00, 0x07, 0x00},
	'#':  {0x14, 0x7f, 0x14, 0x7f, 0x14},
	'$':  {0x24, 0x2a, 0x7f, 0x2a, 0x12},
	'%':  {0x23, 0x13, 0x08, 0x64, 0x62},
	'&':  {0x36, 0x49, 0x55, 0x22, 0x50},
	'\'': {0x00, 0x05, 0x03, 0x00, 0x00},
	'(':  {0x00, 0x1c, 0x22, 0x41, 0x00},
	')':  {0x00, 0x41, 0x22, 0x1c, 0x00},
	'*':  {0x08, 0x2a, 0x1c, 0x2a, 0x08},
	'+':  {0x08, 0x08, 0x3e, 0x08, 0x08},
	',':  {0x00, 0x50, 0x30, 0x00, 0x00},
	'-':  {0x08, 0x08, 0x08, 0x08, 0x08},
	'.':  {0x00, 0x60, 0x60, 0x00, 0x00},
	'/':  {0x20, 0x10, 0x08, 0x04, 0x02},
	'0':  {0x3e, 0x51, 0x49, 0x45, 0x3e},
	'1':  {0x00, 0x42, 0x7f, 0x40, 0x00},
	'2':  {0x42, 0x61, 0x51, 0x49, 0x46},
	'3':  {0x21, 0x41, 0x45, 0x4b, 0x31},
	'4':  {0x18, 0x14, 0x12, 0x7f, 0x10},
	'5':  {0x27, 0x45, 0x45, 0x45, 0x39},
	'6':  {0x3c, 0x4a, 0x49, 0x49, 0x30},
	'7':  {0x01, 0x71, 0x09, 0x05, 0x03},
	'8':  {0x36, 0x49, 0x49, 0x49, 0x36},
	'9':  {0x06, 0x49, 0x49, 0x29, 0x1e},
	':':  {0x00, 0x36, 0x36, 0x00, 0x00},
	';':  {0x00, 0x56, 0x36, 0x00, 0x00},
	'<':  {0x08, 0x14, 0x22, 0x41, 0x00},
	'=':  {0x14, 0x14, 0x14, 0x14, 0x14},
	'>':  {0x00, 0x41, 0x22, 0x14, 0x08},
	'?':  {0x02, 0x01, 0x51, 0x09, 0x06},
	'@':  {0x32, 0x49, 0x79, 0x41, 0x3e},
	'A':  {0x7e, 0x11, 0x11, 0x11, 0x7e},
	'B':  {0x7f, 0x49, 0x49, 0x49, 0x36},
	'C':  {0x3e, 0x41, 0x41, 0x41, 0x22},
	'D':  {0x7f, 0x41, 0x41, 0x22, 0x1c},
	'E':  {0x7f, 0x49, 0x49, 0x49, 0x41},
	'F':  {0x7f, 0x09, 0x09, 0x09, 0x01},
	'G':  {0x3e, 0x41, 0x49, 0x49, 0x7a},
	'H':  {0x7f, 0x08, 0x08, 0x08, 0x7f},
	'I':  {0x00, 0x41, 0x7f, 0x41, 0x00},
	'J':  {0x20, 0x40, 0x41, 0x3f, 0x01},
	'K':  {0x7f, 0x08, 0x14, 0x22, 0x41},
	'L':  {0x7f, 0x40, 0x40, 0x40, 0x40},
	'M':  {0x7f, 0x02, 0x0c, 0x02, 0x7f},
	'N':  {0x7f, 0x04, 0x08, 0x10, 0x7f},
	'O':  {0x3e, 0x41, 0x41, 0x41, 0x3e},
	'P':  {0x7f, 0x09, 0x09, 0x09, 0x06},
	'Q':  {0x3e, 0x41, 0x51, 0x21, 0x5e},
	'R':  {0x7f, 0x09, 0x19, 0x29, 0x46},
	'S':  {0x46, 0x49, 0x49, 0x49, 0x31},
	'T':  {0x01, 0x01, 0x7f, 0x01, 0x01},
	'U':  {0x3f, 0x40, 0x40, 0x40, 0x3f},
	'V':  {0x1f, 0x20, 0x40, 0x20, 0x1f},
	'W':  {0x3f, 0x40, 0x38, 0x40, 0x3f},
	'X':  {0x63, 0x14, 0x08, 0x14, 0x63},
	'Y':  {0x07, 0x08, 0x70, 0x08, 0x07},
	'Z':  {0x61, 0x51, 0x49, 0x45, 0x43},
	'[':  {0x00, 0x7f, 0x41, 0x41, 0x00},
	'\\': {0x02, 0x04, 0x08, 0x10, 0x20},
	']':  {0x00, 0x41, 0x41, 0x7f, 0x00},
	'^':  {0x04, 0x02, 0x01, 0x02, 0x04},
	'_':  {0x40, 0x40, 0x40, 0x40, 0x40},
	'`':  {0x00, 0x01, 0x02, 0x04, 0x00},
	'a':  {0x20, 0x54, 0x54, 0x54, 0x78},
	'b':  {0x7f, 0x48, 0x44, 0x44, 0x38},
	'c':  {0x38, 0x44, 0x44, 0x44, 0x20},
	'd':  {0x38, 0x44, 0x44, 0x48, 0x7f},
	'e':  {0x38, 0x54, 0x54, 0x54, 0x18},
	'f':  {0x08, 0x7e, 0x09, 0x01, 0x02},
	'g':  {0x0c, 0x52, 0x52, 0x52, 0x3e},
	'h':  {0x7f, 0x08, 0x04, 0x04, 0x78},
	'i':  {0x00, 0x44, 0x7d, 0x40, 0x00},
	'j':  {0x20, 0x40, 0x44, 0x3d, 0x00},
	'k':  {0x7f, 0x10, 0x28, 0x44, 0x00},
	'l':  {0x00, 0x41, 0x7f, 0x40, 0x00},
	'm':  {0x7c, 0x04, 0x18, 0x04, 0x78},
	'n':  {0x7c, 0x08, 0x04, 0x04, 0x78},
	'o':  {0x38, 0x44, 0x44, 0x44, 0x38},
	'p':  {0x7c, 0x14, 0x14, 0x14, 0x08},
	'q':  {0x08, 0x14, 0x14, 0x18, 0x7c},
	'r':  {0x7c, 0x08, 0x04, 0x04, 0x08},
	's':  {0x48, 0x54, 0x54, 0x54, 0x20},
	't':  {0x04, 0x3f, 0x44, 0x40, 0x20},
	'u':  {0x3c, 0x40, 0x40, 0x20, 0x7c},
	'v':  {0x1c, 0x20, 0x40, 0x20, 0x1c},
	'w':  {0x3c, 0x40, 0x30, 0x40, 0x3c},
	'x':  {0x44, 0x28, 0x10, 0x28, 0x44},
	'y':  {0x0c, 0x50, 0x50, 0x50, 0x3c},
	'z':  {0x44, 0x64, 0x54, 0x4c, 0x44},
	'{':  {0x00, 0x08, 0x36, 0x41, 0x00},
	'|':  {0x00, 0x00, 0x7f, 0x00, 0x00},
	'}':  {0x00, 0x41, 0x36, 0x08, 0x00},
	'~':  {0x08, 0x04, 0x08, 0x10, 0x08},

	// CP437
	0x81: {0x3c, 0x41, 0x40, 0x21, 0x7c}, // ü
	0x84: {0x20, 0x55, 0x54, 0x55, 0x78}, // ä
	0x8e: {0x79, 0x14, 0x12, 0x14, 0x79}, // Ä
	0x94: {0x38, 0x45, 0x44, 0x45, 0x38}, // ö
	0x99: {0x3d, 0x42, 0x42, 0x42, 0x3d}, // Ö
	0x9a: {0x3d, 0x40, 0x40, 0x40, 0x3d}, // Ü
	0xe1: {0x7e, 0x01, 0x49, 0x56, 0x20}, // ß
}
