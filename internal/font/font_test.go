package font

import "testing"

func TestOffset(t *testing.T) {
	for _, width := range []int{1, 3, 5, 8} {
		for ch := 0; ch < NumGlyphs; ch++ {
			if got, want := Offset(byte(ch), width), ch*width; got != want {
				t.Fatalf("Offset(0x%02x, %d) = %d, want %d", ch, width, got, want)
			}
		}
	}
}

func TestFont5x8(t *testing.T) {
	f := Font5x8()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		ch   byte
		want []uint8
	}{
		{' ', []uint8{0x00, 0x00, 0x00, 0x00, 0x00}},
		{'O', []uint8{0x3e, 0x41, 0x41, 0x41, 0x3e}},
		{'K', []uint8{0x7f, 0x08, 0x14, 0x22, 0x41}},
		{0x00, []uint8{0x00, 0x00, 0x00, 0x00, 0x00}},
		{0xff, []uint8{0x00, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, test := range tests {
		got := f.Glyph(test.ch)
		if len(got) != len(test.want) {
			t.Fatalf("glyph 0x%02x has %d columns", test.ch, len(got))
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("glyph 0x%02x column %d = 0x%02x, want 0x%02x", test.ch, i, got[i], test.want[i])
			}
			if c := f.Column(test.ch, i); c != got[i] {
				t.Errorf("Column(0x%02x, %d) = 0x%02x, Glyph has 0x%02x", test.ch, i, c, got[i])
			}
		}
	}
}

func TestCovers(t *testing.T) {
	f := Font5x8()

	tests := []struct {
		name    string
		text    []byte
		wantErr bool
	}{
		{"ascii", []byte("Fuck Yeah"), false},
		{"terminated", []byte("TCB\x00garbage"), false},
		{"cp437", []byte("T\x81echli"), false},
		{"empty", nil, true},
		{"only terminator", []byte{0}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := f.Covers(test.text)
			if (err != nil) != test.wantErr {
				t.Errorf("Covers(%q) error = %v, wantErr %v", test.text, err, test.wantErr)
			}
		})
	}

	short := Font{Width: 5, Height: 8, Table: make([]uint8, 10)}
	if err := short.Covers([]byte("A")); err == nil {
		t.Error("Covers on a truncated table should fail")
	}
}

func TestFromTinyfont(t *testing.T) {
	for _, name := range []string{"tomthumb", "picopixel"} {
		t.Run(name, func(t *testing.T) {
			f, err := ByName(name)
			if err != nil {
				t.Fatalf("ByName: %v", err)
			}
			if err := f.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}

			var lit bool
			for _, c := range f.Glyph('A') {
				if c != 0 {
					lit = true
				}
				if c>>uint(f.Height) != 0 {
					t.Errorf("column 0x%02x lights rows outside the cell", c)
				}
			}
			if !lit {
				t.Error("glyph 'A' is blank")
			}

			for _, c := range f.Glyph(' ') {
				if c != 0 {
					t.Errorf("space glyph has lit column 0x%02x", c)
				}
			}
		})
	}

	if _, err := ByName("comic-sans"); err == nil {
		t.Error("ByName should reject unknown fonts")
	}
}

func TestFont5x8Copy(t *testing.T) {
	a := Font5x8()
	want := a.Column('A', 0)

	a.Table[Offset('A', 5)] = ^want
	if got := Font5x8().Column('A', 0); got != want {
		t.Fatalf("writing one table changed the built-in font: 0x%02x, want 0x%02x", got, want)
	}
}
