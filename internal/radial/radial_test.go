package radial

import (
	"testing"

	"libdb.so/povglow/internal/font"
	"libdb.so/povglow/internal/scroll"
)

func TestText(t *testing.T) {
	f := font.Font5x8()
	dst := make([]uint8, 16)
	for i := range dst {
		dst[i] = 0xff
	}

	n := Text(dst, []byte("OK\x00"), f, scroll.Forward, 13)
	if n != 10 {
		t.Fatalf("Text drew %d columns, want 10", n)
	}

	want := make([]uint8, 16)
	glyphs := append(append([]uint8{}, f.Glyph('O')...), f.Glyph('K')...)
	for i, c := range glyphs {
		want[(13+i)%16] = c
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("column %d = 0x%02x, want 0x%02x", i, dst[i], want[i])
		}
	}
}

func TestTextCut(t *testing.T) {
	dst := make([]uint8, 8)
	if n := Text(dst, []byte("OK"), font.Font5x8(), scroll.Forward, 0); n != 8 {
		t.Fatalf("Text drew %d columns, want 8", n)
	}
}

func TestSpokes(t *testing.T) {
	dst := make([]uint8, 12)
	Spokes(dst, 3, 0xff)

	for i, c := range dst {
		want := uint8(0)
		if i%4 == 0 {
			want = 0xff
		}
		if c != want {
			t.Errorf("column %d = 0x%02x, want 0x%02x", i, c, want)
		}
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder(4)
	Ring(h.Back(), 0x18)

	if h.Front()[0] != 0 {
		t.Fatal("drawing into Back changed Front")
	}

	front := h.Swap()
	if front[0] != 0x18 || h.Front()[3] != 0x18 {
		t.Fatal("Swap did not publish the back buffer")
	}
	if h.Back()[0] != 0 {
		t.Fatal("Back should be the old front")
	}
}

func TestKindValidate(t *testing.T) {
	for _, k := range []Kind{TextKind, SpokesKind, RingKind} {
		if err := k.Validate(); err != nil {
			t.Errorf("%q: %v", k, err)
		}
	}
	if err := Kind("spiral").Validate(); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestRing(t *testing.T) {
	dst := NewPattern(6)
	Ring(dst, 0x81)
	for i, c := range dst {
		if c != 0x81 {
			t.Errorf("column %d = 0x%02x, want 0x81", i, c)
		}
	}
}

func TestTextOffsetNegative(t *testing.T) {
	f := font.Font5x8()
	dst := NewPattern(16)

	// -3 is the same position as 13.
	Text(dst, []byte("OK"), f, scroll.Forward, -3)
	if dst[13] != f.Column('O', 0) || dst[2] != f.Column('K', 0) {
		t.Errorf("negative offset laid out %v", dst)
	}
}
