package debounce

import "testing"

func TestPress(t *testing.T) {
	d := New()

	for i := 0; i < 3; i++ {
		d.Update(0x01)
		if d.State() != 0 {
			t.Fatalf("key pressed after %d samples", i+1)
		}
	}

	d.Update(0x01)
	if d.State() != 0x01 {
		t.Fatalf("state = 0x%02x after 4 samples, want 0x01", d.State())
	}

	if !d.TakePress(0x01) {
		t.Fatal("press edge not reported")
	}
	if d.TakePress(0x01) {
		t.Fatal("press edge reported twice")
	}

	for i := 0; i < 10; i++ {
		d.Update(0x01)
	}
	if d.TakePress(0xff) {
		t.Fatal("holding the key must not repeat the press")
	}
}

func TestBounce(t *testing.T) {
	d := New()

	samples := []uint8{1, 1, 0, 1, 1, 1, 0, 1, 0, 0}
	for i, s := range samples {
		d.Update(s)
		if d.State() != 0 {
			t.Fatalf("bouncing input changed state at sample %d", i)
		}
	}
	if d.TakePress(0x01) {
		t.Fatal("bouncing input reported a press")
	}
}

func TestRelease(t *testing.T) {
	d := New()
	for i := 0; i < 4; i++ {
		d.Update(0x02)
	}
	d.TakePress(0xff)

	for i := 0; i < 4; i++ {
		d.Update(0x00)
	}
	if d.State() != 0 {
		t.Fatalf("state = 0x%02x after release, want 0", d.State())
	}
	if d.TakePress(0xff) {
		t.Fatal("release must not report a press")
	}
}

func TestIndependentKeys(t *testing.T) {
	d := New()
	d.Update(0x01)
	d.Update(0x01)
	d.Update(0x03)
	d.Update(0x03)

	if d.State() != 0x01 {
		t.Fatalf("state = 0x%02x, want 0x01", d.State())
	}

	d.Update(0x03)
	d.Update(0x03)
	if d.State() != 0x03 {
		t.Fatalf("state = 0x%02x, want 0x03", d.State())
	}
	if !d.TakePress(0x01) || !d.TakePress(0x02) {
		t.Fatal("both keys should have pending presses")
	}
}
