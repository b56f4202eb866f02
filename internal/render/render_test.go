package render

import (
	"testing"

	"libdb.so/povglow/internal/font"
	"libdb.so/povglow/internal/rotsync"
	"libdb.so/povglow/internal/scroll"
)

type recorder []uint8

func (r *recorder) WriteColumn(col uint8) { *r = append(*r, col) }

func TestTickForwardsColumns(t *testing.T) {
	var out recorder
	d := New(Opts{Output: &out})

	d.Tick()
	if len(out) != 0 {
		t.Fatalf("idle tick wrote %v", out)
	}

	d.Critical(func(s *State) {
		s.Scroll.Init([]byte("I"), font.Font5x8(), scroll.Forward)
		s.Scroll.Activate()
	})
	if !d.Rendering() {
		t.Fatal("renderer not active after Critical")
	}

	for i := 0; i < 8; i++ {
		d.Tick()
	}

	want := font.Font5x8().Glyph('I')
	if len(out) != len(want) {
		t.Fatalf("wrote %d columns, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("column %d = 0x%02x, want 0x%02x", i, out[i], want[i])
		}
	}
	if d.Rendering() {
		t.Error("renderer still active")
	}
}

func TestTickDebouncesKeys(t *testing.T) {
	var raw uint8
	d := New(Opts{
		Output: OutputFunc(func(uint8) {}),
		Keys:   func() uint8 { return raw },
	})

	raw = 1
	for i := 0; i < 4; i++ {
		d.Tick()
	}

	select {
	case <-d.Updates():
	default:
		t.Fatal("no update after ticks")
	}

	var pressed bool
	d.Critical(func(s *State) { pressed = s.Keys.TakePress(1) })
	if !pressed {
		t.Fatal("press not registered")
	}
}

func TestRadialTick(t *testing.T) {
	cfg := rotsync.Config{LockoutTicks: 1, SearchTicks: 50, RatioShift: 2, MinInterval: 1, InitialInterval: 9}
	e := rotsync.New(cfg)
	e.SetPattern([]uint8{0x81, 0x42})

	var out recorder
	d := New(Opts{Output: &out, Sync: e})

	if got := d.RadialTick(10); got != 9 {
		t.Fatalf("interval before lock = %d, want 9", got)
	}

	d.PulseEdge(true)
	d.Tick()
	d.Tick()
	d.RadialTick(20)
	d.PulseEdge(false)
	d.PulseEdge(true)

	if !d.Locked() {
		t.Fatal("engine not locked")
	}
	s, ok := d.SyncState()
	if !ok || s.Interval != 5 {
		t.Fatalf("SyncState = %+v, %v", s, ok)
	}

	out = out[:0]
	d.RadialTick(5)
	d.RadialTick(5)
	if len(out) != 2 || out[0] != 0x81 || out[1] != 0x42 {
		t.Fatalf("radial columns = %v", out)
	}
}

func TestNoSync(t *testing.T) {
	var out recorder
	d := New(Opts{Output: &out})
	if d.RadialTick(1) != 0 || d.Locked() {
		t.Fatal("driver without sync reported sync work")
	}
	d.PulseEdge(true)
	if _, ok := d.SyncState(); ok {
		t.Fatal("SyncState reported an engine")
	}
	if len(out) != 0 {
		t.Fatalf("wrote %v", out)
	}
}
