package power

import (
	"io"
	"log/slog"
	"testing"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		render, locked, searching bool
		want                      Depth
	}{
		{false, false, false, PowerDown},
		{false, false, true, Idle},
		{false, true, true, Run},
		{false, true, false, Run},
		{true, false, false, Run},
		{true, true, true, Run},
	}

	for _, test := range tests {
		if got := Select(test.render, test.locked, test.searching); got != test.want {
			t.Errorf("Select(%v, %v, %v) = %v, want %v",
				test.render, test.locked, test.searching, got, test.want)
		}
	}
}

func TestController(t *testing.T) {
	c := NewController(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !c.Awake() || c.Depth() != Run {
		t.Fatalf("new controller depth = %v, want run", c.Depth())
	}

	if d := c.Update(false, false, false); d != PowerDown || c.Awake() {
		t.Fatalf("Update = %v, awake = %v", d, c.Awake())
	}
	if d := c.Update(false, false, true); d != Idle || !c.Awake() {
		t.Fatalf("Update = %v, awake = %v", d, c.Awake())
	}
}
