package povglow

import (
	"strings"
	"testing"
	"time"

	"libdb.so/povglow/internal/radial"
	"libdb.so/povglow/internal/rotsync"
	"libdb.so/povglow/internal/scroll"
	"periph.io/x/conn/v3/physic"
)

const sampleConfig = `
mode = "radial"
tick_rate = "1kHz"
direction = "backward"
font = "tomthumb"
messages = ["HELLO", "WORLD"]

[output]
kind = "serial"
device = "/dev/ttyACM0"

[input]
button = "GPIO17"
sensor = "GPIO27"

[sync]
lockout = "5ms"
search = "500ms"
columns = 128

[radial]
pattern = "spokes"
spokes = 6
mask = 0x81
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.Mode != RadialMode {
		t.Errorf("mode = %q, want %q", cfg.Mode, RadialMode)
	}
	if cfg.TickRate.Hertz() != 1000 {
		t.Errorf("tick_rate = %v, want 1kHz", cfg.TickRate)
	}
	if cfg.Direction != scroll.Backward {
		t.Errorf("direction = %v, want backward", cfg.Direction)
	}
	if cfg.Font != "tomthumb" {
		t.Errorf("font = %q, want tomthumb", cfg.Font)
	}
	if len(cfg.Messages) != 2 || cfg.Messages[1] != "WORLD" {
		t.Errorf("messages = %q", cfg.Messages)
	}
	if cfg.Output.Kind != SerialOutput || cfg.Output.Device != "/dev/ttyACM0" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if time.Duration(cfg.Sync.Lockout) != 5*time.Millisecond {
		t.Errorf("lockout = %v, want 5ms", time.Duration(cfg.Sync.Lockout))
	}
	if cfg.Sync.Columns != 128 {
		t.Errorf("columns = %d, want 128", cfg.Sync.Columns)
	}
	if cfg.Radial.Pattern != radial.SpokesKind || cfg.Radial.Spokes != 6 || cfg.Radial.Mask != 0x81 {
		t.Errorf("radial = %+v", cfg.Radial)
	}

	// Unset fields take their defaults.
	if cfg.Output.Baud != 460800 {
		t.Errorf("baud = %d, want the default", cfg.Output.Baud)
	}
	if cfg.Sync.CounterRate.Hertz() != 1_000_000 {
		t.Errorf("counter_rate = %v, want the default", cfg.Sync.CounterRate)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []string{
		`tick_rate = "fast"`,
		`direction = "sideways"`,
		`[input]
auto_press = "soon"`,
	}

	for _, test := range tests {
		if _, err := ParseConfig(strings.NewReader(test)); err == nil {
			t.Errorf("ParseConfig(%q) succeeded", test)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
	if cfg.Mode != ScrollMode || cfg.Output.Kind != TerminalOutput {
		t.Errorf("default mode %q output %q", cfg.Mode, cfg.Output.Kind)
	}

	want := rotsync.DefaultConfig()
	if got := cfg.Sync.EngineConfig(cfg.TickRate.Hertz()); got != want {
		t.Errorf("EngineConfig = %+v, want %+v", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "spin" }},
		{"tick rate", func(c *Config) { c.TickRate = TOMLFrequency(physic.MilliHertz) }},
		{"messages", func(c *Config) { c.Messages = nil }},
		{"output kind", func(c *Config) { c.Output.Kind = "hdmi" }},
		{"gpio pins", func(c *Config) { c.Output.Kind = GPIOOutput }},
		{"serial device", func(c *Config) { c.Output.Kind = SerialOutput }},
		{"button", func(c *Config) { c.Input.AutoPress = 0 }},
		{"sensor", func(c *Config) { c.Mode = RadialMode }},
		{"columns", func(c *Config) {
			c.Mode = RadialMode
			c.Input.Sensor = "GPIO27"
			c.Sync.Columns = 100
		}},
		{"lockout", func(c *Config) {
			c.Mode = RadialMode
			c.Input.Sensor = "GPIO27"
			c.Sync.Lockout = c.Sync.Search
		}},
		{"pattern", func(c *Config) {
			c.Mode = RadialMode
			c.Input.Sensor = "GPIO27"
			c.Radial.Pattern = "star"
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate succeeded")
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	sync := SyncConfig{
		CounterRate: TOMLFrequency(2 * physic.MegaHertz),
		Lockout:     TOMLDuration(20 * time.Millisecond),
		Search:      TOMLDuration(2 * time.Second),
		Columns:     64,
		MaxRPM:      3000,
	}

	got := sync.EngineConfig(100)
	want := rotsync.Config{
		LockoutTicks: 2,
		SearchTicks:  200,
		RatioShift:   6,
		// 2MHz * 60s / 3000rpm = 40000 ticks per revolution, over 64.
		MinInterval:     625,
		InitialInterval: 2000,
	}
	if got != want {
		t.Errorf("EngineConfig = %+v, want %+v", got, want)
	}
}

func TestTOMLFrequency(t *testing.T) {
	var f TOMLFrequency
	if err := f.UnmarshalText([]byte("250Hz")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if f.Hertz() != 250 {
		t.Errorf("Hertz = %d, want 250", f.Hertz())
	}
	if f.Period() != 4*time.Millisecond {
		t.Errorf("Period = %v, want 4ms", f.Period())
	}
}
