package povglow

import (
	"encoding"
	"fmt"
	"io"
	"math/bits"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/povglow/internal/radial"
	"libdb.so/povglow/internal/rotsync"
	"libdb.so/povglow/internal/scroll"
	"periph.io/x/conn/v3/physic"
)

// Config is the configuration for the povglow controller.
type Config struct {
	// Mode selects what the column shows.
	Mode Mode `toml:"mode"`
	// TickRate is the fixed tick frequency. One text column is shown and the
	// button is sampled on every tick.
	TickRate TOMLFrequency `toml:"tick_rate"`
	// Direction is the scan direction of messages.
	Direction scroll.Direction `toml:"direction"`
	// Font is the name of the column font: "5x8", "tomthumb" or "picopixel".
	Font string `toml:"font"`
	// Messages are cycled through on every button press. They are encoded
	// to CP437 before being rendered.
	Messages []string `toml:"messages"`

	Output OutputConfig `toml:"output"`
	Input  InputConfig  `toml:"input"`
	Sync   SyncConfig   `toml:"sync"`
	Radial RadialConfig `toml:"radial"`
}

// Mode is the display mode.
type Mode string

const (
	// ScrollMode shows messages one column per fixed tick.
	ScrollMode Mode = "scroll"
	// RadialMode shows a pattern synchronized to the rotation.
	RadialMode Mode = "radial"
)

// OutputKind is the kind of column output.
type OutputKind string

const (
	// GPIOOutput drives one GPIO pin per LED.
	GPIOOutput OutputKind = "gpio"
	// SerialOutput sends columns to an LED driver board over a serial port.
	SerialOutput OutputKind = "serial"
	// TerminalOutput prints columns to stdout.
	TerminalOutput OutputKind = "terminal"
)

// OutputConfig is the configuration of the column output.
type OutputConfig struct {
	Kind OutputKind `toml:"kind"`
	// Pins are the GPIO pin names, top LED first. Used by GPIOOutput.
	Pins []string `toml:"pins"`
	// Device is the serial device, usually /dev/ttyACM0. Used by
	// SerialOutput.
	Device string `toml:"device"`
	// Baud is the baud rate of the serial connection.
	Baud int `toml:"baud"`
	// Queue is the number of columns buffered by queued outputs.
	Queue int `toml:"queue"`
}

// InputConfig is the configuration of the button and the sync sensor.
type InputConfig struct {
	// Button is the GPIO pin of the activation button, active low. If empty,
	// the button is pressed automatically every AutoPress.
	Button string `toml:"button"`
	// AutoPress is the interval of automatic presses.
	AutoPress TOMLDuration `toml:"auto_press"`
	// Sensor is the GPIO pin of the reed switch, closing once per
	// revolution. Required in radial mode.
	Sensor string `toml:"sensor"`
}

// SyncConfig is the configuration of the rotational sync engine.
type SyncConfig struct {
	// CounterRate is the resolution radial timing is measured at.
	CounterRate TOMLFrequency `toml:"counter_rate"`
	// Lockout is how long edges are ignored after a sync pulse.
	Lockout TOMLDuration `toml:"lockout"`
	// Search is the longest revolution the engine will lock on.
	Search TOMLDuration `toml:"search"`
	// Columns is the number of columns per revolution. It must be a power
	// of two.
	Columns int `toml:"columns"`
	// MaxRPM is the fastest plausible rotation. Faster measurements are
	// treated as noise.
	MaxRPM int `toml:"max_rpm"`
}

// RadialConfig is the configuration of the radial pattern.
type RadialConfig struct {
	Pattern radial.Kind `toml:"pattern"`
	// Spokes is the number of spokes of the spokes pattern.
	Spokes int `toml:"spokes"`
	// Mask is the column lit by the spokes and ring patterns.
	Mask uint8 `toml:"mask"`
	// Offset is the column the text pattern starts at.
	Offset int `toml:"offset"`
}

// ParseConfig parses a configuration from a reader. Unset fields take their
// default values.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return &config, nil
}

// DefaultConfig returns the default configuration: scrolling to the
// terminal with an automatic button.
func DefaultConfig() *Config {
	var config Config
	config.setDefaults()
	return &config
}

func (c *Config) setDefaults() {
	setDefault(&c.Mode, ScrollMode)
	setDefault(&c.TickRate, TOMLFrequency(400*physic.Hertz))
	setDefault(&c.Font, "5x8")
	if len(c.Messages) == 0 {
		c.Messages = []string{"Tüchli", "Zäpfli", "TCB", "RNR"}
	}

	setDefault(&c.Output.Kind, TerminalOutput)
	setDefault(&c.Output.Baud, 460800)
	setDefault(&c.Output.Queue, 256)

	setDefault(&c.Input.AutoPress, TOMLDuration(3*time.Second))

	setDefault(&c.Sync.CounterRate, TOMLFrequency(physic.MegaHertz))
	setDefault(&c.Sync.Lockout, TOMLDuration(10*time.Millisecond))
	setDefault(&c.Sync.Search, TOMLDuration(time.Second))
	setDefault(&c.Sync.Columns, 256)
	setDefault(&c.Sync.MaxRPM, 6000)

	setDefault(&c.Radial.Pattern, radial.TextKind)
	setDefault(&c.Radial.Spokes, 4)
	setDefault(&c.Radial.Mask, 0xff)
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Mode {
	case ScrollMode, RadialMode:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.TickRate.Hertz() < 1 {
		return errors.New("tick_rate must be at least 1Hz")
	}

	if len(c.Messages) == 0 {
		return errors.New("no messages configured")
	}

	switch c.Output.Kind {
	case GPIOOutput:
		if len(c.Output.Pins) < 1 || len(c.Output.Pins) > 8 {
			return fmt.Errorf("gpio output needs 1 to 8 pins, got %d", len(c.Output.Pins))
		}
	case SerialOutput:
		if c.Output.Device == "" {
			return errors.New("serial output needs a device")
		}
	case TerminalOutput:
	default:
		return fmt.Errorf("unknown output kind %q", c.Output.Kind)
	}

	if c.Input.Button == "" && c.Input.AutoPress <= 0 {
		return errors.New("either input.button or input.auto_press must be set")
	}

	if c.Mode == RadialMode {
		if c.Input.Sensor == "" {
			return errors.New("radial mode needs input.sensor")
		}
		if err := c.Sync.validate(c.TickRate.Hertz()); err != nil {
			return errors.Wrap(err, "invalid sync configuration")
		}
		if err := c.Radial.Pattern.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *SyncConfig) validate(tickHz int64) error {
	if c.Columns < 2 || c.Columns&(c.Columns-1) != 0 {
		return fmt.Errorf("columns must be a power of two, got %d", c.Columns)
	}
	if c.CounterRate.Hertz() < int64(c.Columns) {
		return fmt.Errorf("counter_rate %v is too slow for %d columns", c.CounterRate, c.Columns)
	}
	if c.MaxRPM < 1 {
		return fmt.Errorf("invalid max_rpm %d", c.MaxRPM)
	}
	if ticks := durationTicks(time.Duration(c.Search), tickHz); ticks < 2 || ticks > 0xffff {
		return fmt.Errorf("search window of %d ticks is out of range", ticks)
	}
	if ticks := durationTicks(time.Duration(c.Lockout), tickHz); ticks > 0xffff {
		return fmt.Errorf("lockout of %d ticks is out of range", ticks)
	}
	if c.Lockout >= c.Search {
		return errors.New("lockout must be shorter than the search window")
	}
	return nil
}

// EngineConfig converts the configuration to the engine's tick units.
func (c *SyncConfig) EngineConfig(tickHz int64) rotsync.Config {
	shift := uint8(bits.TrailingZeros(uint(c.Columns)))
	counterHz := c.CounterRate.Hertz()

	// Shortest plausible revolution in counter ticks, as a column interval.
	minPeriod := counterHz * 60 / int64(c.MaxRPM)

	return rotsync.Config{
		LockoutTicks:    uint16(durationTicks(time.Duration(c.Lockout), tickHz)),
		SearchTicks:     uint16(durationTicks(time.Duration(c.Search), tickHz)),
		RatioShift:      shift,
		MinInterval:     uint32(minPeriod >> shift),
		InitialInterval: uint32(max(counterHz/1000, 1)),
	}
}

func durationTicks(d time.Duration, hz int64) int64 {
	return int64(d) * hz / int64(time.Second)
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// TOMLFrequency is a frequency that can be parsed from TOML, e.g. "400Hz".
type TOMLFrequency physic.Frequency

var (
	_ encoding.TextUnmarshaler = (*TOMLFrequency)(nil)
	_ encoding.TextMarshaler   = (*TOMLFrequency)(nil)
)

func (f *TOMLFrequency) UnmarshalText(text []byte) error {
	var freq physic.Frequency
	if err := freq.Set(string(text)); err != nil {
		return err
	}
	*f = TOMLFrequency(freq)
	return nil
}

func (f TOMLFrequency) MarshalText() ([]byte, error) {
	return []byte(physic.Frequency(f).String()), nil
}

func (f TOMLFrequency) String() string {
	return physic.Frequency(f).String()
}

// Hertz returns the frequency in whole hertz.
func (f TOMLFrequency) Hertz() int64 {
	return int64(physic.Frequency(f) / physic.Hertz)
}

// Period returns the duration of one cycle.
func (f TOMLFrequency) Period() time.Duration {
	hz := f.Hertz()
	if hz < 1 {
		return 0
	}
	return time.Second / time.Duration(hz)
}
