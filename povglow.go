// Package povglow implements the controller of a persistence-of-vision LED
// column: it scrolls messages or shows patterns synchronized to the
// rotation, started by a button.
package povglow

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/povglow/colserial"
	"libdb.so/povglow/internal/activate"
	"libdb.so/povglow/internal/colout"
	"libdb.so/povglow/internal/font"
	"libdb.so/povglow/internal/msgtab"
	"libdb.so/povglow/internal/power"
	"libdb.so/povglow/internal/radial"
	"libdb.so/povglow/internal/render"
	"libdb.so/povglow/internal/rotsync"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Daemon is the main povglow daemon.
type Daemon struct {
	cfg      *Config
	logger   *slog.Logger
	font     font.Font
	messages msgtab.Table
}

// NewDaemon creates a new povglow daemon. The font and every message are
// checked here so the handlers never see malformed input.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	f, err := font.ByName(cfg.Font)
	if err != nil {
		return nil, errors.Wrap(err, "invalid font")
	}

	encoded := make([][]byte, len(cfg.Messages))
	for i, msg := range cfg.Messages {
		b, err := msgtab.Encode(msg)
		if err != nil {
			return nil, err
		}
		if err := f.Covers(b); err != nil {
			return nil, errors.Wrapf(err, "message %q", msg)
		}
		encoded[i] = b
	}

	table, err := msgtab.Build(encoded...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid messages")
	}

	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		font:     f,
		messages: table,
	}, nil
}

// Font returns the font messages are rendered with.
func (d *Daemon) Font() font.Font {
	return d.font
}

// Messages returns the encoded messages.
func (d *Daemon) Messages() msgtab.Table {
	return d.messages
}

// Run starts the daemon. It blocks until the given context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	hw, err := d.openHardware()
	if err != nil {
		return err
	}
	defer hw.close()

	return (&internalDaemon{Daemon: d, hw: hw}).Run(ctx)
}

// hardware is everything the daemon talks to.
type hardware struct {
	out    render.Output
	gpio   *colout.GPIO
	queue  *colout.Queue
	port   serial.Port
	button gpio.PinIn
	sensor gpio.PinIn
	halt   func() error

	closeOnce sync.Once
	closeErr  error
}

// close turns the column off and releases the hardware. It is safe to call
// more than once.
func (h *hardware) close() error {
	h.closeOnce.Do(func() {
		if h.halt != nil {
			h.closeErr = h.halt()
		}
		if h.port != nil {
			if err := h.port.Close(); err != nil && h.closeErr == nil {
				h.closeErr = err
			}
		}
	})
	return h.closeErr
}

func (d *Daemon) openHardware() (*hardware, error) {
	needsGPIO := d.cfg.Output.Kind == GPIOOutput || d.cfg.Input.Button != "" || d.cfg.Input.Sensor != ""
	if needsGPIO {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "failed to initialize periph")
		}
	}

	var hw hardware

	switch d.cfg.Output.Kind {
	case GPIOOutput:
		g, err := colout.OpenGPIO(d.cfg.Output.Pins)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open column pins")
		}
		hw.out = g
		hw.gpio = g
		hw.halt = g.Halt

	case SerialOutput:
		port, err := colout.OpenSerial(d.cfg.Output.Device, d.cfg.Output.Baud)
		if err != nil {
			return nil, err
		}
		sink := colout.NewSerialSink(port)
		if err := sink.Initialize(d.font.Height); err != nil {
			port.Close()
			return nil, err
		}
		hw.port = port
		hw.queue = colout.NewQueue(sink, d.cfg.Output.Queue)
		hw.out = hw.queue
		hw.halt = sink.Clear

	case TerminalOutput:
		hw.queue = colout.NewQueue(colout.NewTerminalSink(os.Stdout, d.font.Height), d.cfg.Output.Queue)
		hw.out = hw.queue
	}

	if d.cfg.Input.Button != "" {
		pin, err := openInput(d.cfg.Input.Button, gpio.NoEdge)
		if err != nil {
			hw.close()
			return nil, errors.Wrap(err, "failed to open button")
		}
		hw.button = pin
	}

	if d.cfg.Mode == RadialMode {
		pin, err := openInput(d.cfg.Input.Sensor, gpio.BothEdges)
		if err != nil {
			hw.close()
			return nil, errors.Wrap(err, "failed to open sensor")
		}
		hw.sensor = pin
	}

	return &hw, nil
}

func openInput(name string, edge gpio.Edge) (gpio.PinIn, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("GPIO pin %s not found", name)
	}
	if err := pin.In(gpio.PullUp, edge); err != nil {
		return nil, errors.Wrapf(err, "failed to configure %s", name)
	}
	return pin, nil
}

type internalDaemon struct {
	*Daemon
	hw *hardware

	driver    *render.Driver
	engine    *rotsync.Engine
	holder    *radial.Holder
	activator *activate.Controller
	power     *power.Controller
}

// bootColumn lights half the column at power-on.
const bootColumn = 0x0f

func (d *internalDaemon) Run(ctx context.Context) error {
	d.setup()

	d.driver.Critical(func(s *render.State) {
		s.Output.WriteColumn(bootColumn)
	})

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return d.tickLoop(ctx)
	})
	errg.Go(func() error {
		return d.foregroundLoop(ctx)
	})

	if d.engine != nil {
		errg.Go(func() error {
			return d.radialLoop(ctx)
		})
		errg.Go(func() error {
			return d.sensorLoop(ctx)
		})
	}

	if d.hw.queue != nil {
		errg.Go(func() error {
			return d.hw.queue.Run(ctx)
		})
	}

	if d.hw.port != nil {
		errg.Go(func() error {
			return d.readPackets(ctx, d.hw.port)
		})
	}

	d.logger.Info(
		"povglow started",
		"mode", d.cfg.Mode,
		"output", d.cfg.Output.Kind,
		"tick_rate", d.cfg.TickRate,
		"messages", len(d.cfg.Messages))

	err := errg.Wait()

	if herr := d.shutdown(); herr != nil {
		d.logger.Warn(
			"failed to turn the column off",
			"err", herr)
	}

	if d.hw.queue != nil && d.hw.queue.Dropped() > 0 {
		d.logger.Warn(
			"columns were dropped by a slow output",
			"dropped", d.hw.queue.Dropped())
	}
	if d.hw.gpio != nil && d.hw.gpio.Failures() > 0 {
		d.logger.Warn(
			"column pin writes failed",
			"failures", d.hw.gpio.Failures())
	}

	return err
}

// shutdown blanks the column once every loop has returned, so nothing else
// writes to the output.
func (d *internalDaemon) shutdown() error {
	d.driver.Critical(func(s *render.State) {
		s.Scroll.Deactivate()
		s.Output.WriteColumn(0x00)
	})

	if d.hw.queue != nil {
		if err := d.hw.queue.Flush(); err != nil {
			d.hw.close()
			return err
		}
	}

	d.logger.Debug("releasing column output")
	return d.hw.close()
}

func (d *internalDaemon) setup() {
	var keys render.KeySampler
	if d.hw.button != nil {
		keys = pinSampler(d.hw.button)
	} else {
		keys = newAutoPresser(durationTicks(time.Duration(d.cfg.Input.AutoPress), d.cfg.TickRate.Hertz()))
	}

	var act activate.Opts
	if d.cfg.Mode == RadialMode {
		ecfg := d.cfg.Sync.EngineConfig(d.cfg.TickRate.Hertz())
		d.engine = rotsync.New(ecfg)
		d.holder = radial.NewHolder(ecfg.Columns())

		switch d.cfg.Radial.Pattern {
		case radial.SpokesKind:
			radial.Spokes(d.holder.Back(), d.cfg.Radial.Spokes, d.cfg.Radial.Mask)
		case radial.RingKind:
			radial.Ring(d.holder.Back(), d.cfg.Radial.Mask)
		case radial.TextKind:
			act.Radial = d.holder
			act.RadialOffset = d.cfg.Radial.Offset
		}
		d.engine.SetPattern(d.holder.Swap())

		d.logger.Debug(
			"sync engine configured",
			"columns", ecfg.Columns(),
			"lockout_ticks", ecfg.LockoutTicks,
			"search_ticks", ecfg.SearchTicks,
			"min_interval", ecfg.MinInterval)
	}

	d.driver = render.New(render.Opts{
		Output: d.hw.out,
		Sync:   d.engine,
		Keys:   keys,
	})

	// Fixed radial patterns own the column; the button has nothing to start.
	if d.cfg.Mode == ScrollMode || d.cfg.Radial.Pattern == radial.TextKind {
		act.Driver = d.driver
		act.Messages = msgtab.NewCycle(d.messages)
		act.Font = d.font
		act.Direction = d.cfg.Direction
		act.Logger = d.logger
		d.activator = activate.New(act)
	}

	d.power = power.NewController(d.logger)
}

func (d *internalDaemon) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.TickRate.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.driver.Tick()
		}
	}
}

func (d *internalDaemon) radialLoop(ctx context.Context) error {
	counter := newCounter(d.cfg.Sync.CounterRate.Hertz())

	interval := d.engine.Config().InitialInterval
	ticker := time.NewTicker(counter.duration(interval))
	defer ticker.Stop()

	last := counter.now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// The counter is sampled once per tick: the timer may fire late, and
		// the engine must see the true elapsed time.
		now := counter.now()
		elapsed := now - last
		last = now

		if !d.power.Awake() {
			continue
		}

		if next := d.driver.RadialTick(elapsed); next != interval {
			interval = next
			ticker.Reset(counter.duration(interval))
		}
	}
}

func (d *internalDaemon) sensorLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		if !d.hw.sensor.WaitForEdge(100 * time.Millisecond) {
			continue
		}
		d.driver.PulseEdge(d.hw.sensor.Read() == gpio.Low)
	}
	return ctx.Err()
}

func (d *internalDaemon) foregroundLoop(ctx context.Context) error {
	var locked bool

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-d.driver.Updates():
			if d.activator != nil {
				d.activator.Update()
			}

			var searching bool
			if s, ok := d.driver.SyncState(); ok {
				searching = s.Searching
				if s.Locked != locked {
					locked = s.Locked
					if locked {
						d.logger.Info(
							"rotation locked",
							"interval", s.Interval)
					} else {
						d.logger.Info("rotation lost")
					}
				}
			}

			d.power.Update(d.driver.Rendering(), locked, searching)
		}
	}
}

const packetReadTimeout = 100 * time.Millisecond

// timeoutReader reports the empty read of a timed out port as io.EOF.
type timeoutReader struct {
	io.Reader
}

func (r timeoutReader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, io.EOF
	}
	return n, err
}

// packetPort is the receiving side of the board's serial port.
type packetPort interface {
	io.Reader
	SetReadTimeout(t time.Duration) error
}

func (d *internalDaemon) readPackets(ctx context.Context, port packetPort) error {
	// The port stays open until every loop has returned, so reads time out
	// to notice cancellation.
	if err := port.SetReadTimeout(packetReadTimeout); err != nil {
		return errors.Wrap(err, "failed to set read timeout")
	}

	r := timeoutReader{port}

	for ctx.Err() == nil {
		p, err := colserial.ReadOutgoingPacket(r)
		if err != nil {
			// An empty read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn(
				"dropped malformed packet from board",
				"err", err)
			continue
		}

		switch p := p.(type) {
		case colserial.AckPacket:
			d.logger.Debug(
				"received ack packet from board",
				"acked_for", p.IncomingPacketType)

		case colserial.ErrorPacket:
			d.logger.Warn(
				"received error packet from board",
				"message", p.Message)

		case colserial.PanicPacket:
			d.logger.Error("board unrecoverably panicked")
			return errors.New("board panicked")

		case colserial.LogPacket:
			d.logger.Info(
				"received log packet from board",
				"message", p.Message)

		default:
			return errors.Errorf("received unknown packet from board: %s", p.Type())
		}
	}

	return ctx.Err()
}
