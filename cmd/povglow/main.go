package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"libdb.so/povglow"
	"libdb.so/povglow/internal/radial"
)

var (
	config  = "povglow.toml"
	verbose = false
	preview = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVar(&preview, "preview", preview, "print every message as columns and exit")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	d, err := povglow.NewDaemon(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if preview {
		return printPreview(d, cfg)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*povglow.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		// The defaults run on any machine, so a missing file is not fatal.
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn(
				"config file not found, using defaults",
				"path", config)
			return povglow.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return povglow.ParseConfig(f)
}

func printPreview(d *povglow.Daemon, cfg *povglow.Config) error {
	for i, msg := range d.Messages().Entries() {
		p := radial.NewPattern(len(msg) * d.Font().Width)
		n := radial.Text(p, msg, d.Font(), cfg.Direction, 0)

		fmt.Printf("%d: %q\n", i, cfg.Messages[i])
		if _, err := p[:n].WriteTo(os.Stdout); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}
