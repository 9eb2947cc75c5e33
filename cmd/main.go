package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nevisdale/nestic/internal/cart"
	"github.com/nevisdale/nestic/internal/nes"
	"github.com/nevisdale/nestic/internal/ui"
	"github.com/nevisdale/nestic/internal/ui/screenshot"
	"github.com/pkg/profile"
)

type config struct {
	romPath    string
	scale      int
	debug      bool
	headless   bool
	frames     int
	screenshot string
	trace      string
	profile    string
	breakAt    string
	genie      string
	verbose    bool
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.romPath, "rom", "", "path to the iNES rom file to run")
	flag.IntVar(&cfg.scale, "scale", 2, "window and screenshot scale")
	flag.BoolVar(&cfg.debug, "debug", false, "show the debug panel")
	flag.BoolVar(&cfg.headless, "headless", false, "run without a window")
	flag.IntVar(&cfg.frames, "frames", 60, "frames to run in headless mode")
	flag.StringVar(&cfg.screenshot, "screenshot", "", "save the last headless frame to this png file")
	flag.StringVar(&cfg.trace, "trace", "", "write an instruction trace to this file, - for stderr")
	flag.StringVar(&cfg.profile, "profile", "", "profile the run: cpu or mem")
	flag.StringVar(&cfg.breakAt, "break", "", "comma separated hex addresses to pause at")
	flag.StringVar(&cfg.genie, "genie", "", "comma separated game genie codes")
	flag.BoolVar(&cfg.verbose, "v", false, "log every finished frame")
	flag.Parse()
	return cfg
}

// parseBreakpoints reads addresses like "C000,$C5F5,0x8000".
func parseBreakpoints(s string) ([]uint16, error) {
	var addrs []uint16
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		field = strings.TrimPrefix(strings.TrimPrefix(field, "$"), "0x")
		addr, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", field, err)
		}
		addrs = append(addrs, uint16(addr))
	}
	return addrs, nil
}

type frameLogger struct{}

func (frameLogger) OnInstruction(nes.CPUState) {}

func (frameLogger) OnFrame(frame uint64) {
	log.Printf("frame %d", frame)
}

func openTrace(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// runHeadless steps up to frames frames and stops early at the first
// breakpoint, if bp is set.
func runHeadless(bus *nes.Bus, frames int, bp *nes.Breakpoints) {
	var stop func() bool
	var at uint16
	if bp != nil {
		stop = func() bool {
			var hit bool
			at, hit = bp.Hit()
			return hit
		}
	}
	done, stopped := bus.RunFrames(frames, stop)
	if stopped {
		log.Printf("breakpoint at $%04X after %d frames", at, done)
	}
}

func run(cfg config) error {
	if cfg.romPath == "" {
		return fmt.Errorf("no rom given, use -rom")
	}

	switch cfg.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", cfg.profile)
	}

	c, err := cart.NewCartFromFile(cfg.romPath)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: mapper %d, mirroring %s", cfg.romPath, c.MapperID(), c.Mirroring())

	bus := nes.NewBus()
	if cfg.genie == "" {
		bus.LoadCart(c)
	} else {
		g, err := cart.NewGameGenie(c, strings.Split(cfg.genie, ",")...)
		if err != nil {
			return err
		}
		bus.LoadCart(g)
	}

	var observers nes.Observers
	if cfg.trace != "" {
		w, err := openTrace(cfg.trace)
		if err != nil {
			return err
		}
		defer w.Close()
		tracer := nes.NewTracer(w, bus)
		defer func() {
			if err := tracer.Err(); err != nil {
				log.Printf("trace: %v", err)
			}
		}()
		observers = append(observers, tracer)
	}
	if cfg.verbose {
		observers = append(observers, frameLogger{})
	}

	addrs, err := parseBreakpoints(cfg.breakAt)
	if err != nil {
		return err
	}
	var bp *nes.Breakpoints
	if len(addrs) > 0 {
		bp = nes.NewBreakpoints(addrs...)
		observers = append(observers, bp)
	}
	if len(observers) > 0 {
		bus.SetObserver(observers)
	}

	if cfg.headless {
		runHeadless(bus, cfg.frames, bp)
		if cfg.screenshot != "" {
			return screenshot.Save(cfg.screenshot, bus.Screen(), float64(cfg.scale))
		}
		return nil
	}

	options := []func(*ui.UI) error{ui.WithScale(cfg.scale), ui.WithDebugPanel(cfg.debug)}
	if bp != nil {
		options = append(options, ui.WithBreakpoints(bp))
	}
	u, err := ui.New(bus, options...)
	if err != nil {
		return err
	}
	return ui.RunUI(u)
}

func main() {
	if err := run(parseFlags()); err != nil {
		log.Fatalf("nestic: %s\n", err.Error())
	}
}
