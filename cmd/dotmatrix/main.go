package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/dmatteo/go-dotmatrix/dotmatrix"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/monitor"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "An 8-bit CPU emulator core with a debugger"
	app.Usage = "dotmatrix [options] <program file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "program",
			Usage: "Path to the program binary",
		},
		cli.UintFlag{
			Name:  "addr",
			Usage: "Load address for the program",
			Value: 0x0100,
		},
		cli.Uint64Flag{
			Name:  "steps",
			Usage: "Maximum number of instructions to execute",
			Value: 10000,
		},
		cli.StringSliceFlag{
			Name:  "break",
			Usage: "Breakpoint as addr or addr:condition (e.g. 0x150:A==3), repeatable",
		},
		cli.StringFlag{
			Name:  "disasm",
			Usage: "Print a disassembly of start:end instead of running",
		},
		cli.BoolFlag{
			Name:  "monitor",
			Usage: "Run with the interactive terminal monitor",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := c.String("program")
	if path == "" {
		if c.NArg() > 0 {
			path = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no program file provided")
		}
	}

	program, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	loadAddr := uint16(c.Uint("addr"))

	m := dotmatrix.NewWithLogger(logger)
	m.LoadProgram(loadAddr, program)

	if c.Bool("trace") {
		m.SetObserver(cpu.SlogObserver{Log: logger})
	}

	for _, arg := range c.StringSlice("break") {
		addr, cond, err := parseBreakpoint(arg)
		if err != nil {
			return err
		}
		if err := m.SetBreakpoint(addr, cond); err != nil {
			return err
		}
	}

	if rng := c.String("disasm"); rng != "" {
		start, end, err := parseRange(rng)
		if err != nil {
			return err
		}
		for _, line := range m.DisassembleRange(start, end) {
			fmt.Println(line)
		}
		return nil
	}

	if c.Bool("monitor") {
		return monitor.New(m).Run()
	}

	if err := m.RunSteps(c.Uint64("steps")); err != nil {
		fmt.Println(m.DebugInfo())
		return err
	}

	fmt.Println(m.DebugInfo())
	return nil
}

// parseBreakpoint splits "addr" or "addr:condition".
func parseBreakpoint(spec string) (uint16, string, error) {
	addrText, cond, _ := strings.Cut(spec, ":")
	addr, err := parseAddress(addrText)
	if err != nil {
		return 0, "", fmt.Errorf("breakpoint %q: %w", spec, err)
	}
	return addr, cond, nil
}

// parseRange splits "start:end" into two addresses.
func parseRange(spec string) (uint16, uint16, error) {
	startText, endText, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: expected start:end", spec)
	}
	start, err := parseAddress(startText)
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", spec, err)
	}
	end, err := parseAddress(endText)
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", spec, err)
	}
	return start, end, nil
}

func parseAddress(text string) (uint16, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "$")
	v, err := strconv.ParseUint(strings.TrimPrefix(text, "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", text)
	}
	return uint16(v), nil
}
