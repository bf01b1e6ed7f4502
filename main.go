// lc3 runs LC-3 program images: fetch, decode, execute until HALT, a
// fatal opcode, or the host interrupts execution. Grounded on the
// teacher's main.go bootstrap shape (flag parsing, mode dispatch, signal
// handling for a raw-mode console), re-scoped to LC-3's image-file model —
// there is no assembler or parser stage in this domain (spec.md
// explicitly excludes assembling LC-3 source), so the bootstrap loads a
// binary image directly instead of parsing and linking source.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lookbusy1344/lc3emu/api"
	"github.com/lookbusy1344/lc3emu/config"
	"github.com/lookbusy1344/lc3emu/console"
	"github.com/lookbusy1344/lc3emu/debugger"
	"github.com/lookbusy1344/lc3emu/loader"
	"github.com/lookbusy1344/lc3emu/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run contains everything main would otherwise do inline, so the exit
// code is a return value instead of a direct os.Exit call buried in the
// middle of setup — easier to reason about every return path's exit code.
func run(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if flags.help {
		printUsage(os.Stdout)
		return 0
	}
	if flags.apiServer {
		return runAPIServer(flags)
	}
	if len(flags.images) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	con := console.New(os.Stdin, os.Stdout, time.Duration(cfg.Console.PollIntervalMS)*time.Millisecond)
	if cfg.Console.RawMode {
		if err := con.EnableRawMode(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not enable raw console mode: %v\n", err)
		} else {
			defer con.Restore()
		}
	}

	machine := vm.NewVM(con)
	if flags.maxCycles > 0 {
		machine.MaxCycles = flags.maxCycles
	} else {
		machine.MaxCycles = cfg.Execution.MaxCycles
	}

	if flags.trace {
		machine.Trace = vm.NewExecutionTrace(traceCapacity(cfg))
		machine.Trace.Enabled = true
	}

	for _, path := range flags.images {
		if err := loader.LoadFile(machine.Mem, path); err != nil {
			con.Flush()
			fmt.Fprintln(os.Stdout, err)
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	defer signal.Stop(sigChan)

	if flags.tui {
		dbg := debugger.NewDebugger(machine)
		if err := debugger.RunTUI(dbg); err != nil {
			con.Flush()
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			return 1
		}
		con.Flush()
		return exitCodeFor(machine, nil)
	}

	if flags.debug {
		dbg := debugger.NewDebugger(machine)
		fmt.Println("LC-3 Debugger - Type 'help' for commands")
		if err := debugger.RunCLI(dbg); err != nil {
			con.Flush()
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			return 1
		}
		con.Flush()
		return exitCodeFor(machine, nil)
	}

	runErr := machine.Run(ctx)
	con.Flush()

	if err := writeTrace(machine, flags, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return exitCodeFor(machine, runErr)
}

// exitCodeFor maps spec.md §5/§6's three terminal states to process exit
// codes: HALT is 0, a fatal opcode or load error is 1, and a host
// interrupt is 130 (the conventional SIGINT exit code, satisfying "any
// nonzero sentinel not already claimed by 1 or 2").
func exitCodeFor(machine *vm.VM, runErr error) int {
	if runErr != nil {
		if runErr == context.Canceled {
			fmt.Println()
			return 130
		}
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}
	// A nil runErr covers both a clean HALT and an interactive
	// debugger/TUI session that exited without halting the VM; both are
	// normal exits, not crashes.
	return 0
}

func writeTrace(machine *vm.VM, flags cliFlags, cfg *config.Config) error {
	if !flags.trace || machine.Trace == nil {
		return nil
	}
	path := flags.traceFile
	if path == "" {
		path = cfg.Trace.OutputFile
	}
	f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	defer f.Close()
	for _, entry := range machine.Trace.Entries() {
		if _, err := fmt.Fprintln(f, entry.String()); err != nil {
			return fmt.Errorf("writing trace file: %w", err)
		}
	}
	return nil
}

func traceCapacity(cfg *config.Config) int {
	if cfg.Trace.MaxEntries > 0 {
		return cfg.Trace.MaxEntries
	}
	return 100000
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// runAPIServer serves the HTTP control surface instead of running an
// image directly. Grounded on the teacher's -api-server mode: graceful
// shutdown on SIGINT/SIGTERM, draining in-flight requests before exit.
func runAPIServer(flags cliFlags) int {
	server := api.NewServer(flags.port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	shutdownErr := make(chan error, 1)
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			shutdownErr <- server.Shutdown(ctx)
		})
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-sigChan:
		performShutdown()
	case err := <-serveErr:
		if err != nil {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := <-shutdownErr; err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		return 1
	}
	fmt.Println("API server stopped")
	return 0
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, `Usage: lc3 <image-file> [<image-file> ...]
       lc3 -api-server [-port N]

Loads one or more LC-3 program images and runs them to HALT.

Options:
  -config PATH       Load configuration from PATH instead of the default
  -trace             Record a PC/instruction execution trace
  -trace-file PATH   Trace output file (default: from config, trace.log)
  -debug             Start the interactive line-mode debugger
  -tui               Start the full-screen debugger
  -api-server        Serve the HTTP control API instead of running
  -port N            API server port (default: 8080, used with -api-server)
  -max-cycles N      Stop after N instructions (0 = unlimited, default)
  -help              Show this message

Multiple image files are loaded in order, each at the origin its own header
names; a later image overwrites an earlier one at any overlapping address.`)
}
