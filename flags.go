package main

import (
	"flag"
	"fmt"
)

// cliFlags holds the bootstrap's parsed command line, separated from flag
// parsing's global FlagSet state so run can be called repeatedly (tests)
// without colliding on flag.CommandLine.
type cliFlags struct {
	images     []string
	configPath string
	trace      bool
	traceFile  string
	tui        bool
	debug      bool
	apiServer  bool
	port       int
	maxCycles  uint64
	help       bool
}

// parseFlags parses args (normally os.Args[1:]) into a cliFlags. Unknown
// flags or malformed values return an error the caller reports before
// exiting with spec.md §6's usage exit code (2).
func parseFlags(args []string) (cliFlags, error) {
	fs := flag.NewFlagSet("lc3", flag.ContinueOnError)
	fs.Usage = func() {}

	var f cliFlags
	fs.StringVar(&f.configPath, "config", "", "Load configuration from this file instead of the default")
	fs.BoolVar(&f.trace, "trace", false, "Record a PC/instruction execution trace")
	fs.StringVar(&f.traceFile, "trace-file", "", "Trace output file (default: from config)")
	fs.BoolVar(&f.tui, "tui", false, "Start the full-screen debugger")
	fs.BoolVar(&f.debug, "debug", false, "Start the interactive line-mode debugger")
	fs.BoolVar(&f.apiServer, "api-server", false, "Serve the HTTP control API")
	fs.IntVar(&f.port, "port", 8080, "API server port")
	fs.Uint64Var(&f.maxCycles, "max-cycles", 0, "Stop after N instructions (0 = unlimited)")
	fs.BoolVar(&f.help, "help", false, "Show usage")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, fmt.Errorf("lc3: %w", err)
	}

	f.images = fs.Args()
	return f, nil
}
