package api

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/lookbusy1344/lc3emu/debugger"
	"github.com/lookbusy1344/lc3emu/vm"
)

// sessionConsole is a vm.Console for API-driven sessions: input arrives via
// SendStdin and accumulates until the VM reads it, output accumulates for
// the console/output endpoint to drain. Grounded on console/scripted.go's
// queue-plus-buffer shape; a REST client polls for output instead of
// receiving it pushed over a live transport.
type sessionConsole struct {
	mu     sync.Mutex
	input  []byte
	output bytes.Buffer
}

func newSessionConsole() *sessionConsole {
	return &sessionConsole{}
}

func (c *sessionConsole) Feed(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = append(c.input, data...)
}

func (c *sessionConsole) KeyAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.input) > 0
}

func (c *sessionConsole) ReadChar() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.input) == 0 {
		return 0
	}
	b := c.input[0]
	c.input = c.input[1:]
	return b
}

func (c *sessionConsole) WriteChar(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output.WriteByte(b)
}

func (c *sessionConsole) Flush() {}

// DrainOutput returns and clears everything written so far.
func (c *sessionConsole) DrainOutput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.output.String()
	c.output.Reset()
	return s
}

var _ vm.Console = (*sessionConsole)(nil)

// Session bundles one LC-3 VM with the debugger state (breakpoints,
// watchpoints) an API client drives it through, plus the run-control
// plumbing (cancel/running) the teacher's service.DebuggerService provided
// for ARM. Grounded on the teacher's api/session_manager.go Session
// (ID/Service/CreatedAt), with Service's role split across VM + the
// debugger package's managers directly, since there is no service package
// in this domain.
type Session struct {
	ID          string
	VM          *vm.VM
	Console     *sessionConsole
	Breakpoints *debugger.BreakpointManager
	Watchpoints *debugger.WatchpointManager
	CreatedAt   time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func newSession(id string) *Session {
	console := newSessionConsole()
	machine := vm.NewVM(console)
	machine.Trace = vm.NewExecutionTrace(0)

	return &Session{
		ID:          id,
		VM:          machine,
		Console:     console,
		Breakpoints: debugger.NewBreakpointManager(),
		Watchpoints: debugger.NewWatchpointManager(),
		CreatedAt:   time.Now(),
	}
}

// Running reports whether a Run goroutine currently owns this session.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop cancels an in-flight Run, if one is active. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// RunUntilHalt drives the VM forward, honoring breakpoints and watchpoints,
// until HALT, a fatal opcode, a breakpoint/watchpoint hit, the VM's
// MaxCycles (if nonzero), or Stop is called. A client observes progress by polling /registers, /console, and
// /status rather than receiving a pushed event stream.
func (s *Session) RunUntilHalt() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	first := true
	for s.VM.Running() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.VM.MaxCycles > 0 && s.VM.Cycles() >= s.VM.MaxCycles {
			return
		}

		// The instruction the run starts on is always executed, so a run
		// resumed from a breakpoint moves past it instead of re-hitting it.
		pc := s.VM.Reg.PC
		if bp := s.Breakpoints.GetBreakpoint(pc); !first && bp != nil && bp.Enabled {
			s.Breakpoints.ProcessHit(pc)
			return
		}
		first = false

		if err := s.VM.Step(); err != nil {
			return
		}

		if _, hit := s.Watchpoints.CheckWatchpoints(s.VM); hit {
			return
		}
	}
}
