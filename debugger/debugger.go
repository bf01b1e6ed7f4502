package debugger

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/lc3emu/vm"
)

// Debugger represents the debugger state and functionality
type Debugger struct {
	VM *vm.VM

	// Breakpoint management
	Breakpoints *BreakpointManager

	// Watchpoint management
	Watchpoints *WatchpointManager

	// Command history
	History *CommandHistory

	// Expression evaluator
	Evaluator *ExpressionEvaluator

	// Execution control
	Running           bool
	StepMode          StepMode
	StepOverCallDepth int    // Track call depth for step over
	StepOverPC        uint16 // PC to return to after step over or step out

	// Symbol table (for label/symbol resolution)
	Symbols map[string]uint16

	// Source code mapping (address -> source line)
	SourceMap map[uint16]string

	// Last command (for repeat on empty input)
	LastCommand string

	// Output buffer
	Output strings.Builder
}

// StepMode represents different stepping modes
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over JSR/JSRR/TRAP calls
	StepOut                    // Step out of current subroutine
)

// NewDebugger creates a new debugger instance
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Running:     false,
		StepMode:    StepNone,
		Symbols:     make(map[string]uint16),
		SourceMap:   make(map[uint16]string),
	}
}

// LoadSymbols loads the symbol table for label resolution
func (d *Debugger) LoadSymbols(symbols map[string]uint16) {
	d.Symbols = symbols
}

// LoadSourceMap loads the source code mapping
func (d *Debugger) LoadSourceMap(sourceMap map[uint16]string) {
	d.SourceMap = sourceMap
}

// ResolveAddress resolves a label to an address, or parses a numeric address
func (d *Debugger) ResolveAddress(addrStr string) (uint16, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint16
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		var v uint32
		_, err := fmt.Sscanf(addrStr, "0x%x", &v)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		addr = uint16(v)
	} else {
		var v uint32
		_, err := fmt.Sscanf(addrStr, "%d", &v)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		addr = uint16(v)
	}

	return addr, nil
}

// ExecuteCommand processes and executes a debugger command
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty command repeats last command (for step, next, etc.)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if resolved, err := d.resolveHistoryShorthand(cmdLine); err != nil {
		return err
	} else if resolved != "" {
		cmdLine = resolved
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

// resolveHistoryShorthand expands shell-style history shorthand: "!!"
// repeats the last command, "!prefix" repeats the most recent command in
// History starting with prefix. Returns "" with no error when cmdLine
// isn't shorthand.
func (d *Debugger) resolveHistoryShorthand(cmdLine string) (string, error) {
	if !strings.HasPrefix(cmdLine, "!") {
		return "", nil
	}

	if cmdLine == "!!" {
		last := d.History.GetLast()
		if last == "" {
			return "", fmt.Errorf("history is empty")
		}
		return last, nil
	}

	prefix := cmdLine[1:]
	matches := d.History.Search(prefix)
	if len(matches) == 0 {
		return "", fmt.Errorf("no command in history matching: %s", prefix)
	}
	return matches[len(matches)-1], nil
}

// handleCommand dispatches commands to appropriate handlers
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	// Execution control
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	// Breakpoints
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	// Watchpoints
	case "watch", "w":
		return d.cmdWatch(args)

	// Inspection
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)

	// State modification
	case "set":
		return d.cmdSet(args)

	// Program control
	case "load":
		return d.cmdLoad(args)
	case "reset":
		return d.cmdReset(args)

	// History
	case "history":
		return d.cmdHistory(args)

	// Help
	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause at the current PC
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.Reg.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		// There is no call-stack tracking: the target is the return
		// address R7 held when finish was issued (recorded by SetStepOut).
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step out complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		bp.HitCount++

		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}

		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	if reason, stop := d.checkTrapBreakpoint(pc); stop {
		return true, reason
	}

	return false, ""
}

// checkTrapBreakpoint fires a trap-vector breakpoint when the instruction
// about to execute is a TRAP whose vector has a registered breakpoint —
// independent of which address issues the TRAP.
func (d *Debugger) checkTrapBreakpoint(pc uint16) (string, bool) {
	instr := d.VM.Mem.Peek(pc)
	if vm.Opcode(instr>>12) != vm.OpTRAP {
		return "", false
	}

	vector := vm.TrapCode(instr & 0xFF)
	bp := d.Breakpoints.GetTrapBreakpoint(vector)
	if bp == nil || !bp.Enabled {
		return "", false
	}

	if bp.Condition != "" {
		result, err := d.Evaluator.Evaluate(bp.Condition, d.VM, d.Symbols)
		if err != nil {
			return fmt.Sprintf("trap breakpoint %d (condition error: %v)", bp.ID, err), true
		}
		if !result {
			return "", false
		}
	}

	hit := d.Breakpoints.ProcessTrapHit(vector)
	return fmt.Sprintf("trap breakpoint %d (%s)", hit.ID, trapVectorName(vector)), true
}

// GetOutput returns and clears the output buffer
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver configures the debugger to step over JSR/JSRR/TRAP calls.
func (d *Debugger) SetStepOver() {
	instr := d.VM.Mem.Peek(d.VM.Reg.PC)
	op := vm.Opcode(instr >> 12)

	if op == vm.OpJSR || op == vm.OpTRAP {
		d.StepOverPC = d.VM.Reg.PC + 1
		d.StepMode = StepOver
		d.Running = true
	} else {
		d.StepMode = StepSingle
		d.Running = true
	}
}

// SetStepOut configures the debugger to step out of the current subroutine,
// running until PC reaches the return address currently in R7.
func (d *Debugger) SetStepOut() {
	d.StepOverPC = d.VM.Reg.R[7]
	d.StepMode = StepOut
	d.Running = true
}
