package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/lc3emu/loader"
	"github.com/lookbusy1344/lc3emu/vm"
)

// Command handler implementations

// cmdRun resets and starts program execution
func (d *Debugger) cmdRun(args []string) error {
	d.VM.Reset()
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue continues execution from current point
func (d *Debugger) cmdContinue(args []string) error {
	if !d.VM.Running() {
		return fmt.Errorf("program is not running")
	}

	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over JSR/JSRR/TRAP calls (step to next instruction at same level)
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish steps out of the current subroutine
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// trapVectorNames maps each of the six fixed TRAP vectors to the name
// programmers actually call them by, for "break trap <name>" and display.
var trapVectorNames = map[vm.TrapCode]string{
	vm.TrapGETC:  "GETC",
	vm.TrapOUT:   "OUT",
	vm.TrapPUTS:  "PUTS",
	vm.TrapIN:    "IN",
	vm.TrapPUTSP: "PUTSP",
	vm.TrapHALT:  "HALT",
}

func trapVectorName(v vm.TrapCode) string {
	if name, ok := trapVectorNames[v]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint16(v))
}

// trapVectorByName resolves a TRAP name (case-insensitive) or a literal
// vector like 0x23 to its vm.TrapCode.
func trapVectorByName(s string) (vm.TrapCode, error) {
	upper := strings.ToUpper(s)
	for code, name := range trapVectorNames {
		if name == upper {
			return code, nil
		}
	}

	var v uint32
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, err := fmt.Sscanf(s, "0x%x", &v); err == nil {
			return vm.TrapCode(v), nil
		}
	}
	if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
		return vm.TrapCode(v), nil
	}

	return 0, fmt.Errorf("unknown trap vector: %s", s)
}

// cmdBreak sets a breakpoint, either at an address/label or — via
// "break trap <name>" — on a TRAP vector regardless of which address
// issues it.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]\n       break trap <name|vector> [if <condition>]")
	}

	if strings.ToLower(args[0]) == "trap" {
		return d.breakTrap(args[1:], false)
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at 0x%04X (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%04X\n", bp.ID, address)
	}

	return nil
}

// breakTrap implements the "break trap <name>" / "tbreak trap <name>" form.
func (d *Debugger) breakTrap(args []string, temporary bool) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break trap <name|vector> [if <condition>]")
	}

	vector, err := trapVectorByName(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddTrapBreakpoint(vector, temporary, condition)

	if condition != "" {
		d.Printf("Breakpoint %d on trap %s (condition: %s)\n", bp.ID, trapVectorName(vector), condition)
	} else {
		d.Printf("Breakpoint %d on trap %s\n", bp.ID, trapVectorName(vector))
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit)
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>\n       tbreak trap <name|vector>")
	}

	if strings.ToLower(args[0]) == "trap" {
		return d.breakTrap(args[1:], true)
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%04X\n", bp.ID, address)

	return nil
}

// cmdDelete deletes breakpoint(s)
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables breakpoint(s)
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables breakpoint(s)
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint (value-change detection; see WatchType's doc
// comment on the read/write-specific limitation)
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <expression>")
	}

	expression := strings.Join(args, " ")

	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// parseWatchExpression parses a watch expression (register or memory address)
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register int, address uint16, err error) {
	expr = strings.ToLower(strings.TrimSpace(expr))

	if expr == "pc" {
		return true, 8, 0, nil
	}
	if expr == "cond" || expr == "psr" {
		return true, 9, 0, nil
	}

	if strings.HasPrefix(expr, "r") && len(expr) >= 2 {
		var regNum int
		_, scanErr := fmt.Sscanf(expr, "r%d", &regNum)
		if scanErr == nil && regNum >= 0 && regNum <= 7 {
			return true, regNum, 0, nil
		}
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, err := d.ResolveAddress(addrStr)
		if err != nil {
			return false, 0, 0, err
		}
		return false, 0, addr, nil
	}

	addr, err := d.ResolveAddress(expr)
	if err != nil {
		return false, 0, 0, fmt.Errorf("invalid watch expression: %s", expr)
	}

	return false, 0, addr, nil
}

// cmdPrint evaluates and prints an expression
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.VM, d.Symbols)
	if err != nil {
		return err
	}

	d.Printf("$%d = 0x%04X (%d)\n", d.Evaluator.GetValueNumber(), result, int16(result))
	return nil
}

// cmdExamine examines memory at an address
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/nf] <address>\n  n: count, f: format (x/d/u/o/t)")
	}

	count := 1
	format := 'x'
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		formatStr := args[0][1:]
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		addrArg = args[1]

		i := 0
		for i < len(formatStr) && formatStr[i] >= '0' && formatStr[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(formatStr[:i]); err == nil {
				count = n
			}
			formatStr = formatStr[i:]
		}

		if len(formatStr) > 0 {
			format = rune(formatStr[0])
		}
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("0x%04X:", address)
	for i := 0; i < count; i++ {
		value := d.VM.Mem.Peek(address)
		address++

		switch format {
		case 'd':
			d.Printf(" %d", int16(value))
		case 'u':
			d.Printf(" %d", value)
		case 'o':
			d.Printf(" %o", value)
		case 't':
			d.Printf(" %016b", value)
		default:
			d.Printf(" 0x%04X", value)
		}
	}
	d.Println()

	return nil
}

// cmdInfo displays information about program state
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showRegisters displays all register values
func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for i := 0; i < 8; i++ {
		d.Printf("  R%-2d = 0x%04X (%d)\n", i, d.VM.Reg.R[i], int16(d.VM.Reg.R[i]))
	}
	d.Printf("  PC  = 0x%04X\n", d.VM.Reg.PC)

	flags := "---"
	switch d.VM.Reg.COND {
	case vm.FlagPOS:
		flags = "--P"
	case vm.FlagZRO:
		flags = "-Z-"
	case vm.FlagNEG:
		flags = "N--"
	}
	d.Printf("  COND = [%s]\n", flags)

	return nil
}

// showBreakpoints displays all breakpoints
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		if bp.IsTrap {
			d.Printf("  %d: trap %s %s%s%s (hit %d times)\n",
				bp.ID, trapVectorName(bp.TrapVector), status, temp, condition, bp.HitCount)
			continue
		}

		d.Printf("  %d: 0x%04X %s%s%s (hit %d times)\n",
			bp.ID, bp.Address, status, temp, condition, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		d.Printf("  %d: %s %s (hit %d times, last value: 0x%04X)\n",
			wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}

	return nil
}

// cmdSet modifies register or memory values
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	if args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	target := strings.ToLower(args[0])
	valueStr := args[2]

	value, err := d.Evaluator.EvaluateExpression(valueStr, d.VM, d.Symbols)
	if err != nil {
		return err
	}

	if strings.HasPrefix(target, "*") {
		addrStr := target[1:]
		address, err := d.ResolveAddress(addrStr)
		if err != nil {
			return err
		}

		d.VM.Mem.Write(address, value)
		d.Printf("Memory 0x%04X set to 0x%04X\n", address, value)
		return nil
	}

	if target == "pc" {
		d.VM.Reg.PC = value
		d.Printf("Register pc set to 0x%04X\n", value)
		return nil
	}

	register := -1
	if strings.HasPrefix(target, "r") {
		_, err := fmt.Sscanf(target, "r%d", &register)
		if err != nil || register < 0 || register > 7 {
			return fmt.Errorf("invalid register: %s", target)
		}
	} else {
		return fmt.Errorf("invalid target: %s", target)
	}

	d.VM.Reg.R[register] = value
	d.Printf("Register %s set to 0x%04X\n", target, value)

	return nil
}

// cmdLoad loads a program image
func (d *Debugger) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <filename>")
	}

	if err := loader.LoadFile(d.VM.Mem, args[0]); err != nil {
		return err
	}

	d.Printf("Loaded %s\n", args[0])
	return nil
}

// cmdReset resets the VM
func (d *Debugger) cmdReset(args []string) error {
	d.VM.Reset()
	d.Println("VM reset")
	return nil
}

// cmdHistory shows recent commands, or with an argument searches for
// commands starting with that prefix (the same lookup "!prefix" uses).
func (d *Debugger) cmdHistory(args []string) error {
	if len(args) > 0 {
		matches := d.History.Search(strings.Join(args, " "))
		if len(matches) == 0 {
			d.Println("No matching commands")
			return nil
		}
		for _, cmd := range matches {
			d.Println(cmd)
		}
		return nil
	}

	all := d.History.GetAll()
	if len(all) == 0 {
		d.Println("No commands in history")
		return nil
	}
	for i, cmd := range all {
		d.Printf("%4d  %s\n", i+1, cmd)
	}
	return nil
}

// cmdHelp displays help information
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("LC-3 Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over JSR/JSRR/TRAP calls")
	d.Println("  finish (fin)      - Step out of current subroutine")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  break trap <name> - Break on next GETC/OUT/PUTS/IN/PUTSP/HALT trap")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch register or memory for changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  x[/nf] <addr>     - Examine memory")
	d.Println("  info (i) <what>   - Show information")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify register/memory")
	d.Println()
	d.Println("Control:")
	d.Println("  reset             - Reset VM")
	d.Println("  history [prefix]  - Show command history, or matches for prefix")
	d.Println("  !!                - Repeat the last command")
	d.Println("  !prefix           - Repeat the last command starting with prefix")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <address|label> [if <condition>]\n  Set a breakpoint at the specified address or label.\n  break trap <GETC|OUT|PUTS|IN|PUTSP|HALT> [if <condition>]\n  Break the next time that TRAP vector executes, at any address.\n  Optional condition will be evaluated each time.",
		"step":  "step\n  Execute a single instruction.",
		"next":  "next\n  Step over JSR/JSRR/TRAP calls (execute until next instruction at same level).",
		"print": "print <expression>\n  Evaluate and print an expression.\n  Expressions can include registers, memory, symbols, and arithmetic.",
		"x":     "x[/nf] <address>\n  Examine memory.\n  n: count, f: format (x/d/u/o/t)",
		"info":  "info <registers|breakpoints|watchpoints>\n  Display information about program state.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
