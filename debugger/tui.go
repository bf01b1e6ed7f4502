package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	// Core components
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	// State
	CurrentAddress uint16
	MemoryAddress  uint16
	Running        bool

	// Source code cache
	SourceLines []string
	SourceFile  string
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger:       debugger,
		App:            tview.NewApplication(),
		CurrentAddress: 0,
		MemoryAddress:  0,
		Running:        false,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen creates a TUI bound to an explicit tcell.Screen, for
// testing against tcell's SimulationScreen instead of a real terminal.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	tui := &TUI{
		Debugger:       debugger,
		App:            tview.NewApplication().SetScreen(screen),
		CurrentAddress: 0,
		MemoryAddress:  0,
		Running:        false,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(t.handleCommandKey)
}

// handleCommandKey lets Up/Down recall previous commands from the
// debugger's command history, the way a shell history does.
func (t *TUI) handleCommandKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if cmd := t.Debugger.History.Previous(); cmd != "" {
			t.CommandInput.SetText(cmd)
		}
		return nil
	case tcell.KeyDown:
		t.CommandInput.SetText(t.Debugger.History.Next())
		return nil
	}
	return event
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	// Left panel: Source and Disassembly
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.DisassemblyView, 0, 2, false)

	// Right panel top: Registers and Memory (LC-3 has no hardware stack)
	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input
func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand executes a debugger command
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)

	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	first := true
	for t.Debugger.Running {
		if stop, reason := t.Debugger.ShouldBreak(); !first && stop {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %s at PC=0x%04X\n", reason, t.Debugger.VM.Reg.PC))
			break
		}
		first = false
		if stepErr := t.Debugger.VM.Step(); stepErr != nil {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %v\n", stepErr))
			break
		}
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text)) // Ignore write errors in TUI
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView updates the source code view
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	if len(t.Debugger.SourceMap) == 0 {
		t.SourceView.SetText("[yellow]No source code available[white]")
		return
	}

	pc := t.Debugger.VM.Reg.PC

	var lines []string
	startAddr := pc - CodeContextLinesBeforeCompact
	if startAddr > pc { // underflow
		startAddr = 0
	}

	for addr := startAddr; addr < pc+CodeContextLinesAfterCompact; addr++ {
		if sourceLine, exists := t.Debugger.SourceMap[addr]; exists {
			marker := "  "
			color := "white"
			if addr == pc {
				marker = "->"
				color = "yellow"
			}

			if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
				marker = "* "
			}

			line := fmt.Sprintf("[%s]%s 0x%04X: %s[white]", color, marker, addr, sourceLine)
			lines = append(lines, line)
		}
		if addr == 0xFFFF {
			break
		}
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView updates the register view
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	reg := t.Debugger.VM.Reg
	var lines []string

	for row := 0; row < 2; row++ {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			n := row*RegisterGroupSize + col
			cols = append(cols, fmt.Sprintf("R%d: 0x%04X", n, reg.R[n]))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("PC: 0x%04X", reg.PC))

	flags := "---"
	switch reg.COND {
	case 1:
		flags = "--[green]P[white]"
	case 2:
		flags = "-[blue]Z[white]-"
	case 4:
		flags = "[red]N[white]--"
	}
	lines = append(lines, fmt.Sprintf("COND: [%s]", flags))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateMemoryView updates the memory view, laid out in 16-bit words per row
// since LC-3 memory is word-addressed, not byte-addressed.
func (t *TUI) UpdateMemoryView() {
	t.MemoryView.Clear()

	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.VM.Reg.PC
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: 0x%04X[white]", addr))

	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + uint16(row*MemoryDisplayWordsPerRow)

		line := fmt.Sprintf("0x%04X: ", rowAddr)

		var words []string
		for col := 0; col < MemoryDisplayWordsPerRow; col++ {
			wordAddr := rowAddr + uint16(col)
			words = append(words, fmt.Sprintf("%04X", t.Debugger.VM.Mem.Peek(wordAddr)))
		}

		line += strings.Join(words, " ")
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateDisassemblyView updates the disassembly view
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	pc := t.Debugger.VM.Reg.PC

	var lines []string

	startAddr := pc - 8
	if startAddr > pc { // underflow
		startAddr = 0
	}

	for i := 0; i < 16; i++ {
		addr := startAddr + uint16(i)

		instr := t.Debugger.VM.Mem.Peek(addr)

		marker := "  "
		color := "white"
		if addr == pc {
			marker = "->"
			color = "yellow"
		}

		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		line := fmt.Sprintf("[%s]%s 0x%04X: 0x%04X[white]", color, marker, addr, instr)

		if sym := t.findSymbolForAddress(addr); sym != "" {
			line = fmt.Sprintf("[%s]%s 0x%04X: 0x%04X  <%s>[white]", color, marker, addr, instr, sym)
		}

		lines = append(lines, line)
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints and watchpoints view
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status := "enabled"
			color := "green"
			if !bp.Enabled {
				status = "disabled"
				color = "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] 0x%04X", bp.ID, color, status, bp.Address)

			if sym := t.findSymbolForAddress(bp.Address); sym != "" {
				line += fmt.Sprintf(" <%s>", sym)
			}

			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}

			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)

			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			line := fmt.Sprintf("  %d: watch %s = 0x%04X", wp.ID, wp.Expression, wp.LastValue)
			lines = append(lines, line)
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// findSymbolForAddress finds a symbol name for an address
func (t *TUI) findSymbolForAddress(addr uint16) string {
	for sym, symAddr := range t.Debugger.Symbols {
		if symAddr == addr {
			return sym
		}
	}
	return ""
}

// Run starts the TUI application
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]LC-3 Debugger TUI[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application
func (t *TUI) Stop() {
	t.App.Stop()
}

// LoadSource loads source code for display
func (t *TUI) LoadSource(filename string, lines []string) {
	t.SourceFile = filename
	t.SourceLines = lines
	t.UpdateSourceView()
}
