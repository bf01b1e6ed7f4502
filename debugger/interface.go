package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lookbusy1344/lc3emu/vm"
)

// RunCLI runs the command-line debugger interface
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(lc3-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		output := dbg.GetOutput()
		if output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			// The first instruction always executes, so a step runs one
			// instruction and a continue moves past the breakpoint it
			// stopped at.
			first := true
			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); !first && shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at PC=0x%04X\n", reason, dbg.VM.Reg.PC)
					break
				}
				first = false

				if err := dbg.VM.Step(); err != nil {
					dbg.Running = false
					if errors.Is(err, vm.ErrHalted) {
						fmt.Println("Program halted")
					} else {
						fmt.Printf("Runtime error: %v\n", err)
					}
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the TUI (Text User Interface) debugger
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
