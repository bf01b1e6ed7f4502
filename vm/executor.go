package vm

import "context"

// VM bundles the registers, memory, console, and running flag that every
// instruction handler operates on — spec §9's design note calls for one
// value per run rather than the source's process-wide globals, so tests
// can instantiate many independent VMs. Grounded on the teacher's
// vm/executor.go VM struct (registers + memory + execution state bundled
// together), generalized from ARM's CPU/Memory pair to LC-3's flat model.
type VM struct {
	Reg     Registers
	Mem     *Memory
	Console Console
	Trace   *ExecutionTrace

	running bool

	// MaxCycles bounds Run and the API's run loop (0 = unlimited). It
	// never fires for a default CLI run with MaxCycles left at zero, so
	// it does not change spec.md's HALT-terminates-the-loop semantics by
	// default.
	MaxCycles uint64
	cycles    uint64
}

// NewVM constructs a VM with fresh, spec-initialized registers, memory
// bound to console's MMIO hook, and the running flag set so Run/Step will
// execute.
func NewVM(console Console) *VM {
	return &VM{
		Reg:     NewRegisters(),
		Mem:     NewMemory(console),
		Console: console,
		running: true,
	}
}

// Reset returns the VM to its initial state without reallocating memory,
// for reuse across debugger sessions.
func (vm *VM) Reset() {
	vm.Reg = NewRegisters()
	vm.running = true
	vm.cycles = 0
	if vm.Trace != nil {
		vm.Trace.Clear()
	}
}

// Running reports whether the interpreter loop should keep going.
func (vm *VM) Running() bool {
	return vm.running
}

// Cycles reports the number of instructions stepped since construction or
// the last Reset, for debugger/API status reporting.
func (vm *VM) Cycles() uint64 {
	return vm.cycles
}

// Halt stops the interpreter loop without running the HALT trap's console
// output — used by the debugger/API to terminate a session administratively.
func (vm *VM) Halt() {
	vm.running = false
}

// Step fetches, decodes, and executes exactly one instruction (spec §4.7).
// PC is incremented immediately after fetch, before dispatch, so
// PC-relative addressing in the current instruction sees the incremented
// value. Step returns ErrHalted after a HALT trap has run, and
// *FatalInstructionError for RTI/RES.
func (vm *VM) Step() error {
	if !vm.running {
		return ErrHalted
	}

	fetchPC := vm.Reg.PC
	instr := vm.Mem.Read(vm.Reg.PC)
	vm.Reg.PC++

	op := Opcode(instr >> 12)
	vm.Trace.record(fetchPC, instr, op)
	vm.cycles++

	switch op {
	case OpBR:
		vm.execBR(instr)
	case OpADD:
		vm.execADD(instr)
	case OpLD:
		vm.execLD(instr)
	case OpST:
		vm.execST(instr)
	case OpJSR:
		vm.execJSR(instr)
	case OpAND:
		vm.execAND(instr)
	case OpLDR:
		vm.execLDR(instr)
	case OpSTR:
		vm.execSTR(instr)
	case OpRTI:
		vm.running = false
		return &FatalInstructionError{Opcode: OpRTI, PC: fetchPC}
	case OpNOT:
		vm.execNOT(instr)
	case OpLDI:
		vm.execLDI(instr)
	case OpSTI:
		vm.execSTI(instr)
	case OpJMP:
		vm.execJMP(instr)
	case OpRES:
		vm.running = false
		return &FatalInstructionError{Opcode: OpRES, PC: fetchPC}
	case OpLEA:
		vm.execLEA(instr)
	case OpTRAP:
		vm.dispatchTrap(instr)
	}

	if !vm.running {
		return ErrHalted
	}
	return nil
}

// Run drives Step to completion: until HALT, a fatal opcode, ctx is
// canceled, or MaxCycles is reached (if nonzero). A canceled context
// surfaces as ctx.Err() so the bootstrap can distinguish the host-interrupt
// path (spec §5) from a normal HALT.
func (vm *VM) Run(ctx context.Context) error {
	for vm.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if vm.MaxCycles > 0 && vm.cycles >= vm.MaxCycles {
			return nil
		}

		if err := vm.Step(); err != nil {
			if err == ErrHalted {
				return nil
			}
			return err
		}
	}
	return nil
}
