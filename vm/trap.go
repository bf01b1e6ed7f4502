package vm

import "log"

// dispatchTrap latches R7 to the post-increment PC and dispatches on the
// low byte of the instruction word, per spec §4.6. Unknown trap codes are
// silently no-ops, as the original source does; this implementation logs a
// warning, which spec §9 allows.
func (vm *VM) dispatchTrap(i uint16) {
	vm.Reg.R[7] = vm.Reg.PC

	switch TrapCode(i & 0xFF) {
	case TrapGETC:
		vm.trapGetc()
	case TrapOUT:
		vm.trapOut()
	case TrapPUTS:
		vm.trapPuts()
	case TrapIN:
		vm.trapIn()
	case TrapPUTSP:
		vm.trapPutsp()
	case TrapHALT:
		vm.trapHalt()
	default:
		log.Printf("vm: unknown trap code 0x%02X at PC 0x%04X, ignoring", i&0xFF, vm.Reg.PC)
	}
}

// trapGetc reads one character (low 8 bits, high byte zero) into R0 and
// updates flags. Not echoed.
func (vm *VM) trapGetc() {
	vm.Reg.R[0] = uint16(vm.Console.ReadChar())
	vm.Reg.UpdateFlags(0)
}

// trapOut writes the low byte of R0 to the console and flushes.
func (vm *VM) trapOut() {
	vm.Console.WriteChar(byte(vm.Reg.R[0] & 0xFF))
	vm.Console.Flush()
}

// trapPuts writes successive words starting at R0, each interpreted as one
// character in its low byte, until a zero word, then flushes.
func (vm *VM) trapPuts() {
	addr := vm.Reg.R[0]
	for {
		w := vm.Mem.Peek(addr)
		if w == 0 {
			break
		}
		vm.Console.WriteChar(byte(w & 0xFF))
		addr++
	}
	vm.Console.Flush()
}

// trapIn prompts, reads and echoes one character into R0, and updates
// flags.
func (vm *VM) trapIn() {
	const prompt = "Enter a character: "
	for i := 0; i < len(prompt); i++ {
		vm.Console.WriteChar(prompt[i])
	}
	c := vm.Console.ReadChar()
	vm.Console.WriteChar(c)
	vm.Console.Flush()
	vm.Reg.R[0] = uint16(c)
	vm.Reg.UpdateFlags(0)
}

// trapPutsp writes successive words starting at R0 as two packed
// characters each (low byte first, then high byte if nonzero), until a
// zero word, then flushes.
func (vm *VM) trapPutsp() {
	addr := vm.Reg.R[0]
	for {
		w := vm.Mem.Peek(addr)
		if w == 0 {
			break
		}
		lo := byte(w & 0xFF)
		vm.Console.WriteChar(lo)
		hi := byte(w >> 8)
		if hi != 0 {
			vm.Console.WriteChar(hi)
		}
		addr++
	}
	vm.Console.Flush()
}

// trapHalt writes the halt banner, flushes, and stops the interpreter
// loop.
func (vm *VM) trapHalt() {
	const msg = "HALT\n"
	for i := 0; i < len(msg); i++ {
		vm.Console.WriteChar(msg[i])
	}
	vm.Console.Flush()
	vm.running = false
}
