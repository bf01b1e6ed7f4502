package vm

// Field extractors for the 16-bit instruction word i. See spec §4.5.

func destReg(i uint16) int   { return int((i >> drShift) & drMask) }
func sr1Reg(i uint16) int    { return int((i >> sr1Shift) & sr1Mask) }
func baseReg(i uint16) int   { return int((i >> sr1Shift) & sr1Mask) } // same field as SR1
func isImmediate(i uint16) bool { return (i>>immFlagBit)&1 == 1 }
func pcOffset9(i uint16) uint16 { return SignExtend(i&0x1FF, 9) }
func offset6(i uint16) uint16   { return SignExtend(i&0x3F, 6) }
func condMask(i uint16) ConditionFlag { return ConditionFlag((i >> drShift) & drMask) }

// execBR: if cond_mask & COND != 0, PC += pc_offset9.
func (vm *VM) execBR(i uint16) {
	if uint16(condMask(i))&uint16(vm.Reg.COND) != 0 {
		vm.Reg.PC += pcOffset9(i)
	}
}

// execADD: DR <- SR1 + (imm5 or SR2). Updates flags.
func (vm *VM) execADD(i uint16) {
	dr, sr1 := destReg(i), sr1Reg(i)
	if isImmediate(i) {
		imm5 := SignExtend(i&0x1F, 5)
		vm.Reg.R[dr] = vm.Reg.R[sr1] + imm5
	} else {
		sr2 := int(i & sr2Mask)
		vm.Reg.R[dr] = vm.Reg.R[sr1] + vm.Reg.R[sr2]
	}
	vm.Reg.UpdateFlags(dr)
}

// execAND: DR <- SR1 & (imm5 or SR2). Updates flags.
func (vm *VM) execAND(i uint16) {
	dr, sr1 := destReg(i), sr1Reg(i)
	if isImmediate(i) {
		imm5 := SignExtend(i&0x1F, 5)
		vm.Reg.R[dr] = vm.Reg.R[sr1] & imm5
	} else {
		sr2 := int(i & sr2Mask)
		vm.Reg.R[dr] = vm.Reg.R[sr1] & vm.Reg.R[sr2]
	}
	vm.Reg.UpdateFlags(dr)
}

// execNOT: DR <- ^SR1. Updates flags.
func (vm *VM) execNOT(i uint16) {
	dr, sr1 := destReg(i), sr1Reg(i)
	vm.Reg.R[dr] = ^vm.Reg.R[sr1]
	vm.Reg.UpdateFlags(dr)
}

// execLD: DR <- mem[PC + pc_offset9]. Updates flags.
func (vm *VM) execLD(i uint16) {
	dr := destReg(i)
	vm.Reg.R[dr] = vm.Mem.Read(vm.Reg.PC + pcOffset9(i))
	vm.Reg.UpdateFlags(dr)
}

// execLDI: DR <- mem[mem[PC + pc_offset9]]. Updates flags.
func (vm *VM) execLDI(i uint16) {
	dr := destReg(i)
	addr := vm.Mem.Read(vm.Reg.PC + pcOffset9(i))
	vm.Reg.R[dr] = vm.Mem.Read(addr)
	vm.Reg.UpdateFlags(dr)
}

// execLDR: DR <- mem[BaseR + offset6]. Updates flags.
func (vm *VM) execLDR(i uint16) {
	dr, base := destReg(i), baseReg(i)
	vm.Reg.R[dr] = vm.Mem.Read(vm.Reg.R[base] + offset6(i))
	vm.Reg.UpdateFlags(dr)
}

// execLEA: DR <- PC + pc_offset9. Updates flags (spec §4.5 note: this
// implementation retains the original source's flag update on LEA).
func (vm *VM) execLEA(i uint16) {
	dr := destReg(i)
	vm.Reg.R[dr] = vm.Reg.PC + pcOffset9(i)
	vm.Reg.UpdateFlags(dr)
}

// execST: mem[PC + pc_offset9] <- R[DR]. No flag update.
func (vm *VM) execST(i uint16) {
	vm.Mem.Write(vm.Reg.PC+pcOffset9(i), vm.Reg.R[destReg(i)])
}

// execSTI: mem[mem[PC + pc_offset9]] <- R[DR]. No flag update.
func (vm *VM) execSTI(i uint16) {
	addr := vm.Mem.Read(vm.Reg.PC + pcOffset9(i))
	vm.Mem.Write(addr, vm.Reg.R[destReg(i)])
}

// execSTR: mem[BaseR + offset6] <- R[DR]. No flag update.
func (vm *VM) execSTR(i uint16) {
	base := baseReg(i)
	vm.Mem.Write(vm.Reg.R[base]+offset6(i), vm.Reg.R[destReg(i)])
}

// execJMP: PC <- R[BaseR]. RET is JMP with BaseR=7.
func (vm *VM) execJMP(i uint16) {
	vm.Reg.PC = vm.Reg.R[baseReg(i)]
}

// execJSR: R7 <- PC; PC <- PC + offset11 (JSR) or R[BaseR] (JSRR).
func (vm *VM) execJSR(i uint16) {
	vm.Reg.R[7] = vm.Reg.PC
	if (i>>longFlagBit)&1 == 1 {
		vm.Reg.PC += SignExtend(i&0x7FF, 11)
	} else {
		vm.Reg.PC = vm.Reg.R[baseReg(i)]
	}
}
