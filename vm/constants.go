package vm

// ============================================================================
// LC-3 Architecture Constants
// ============================================================================
// These values are defined by the LC-3 instruction set and should not be
// modified; they are load-bearing for running real LC-3 binaries correctly.

const (
	// MemorySize is the number of 16-bit words addressable by the machine.
	MemorySize = 1 << 16

	// DefaultOrigin is the standard LC-3 user-program load address.
	DefaultOrigin uint16 = 0x3000

	// Memory-mapped I/O registers.
	KBSR uint16 = 0xFE00 // Keyboard status register
	KBDR uint16 = 0xFE02 // Keyboard data register

	// KBSRReady is the bit set in KBSR when a character is available.
	KBSRReady uint16 = 1 << 15
)

// Opcode is the top 4 bits of an instruction word.
type Opcode uint16

const (
	OpBR   Opcode = 0x0 // Branch
	OpADD  Opcode = 0x1 // Add
	OpLD   Opcode = 0x2 // Load
	OpST   Opcode = 0x3 // Store
	OpJSR  Opcode = 0x4 // Jump to subroutine / JSRR
	OpAND  Opcode = 0x5 // Bitwise AND
	OpLDR  Opcode = 0x6 // Load register (base + offset)
	OpSTR  Opcode = 0x7 // Store register (base + offset)
	OpRTI  Opcode = 0x8 // Return from interrupt (unsupported, fatal)
	OpNOT  Opcode = 0x9 // Bitwise NOT
	OpLDI  Opcode = 0xA // Load indirect
	OpSTI  Opcode = 0xB // Store indirect
	OpJMP  Opcode = 0xC // Jump / RET
	OpRES  Opcode = 0xD // Reserved (unused, fatal)
	OpLEA  Opcode = 0xE // Load effective address
	OpTRAP Opcode = 0xF // System call
)

// TrapCode identifies a trap service routine, the low byte of a TRAP
// instruction.
type TrapCode uint16

const (
	TrapGETC  TrapCode = 0x20 // Read a character, not echoed
	TrapOUT   TrapCode = 0x21 // Write a character
	TrapPUTS  TrapCode = 0x22 // Write a NUL-terminated string of words
	TrapIN    TrapCode = 0x23 // Prompt, read and echo a character
	TrapPUTSP TrapCode = 0x24 // Write a NUL-terminated string of packed bytes
	TrapHALT  TrapCode = 0x25 // Halt the VM
)

// ConditionFlag is one of the three one-hot condition-code bits.
type ConditionFlag uint16

const (
	FlagPOS ConditionFlag = 1 << 0 // Positive
	FlagZRO ConditionFlag = 1 << 1 // Zero
	FlagNEG ConditionFlag = 1 << 2 // Negative
)

// Instruction field extraction. See spec §4.5.
const (
	drShift    = 9
	drMask     = 0x7
	sr1Shift   = 6
	sr1Mask    = 0x7
	sr2Mask    = 0x7
	immFlagBit = 5
	longFlagBit = 11
)
