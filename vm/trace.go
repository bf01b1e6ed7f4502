package vm

import "fmt"

// TraceEntry is one fetched-and-executed instruction, recorded for tests
// and diagnostics that need to observe the PC path a program actually
// took (spec §8 scenario 4: asserting a branch target was, or was not,
// reached).
type TraceEntry struct {
	Sequence uint64 // instruction sequence number, starting at 0
	PC       uint16 // address the instruction was fetched from
	Instr    uint16 // the raw instruction word
	Opcode   Opcode
}

// ExecutionTrace is a bounded ring buffer of TraceEntry, grounded on the
// teacher's vm/trace.go ExecutionTrace but trimmed to the PC/opcode shape
// this domain's tests need — LC-3 has no register-bank-wide trace
// requirement the way the ARM debugger's trace view does.
type ExecutionTrace struct {
	Enabled    bool
	MaxEntries int

	entries  []TraceEntry
	sequence uint64
}

// NewExecutionTrace returns a disabled trace with the given capacity. Set
// Enabled = true to start recording.
func NewExecutionTrace(maxEntries int) *ExecutionTrace {
	if maxEntries <= 0 {
		maxEntries = 100000
	}
	return &ExecutionTrace{
		MaxEntries: maxEntries,
		entries:    make([]TraceEntry, 0, 1024),
	}
}

// record appends one entry if the trace is enabled; once MaxEntries are
// held, the oldest entry is dropped to make room.
func (t *ExecutionTrace) record(pc, instr uint16, op Opcode) {
	if t == nil || !t.Enabled {
		return
	}
	if len(t.entries) >= t.MaxEntries {
		t.entries = t.entries[len(t.entries)-t.MaxEntries+1:]
	}
	t.entries = append(t.entries, TraceEntry{
		Sequence: t.sequence,
		PC:       pc,
		Instr:    instr,
		Opcode:   op,
	})
	t.sequence++
}

// Entries returns all recorded entries.
func (t *ExecutionTrace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	return t.entries
}

// VisitedPC reports whether any recorded entry was fetched from addr.
func (t *ExecutionTrace) VisitedPC(addr uint16) bool {
	if t == nil {
		return false
	}
	for _, e := range t.entries {
		if e.PC == addr {
			return true
		}
	}
	return false
}

// Clear empties the trace and resets the sequence counter.
func (t *ExecutionTrace) Clear() {
	if t == nil {
		return
	}
	t.entries = t.entries[:0]
	t.sequence = 0
}

func (e TraceEntry) String() string {
	return fmt.Sprintf("[%06d] 0x%04X: 0x%04X (op=%X)", e.Sequence, e.PC, e.Instr, e.Opcode)
}
