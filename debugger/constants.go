package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency controls how often the TUI display updates during continuous execution
	// (every N cycles to keep display responsive without overwhelming the terminal)
	DisplayUpdateFrequency = 100
)

// Code View Context Constants
const (
	// CodeContextLinesBefore is the default number of lines to show before PC in the full code view
	CodeContextLinesBefore = 20

	// CodeContextLinesAfter is the default number of lines to show after PC in the full code view
	CodeContextLinesAfter = 80

	// CodeContextLinesBeforeCompact is the number of lines to show before PC in compact views
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of lines to show after PC in compact views
	CodeContextLinesAfterCompact = 10
)

// Memory Display Constants. LC-3 memory is word-addressed, not byte-addressed,
// so the hex dump view is laid out in 16-bit words per row rather than bytes.
const (
	// MemoryDisplayRows is the number of rows to show in the memory hex dump view
	MemoryDisplayRows = 16

	// MemoryDisplayWordsPerRow is the number of 16-bit words displayed per row
	MemoryDisplayWordsPerRow = 8
)

// Register Display Constants
const (
	// RegisterViewRows is the fixed height of the register view panel
	// (R0-R7 + PC + COND + status line + borders)
	RegisterViewRows = 12

	// RegisterGroupSize is the number of registers displayed per row
	RegisterGroupSize = 4
)
