package api

import "time"

// SessionCreateRequest configures a new session. LC-3's address space and
// register file are fixed size, so unlike the teacher's ARM session
// (MemorySize/StackSize/HeapSize/FSRoot) there is nothing to size here;
// MaxCycles optionally caps the session's /run the way
// config.Config.Execution.MaxCycles caps a headless CLI run.
type SessionCreateRequest struct {
	MaxCycles uint64 `json:"maxCycles,omitempty"`
}

// SessionCreateResponse is returned after a session is created.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse reports a session's current execution state.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	Running   bool   `json:"running"`
	PC        uint16 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
}

// LoadImageRequest carries an LC-3 object image to load: a big-endian
// origin word followed by the program's payload words (spec §4.4). There is
// no LoadProgramRequest{Source string} here the way the teacher's ARM
// session takes assembly text to parse — assembling LC-3 source is a
// non-goal, so sessions load images, not source.
type LoadImageRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// LoadImageResponse reports the result of loading an image.
type LoadImageResponse struct {
	Success bool   `json:"success"`
	Origin  uint16 `json:"origin,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegistersResponse mirrors the LC-3 register file: eight general
// registers, PC, and the one-hot condition flags, in place of the
// teacher's sixteen ARM registers and CPSR.
type RegistersResponse struct {
	R0    uint16 `json:"r0"`
	R1    uint16 `json:"r1"`
	R2    uint16 `json:"r2"`
	R3    uint16 `json:"r3"`
	R4    uint16 `json:"r4"`
	R5    uint16 `json:"r5"`
	R6    uint16 `json:"r6"`
	R7    uint16 `json:"r7"`
	PC    uint16 `json:"pc"`
	Cond  string `json:"cond"` // "N", "Z", or "P"
	Cycle uint64 `json:"cycle"`
}

// MemoryResponse returns a contiguous run of words starting at Address.
type MemoryResponse struct {
	Address uint16   `json:"address"`
	Words   []uint16 `json:"words"`
}

// InstructionInfo is one addressed memory word shown in the disassembly
// view. This implementation carries no opcode-to-mnemonic table (see
// debugger/tui.go's hex-only disassembly panel), so this mirrors that: the
// raw word plus whatever symbol resolves to it.
type InstructionInfo struct {
	Address uint16 `json:"address"`
	Word    uint16 `json:"word"`
	Symbol  string `json:"symbol,omitempty"`
}

// DisassemblyResponse is a run of InstructionInfo starting at a requested
// address.
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// BreakpointRequest names an address to set or clear a breakpoint at.
type BreakpointRequest struct {
	Address   uint16 `json:"address"`
	Temporary bool   `json:"temporary,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointInfo describes one breakpoint.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	Address   uint16 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition,omitempty"`
	HitCount  int    `json:"hitCount"`
}

// BreakpointsResponse lists all breakpoints in a session.
type BreakpointsResponse struct {
	Breakpoints []BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest describes a new watchpoint: either a register (Register
// 0-7 for R0-R7, 8 for PC) or a memory address.
type WatchpointRequest struct {
	IsRegister bool   `json:"isRegister"`
	Register   int    `json:"register,omitempty"`
	Address    uint16 `json:"address,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// WatchpointInfo describes one watchpoint.
type WatchpointInfo struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	IsRegister bool   `json:"isRegister"`
	Register   int    `json:"register,omitempty"`
	Address    uint16 `json:"address,omitempty"`
	Enabled    bool   `json:"enabled"`
	LastValue  uint16 `json:"lastValue"`
	HitCount   int    `json:"hitCount"`
}

// WatchpointsResponse lists all watchpoints in a session.
type WatchpointsResponse struct {
	Watchpoints []WatchpointInfo `json:"watchpoints"`
}

// TraceEntryInfo mirrors one vm.TraceEntry for JSON transport.
type TraceEntryInfo struct {
	Sequence uint64 `json:"sequence"`
	PC       uint16 `json:"pc"`
	Instr    uint16 `json:"instr"`
	Opcode   uint16 `json:"opcode"`
}

// TraceDataResponse returns a session's recorded execution trace.
type TraceDataResponse struct {
	Entries []TraceEntryInfo `json:"entries"`
	Count   int              `json:"count"`
}

// StdinRequest delivers host keystrokes into a session's console, the API
// equivalent of typing at KBSR/KBDR.
type StdinRequest struct {
	Data string `json:"data"`
}

// ConsoleOutputResponse drains and returns accumulated console output.
type ConsoleOutputResponse struct {
	Output string `json:"output"`
}

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is the JSON body returned for acknowledgement-only
// requests.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ConfigResponse mirrors config.Config for GET/PUT /api/v1/config.
type ConfigResponse struct {
	Execution ExecutionConfig `json:"execution"`
	Console   ConsoleConfig   `json:"console"`
	Debugger  DebuggerConfig  `json:"debugger"`
	Display   DisplayConfig   `json:"display"`
	Trace     TraceConfig     `json:"trace"`
}

// ExecutionConfig mirrors config.Config.Execution.
type ExecutionConfig struct {
	MaxCycles     uint64 `json:"maxCycles"`
	DefaultOrigin string `json:"defaultOrigin"`
	EnableTrace   bool   `json:"enableTrace"`
}

// ConsoleConfig mirrors config.Config.Console.
type ConsoleConfig struct {
	RawMode        bool `json:"rawMode"`
	PollIntervalMS int  `json:"pollIntervalMs"`
}

// DebuggerConfig mirrors config.Config.Debugger.
type DebuggerConfig struct {
	HistorySize        int  `json:"historySize"`
	ShowRegisters      bool `json:"showRegisters"`
	ShowConditionFlags bool `json:"showConditionFlags"`
}

// DisplayConfig mirrors config.Config.Display, renamed from
// BytesPerLine to WordsPerLine since LC-3 memory is word-addressed.
type DisplayConfig struct {
	NumberFormat string `json:"numberFormat"`
	WordsPerLine int    `json:"wordsPerLine"`
}

// TraceConfig mirrors config.Config.Trace.
type TraceConfig struct {
	OutputFile string `json:"outputFile"`
	MaxEntries int    `json:"maxEntries"`
}
