package api

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lookbusy1344/lc3emu/config"
	"github.com/lookbusy1344/lc3emu/debugger"
	"github.com/lookbusy1344/lc3emu/loader"
	"github.com/lookbusy1344/lc3emu/vm"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: sessionID,
		Running:   session.Running(),
		PC:        session.VM.Reg.PC,
		Cycles:    session.VM.Cycles(),
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load. Unlike the
// teacher's ARM handler, there is no assembly source to parse — LC-3
// images arrive pre-assembled (spec.md's Non-goals exclude assembling), so
// this just base64-decodes the body and hands it to loader.Load.
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadImageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil || len(data) < 2 {
		writeJSON(w, http.StatusBadRequest, LoadImageResponse{Success: false, Error: "invalid image encoding"})
		return
	}

	origin := binary.BigEndian.Uint16(data[:2])

	if loadErr := loader.Load(session.VM.Mem, bytes.NewReader(data)); loadErr != nil {
		writeJSON(w, http.StatusBadRequest, LoadImageResponse{Success: false, Error: loadErr.Error()})
		return
	}

	writeJSON(w, http.StatusOK, LoadImageResponse{Success: true, Origin: origin})
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	go session.RunUntilHalt()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Program started"})
}

// handleStop handles POST /api/v1/session/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Stop()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Program stopped"})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.VM.Step(); stepErr != nil && stepErr != vm.ErrHalted {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	writeJSON(w, http.StatusOK, toRegistersResponse(session.VM))
}

// handleStepOver handles POST /api/v1/session/{id}/step-over. Single-steps
// through a JSR/JSRR/TRAP call the same way debugger.Debugger.SetStepOver
// does, since an API session has no call-stack tracking either.
func (s *Server) handleStepOver(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	instr := session.VM.Mem.Peek(session.VM.Reg.PC)
	op := vm.Opcode(instr >> 12)
	target := session.VM.Reg.PC + 1

	if op != vm.OpJSR && op != vm.OpTRAP {
		if stepErr := session.VM.Step(); stepErr != nil && stepErr != vm.ErrHalted {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
			return
		}
		writeJSON(w, http.StatusOK, toRegistersResponse(session.VM))
		return
	}

	for session.VM.Running() && session.VM.Reg.PC != target {
		if stepErr := session.VM.Step(); stepErr != nil {
			break
		}
	}

	writeJSON(w, http.StatusOK, toRegistersResponse(session.VM))
}

// handleStepOut handles POST /api/v1/session/{id}/step-out. Executes a
// single step; unlike debugger.Debugger's StepOut, it does not run on to
// the return address held in R7.
func (s *Server) handleStepOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.handleStep(w, r, sessionID)
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.VM.Reset()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "VM reset"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, toRegistersResponse(session.VM))
}

// handleGetMemory handles GET /api/v1/session/{id}/memory
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	length, err := strconv.ParseUint(query.Get("length"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid length parameter")
		return
	}

	const maxMemoryRead = 65536 // the entire LC-3 address space, in words
	if length > maxMemoryRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Length too large (max %d words)", maxMemoryRead))
		return
	}

	words := make([]uint16, length)
	addr := uint16(address) // #nosec G115 -- parseHexOrDec validates input fits in uint16
	for i := range words {
		words[i] = session.VM.Mem.Peek(addr)
		addr++
	}

	writeJSON(w, http.StatusOK, MemoryResponse{Address: uint16(address), Words: words}) // #nosec G115
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	count, err := strconv.ParseUint(query.Get("count"), 10, 32)
	if err != nil || count == 0 {
		count = 10
	}

	const maxDisassembly = 1000
	if count > maxDisassembly {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxDisassembly))
		return
	}

	addr := uint16(address) // #nosec G115 -- parseHexOrDec validates input fits in uint16
	instructions := make([]InstructionInfo, count)
	for i := range instructions {
		instructions[i] = InstructionInfo{Address: addr, Word: session.VM.Mem.Peek(addr)}
		addr++
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: instructions})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch r.Method {
	case http.MethodPost:
		session.Breakpoints.AddBreakpoint(req.Address, req.Temporary, req.Condition)
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint added"})

	case http.MethodDelete:
		if err := session.Breakpoints.DeleteBreakpointAt(req.Address); err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	bps := session.Breakpoints.GetAllBreakpoints()
	infos := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		infos[i] = BreakpointInfo{
			ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled,
			Condition: bp.Condition, HitCount: bp.HitCount,
		}
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: infos})
}

// handleSendStdin handles POST /api/v1/session/{id}/stdin
func (s *Server) handleSendStdin(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req StdinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session.Console.Feed([]byte(req.Data))

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Stdin sent"})
}

// handleGetConsoleOutput handles GET /api/v1/session/{id}/console
func (s *Server) handleGetConsoleOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, ConsoleOutputResponse{Output: session.Console.DrainOutput()})
}

// parseHexOrDec parses a string as either hexadecimal (0x prefix) or decimal
func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 16)
	}

	return strconv.ParseUint(s, 10, 16)
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wp := session.Watchpoints.AddWatchpoint(debugger.WatchReadWrite, req.Expression, req.Address, req.IsRegister, req.Register)
	if err := session.Watchpoints.InitializeWatchpoint(wp.ID, session.VM); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to initialize watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, WatchpointInfo{
		ID: wp.ID, Expression: wp.Expression, IsRegister: wp.IsRegister,
		Register: wp.Register, Address: wp.Address, Enabled: wp.Enabled,
	})
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Watchpoints.DeleteWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Watchpoint removed"})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	wps := session.Watchpoints.GetAllWatchpoints()
	infos := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		infos[i] = WatchpointInfo{
			ID: wp.ID, Expression: wp.Expression, IsRegister: wp.IsRegister,
			Register: wp.Register, Address: wp.Address, Enabled: wp.Enabled,
			LastValue: wp.LastValue, HitCount: wp.HitCount,
		}
	}

	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: infos})
}

// handleEvaluateExpression handles POST /api/v1/session/{id}/evaluate
func (s *Server) handleEvaluateExpression(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req struct {
		Expression string `json:"expression"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	evaluator := debugger.NewExpressionEvaluator()
	value, evalErr := evaluator.EvaluateExpression(req.Expression, session.VM, nil)
	if evalErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Evaluation failed: %v", evalErr))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"value": value})
}

// handleTraceControl handles POST /api/v1/session/{id}/trace/{enable|disable}
func (s *Server) handleTraceControl(w http.ResponseWriter, r *http.Request, sessionID string, action string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch action {
	case "enable":
		session.VM.Trace.Enabled = true
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace enabled"})
	case "disable":
		session.VM.Trace.Enabled = false
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace disabled"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action (must be 'enable' or 'disable')")
	}
}

// handleTraceData handles GET /api/v1/session/{id}/trace/data
func (s *Server) handleTraceData(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries := session.VM.Trace.Entries()
	apiEntries := make([]TraceEntryInfo, len(entries))
	for i, e := range entries {
		apiEntries[i] = TraceEntryInfo{
			Sequence: e.Sequence, PC: e.PC, Instr: e.Instr, Opcode: uint16(e.Opcode),
		}
	}

	writeJSON(w, http.StatusOK, TraceDataResponse{Entries: apiEntries, Count: len(apiEntries)})
}

// handleGetConfig handles GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.getDefaultConfig())
}

// handleUpdateConfig handles PUT /api/v1/config
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg ConfigResponse
	if err := readJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Accepted but not persisted: this endpoint mirrors the teacher's own
	// acknowledgement-only PUT /api/v1/config — writing to disk goes
	// through config.Config.SaveTo from the CLI, not the API server.
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Configuration updated"})
}

// getDefaultConfig returns config.DefaultConfig() translated to its API
// response shape.
func (s *Server) getDefaultConfig() ConfigResponse {
	cfg := config.DefaultConfig()
	return ConfigResponse{
		Execution: ExecutionConfig{
			MaxCycles:     cfg.Execution.MaxCycles,
			DefaultOrigin: cfg.Execution.DefaultOrigin,
			EnableTrace:   cfg.Execution.EnableTrace,
		},
		Console: ConsoleConfig{
			RawMode:        cfg.Console.RawMode,
			PollIntervalMS: cfg.Console.PollIntervalMS,
		},
		Debugger: DebuggerConfig{
			HistorySize:        cfg.Debugger.HistorySize,
			ShowRegisters:      cfg.Debugger.ShowRegisters,
			ShowConditionFlags: cfg.Debugger.ShowConditionFlags,
		},
		Display: DisplayConfig{
			NumberFormat: cfg.Display.NumberFormat,
			WordsPerLine: cfg.Display.BytesPerLine,
		},
		Trace: TraceConfig{
			OutputFile: cfg.Trace.OutputFile,
			MaxEntries: cfg.Trace.MaxEntries,
		},
	}
}

// toRegistersResponse snapshots a VM's register file into its API shape.
func toRegistersResponse(machine *vm.VM) RegistersResponse {
	cond := "Z"
	switch machine.Reg.COND {
	case vm.FlagPOS:
		cond = "P"
	case vm.FlagNEG:
		cond = "N"
	}

	return RegistersResponse{
		R0: machine.Reg.R[0], R1: machine.Reg.R[1], R2: machine.Reg.R[2], R3: machine.Reg.R[3],
		R4: machine.Reg.R[4], R5: machine.Reg.R[5], R6: machine.Reg.R[6], R7: machine.Reg.R[7],
		PC: machine.Reg.PC, Cond: cond, Cycle: machine.Cycles(),
	}
}
