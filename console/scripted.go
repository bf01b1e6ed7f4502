package console

import "sync"

// Scripted is an in-memory vm.Console: a queue of input bytes fed in
// ahead of time and a captured output buffer, for headless test and
// debugger-session use (spec §9 design note: "enables headless testing
// with a scripted input stream").
type Scripted struct {
	mu     sync.Mutex
	input  []byte
	output []byte
}

// NewScripted returns a Scripted console pre-loaded with input.
func NewScripted(input string) *Scripted {
	return &Scripted{input: []byte(input)}
}

// Feed appends more bytes to the input queue, for interactive debugger use
// where input arrives after the console is constructed.
func (s *Scripted) Feed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = append(s.input, data...)
}

func (s *Scripted) KeyAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.input) > 0
}

func (s *Scripted) ReadChar() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.input) == 0 {
		return 0
	}
	b := s.input[0]
	s.input = s.input[1:]
	return b
}

func (s *Scripted) WriteChar(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = append(s.output, b)
}

func (s *Scripted) Flush() {}

// Output returns a copy of everything written so far.
func (s *Scripted) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.output)
}
