// Package console implements vm.Console over a real terminal, and provides
// a scripted in-memory double for headless use. Terminal raw-mode setup
// and restore are the bootstrap's responsibility per spec §1 and §5; this
// package is the scoped-acquisition collaborator main.go drives.
package console

import (
	"bufio"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// TermConsole is the production vm.Console, backed by the process's stdin
// and stdout. golang.org/x/term is already pulled in transitively by the
// teacher's terminal-facing dependency tree (gdamore/tcell); this package
// promotes it to a direct dependency for the raw-mode primitive spec §4.3
// and §5 require ("echo and line buffering MUST be disabled").
type TermConsole struct {
	in        *os.File
	out       *bufio.Writer
	oldState  *term.State
	pollEvery time.Duration
	pending   []byte // bytes KeyAvailable read ahead of ReadChar
}

// New returns a TermConsole reading from in and writing through a buffered
// wrapper of out. pollEvery bounds how long KeyAvailable may wait; spec
// §4.3 allows up to roughly one second.
func New(in *os.File, out io.Writer, pollEvery time.Duration) *TermConsole {
	if pollEvery <= 0 {
		pollEvery = time.Second
	}
	return &TermConsole{
		in:        in,
		out:       bufio.NewWriter(out),
		pollEvery: pollEvery,
	}
}

// EnableRawMode disables echo and line buffering on the console's input
// file descriptor, per spec §4.3. It is a scoped acquisition: callers must
// pair every successful EnableRawMode with a Restore, including on fatal
// and signal-interrupted exit paths (spec §5).
func (c *TermConsole) EnableRawMode() error {
	fd := int(c.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	c.oldState = state
	return nil
}

// Restore returns the console's input file descriptor to the mode captured
// by EnableRawMode. Safe to call even if EnableRawMode was never called or
// already failed.
func (c *TermConsole) Restore() error {
	if c.oldState == nil {
		return nil
	}
	fd := int(c.in.Fd())
	err := term.Restore(fd, c.oldState)
	c.oldState = nil
	return err
}

// KeyAvailable polls stdin for up to pollEvery for a single byte. A byte
// read this way is not lost: it is buffered for the next ReadChar.
func (c *TermConsole) KeyAvailable() bool {
	if len(c.pending) > 0 {
		return true
	}

	_ = c.in.SetReadDeadline(time.Now().Add(c.pollEvery))
	defer c.in.SetReadDeadline(time.Time{})

	buf := make([]byte, 1)
	n, err := c.in.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	c.pending = append(c.pending, buf[0])
	return true
}

// ReadChar blocks until one character is available, draining any byte
// KeyAvailable already buffered first.
func (c *TermConsole) ReadChar() byte {
	if len(c.pending) > 0 {
		b := c.pending[0]
		c.pending = c.pending[1:]
		return b
	}
	buf := make([]byte, 1)
	for {
		n, err := c.in.Read(buf)
		if n > 0 {
			return buf[0]
		}
		if err != nil && err != io.EOF {
			return 0
		}
	}
}

// WriteChar writes one byte to the buffered output.
func (c *TermConsole) WriteChar(b byte) {
	_ = c.out.WriteByte(b)
}

// Flush flushes buffered output to the underlying writer.
func (c *TermConsole) Flush() {
	_ = c.out.Flush()
}
