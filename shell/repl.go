package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// REPL drives a Processor interactively over a terminal, using liner
// for line editing and history recall instead of hand-rolled ANSI
// escape handling (spec §9).
type REPL struct {
	proc *Processor
	out  io.Writer
	line *liner.State
}

// NewREPL returns a REPL driving proc, writing prompts and command
// output to out.
func NewREPL(proc *Processor, out io.Writer) *REPL {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &REPL{proc: proc, out: out, line: l}
}

// Close releases the underlying terminal state.
func (sf *REPL) Close() error {
	return sf.line.Close()
}

// Run reads and executes lines until EOF, Ctrl-D, Ctrl-C, or an
// "exit"/"x" command sets the Processor's exiting flag.
func (sf *REPL) Run() error {
	defer sf.Close()
	for !sf.proc.Exiting() {
		prompt := sf.prompt()
		text, err := sf.line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) != "" {
			sf.line.AppendHistory(text)
		}
		if err := sf.proc.Execute(text); err != nil {
			fmt.Fprintf(sf.out, "Error: %v\n", err)
		}
	}
	return nil
}

func (sf *REPL) prompt() string {
	work := sf.proc.WorkingContainer()
	if work.IsRoot() {
		return "/> "
	}
	return work.Path() + "> "
}
