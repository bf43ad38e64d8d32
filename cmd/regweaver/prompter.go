package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/regweaver/regweaver/internal/engine"
	"github.com/regweaver/regweaver/internal/script"
)

// stdinPrompter asks for per-step confirmation on the terminal.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter(in io.Reader, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(in), out: out}
}

var _ engine.Prompter = (*stdinPrompter)(nil)

func (p *stdinPrompter) ConfirmStep(index int, action string, params script.Params) (engine.Decision, error) {
	fmt.Fprintf(p.out, "step %d: %s %v\n", index, action, map[string]any(params))
	for {
		fmt.Fprint(p.out, "[p]roceed / [s]kip / [a]bort? ")
		line, err := p.in.ReadString('\n')
		if err != nil {
			return engine.Abort, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "p", "proceed", "y", "yes", "":
			return engine.Proceed, nil
		case "s", "skip":
			return engine.Skip, nil
		case "a", "abort", "q":
			return engine.Abort, nil
		}
	}
}

func (p *stdinPrompter) ConfirmRun(name string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "run program %q? [y/n] ", name)
		line, err := p.in.ReadString('\n')
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
