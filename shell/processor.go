package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
)

// Processor executes one line of the §6 command grammar at a time
// against a parameter tree, tracking a current working container the
// way a shell tracks a working directory. It implements
// hctree.LineExecutor so the same grammar backs save-file replay.
type Processor struct {
	top     *hctree.Container
	work    *hctree.Container
	out     io.Writer
	hist    History
	exiting bool
}

// NewProcessor returns a Processor rooted at top, with the working
// container initially set to top and command output written to out.
func NewProcessor(top *hctree.Container, out io.Writer) *Processor {
	return &Processor{top: top, work: top, out: out}
}

// Exiting reports whether an "exit"/"x" command has run.
func (sf *Processor) Exiting() bool {
	return sf.exiting
}

// WorkingContainer returns the current working container, e.g. for a
// REPL prompt.
func (sf *Processor) WorkingContainer() *hctree.Container {
	return sf.work
}

// Execute tokenizes and runs one command line. A '#' as the first
// non-whitespace character is a comment; a blank line is a no-op.
// Execute never returns an error for a recognized-but-failed
// protocol-level command (a get/set/call failure prints "Error
// (MNEMONIC)" to out, matching the original console) — the error
// return is reserved for I/O failures writing to out.
func (sf *Processor) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	sf.hist.Add(line)

	toks := Tokenize(line)
	if len(toks) == 0 {
		return nil
	}
	return sf.dispatch(toks)
}

func (sf *Processor) dispatch(toks []string) error {
	switch toks[0] {
	case "help", "h", "?":
		return sf.cmdHelp(toks)
	case "hist":
		return sf.cmdHist(toks)
	case "cd":
		return sf.cmdChdir(toks)
	case "ls":
		return sf.cmdList(toks)
	case "info", "i":
		return sf.cmdInfo(toks)
	case "find":
		return sf.cmdFind(toks)
	case "exit", "x":
		return sf.cmdExit(toks)
	case "call":
		return sf.cmdCall(toks)
	case "save":
		return sf.cmdSave(toks)
	case "load":
		return sf.cmdLoad(toks)
	default:
		return sf.cmdParam(toks)
	}
}

func (sf *Processor) printf(format string, a ...interface{}) error {
	_, err := fmt.Fprintf(sf.out, format, a...)
	return err
}

func (sf *Processor) printErr(code hcerr.Code) error {
	return sf.printf("Error (%s)\n", code)
}

func (sf *Processor) startCont(name string) *hctree.Container {
	if name != "" && name[0] == '/' {
		return sf.top
	}
	return sf.work
}

func (sf *Processor) cmdHelp(toks []string) error {
	if len(toks) != 1 {
		return sf.printf("Syntax: %s\n", toks[0])
	}
	lines := []string{
		`help|h|?        = Show this help information`,
		`hist            = Show command history`,
		`cd C            = Change working container to container C`,
		`ls E            = Show values of parameters or containers matching expression E`,
		`info|i E        = Show information for parameters or containers matching expression E`,
		`find E          = Show all parameters and containers matching expression E`,
		`exit|x          = Exit application`,
		`call P          = Call parameter P`,
		`P()             = Call parameter P`,
		`P(I)            = ICall parameter P with EID of I`,
		`P("E")          = ICall parameter P with EID of enum E`,
		`P=N             = Set parameter P to value N`,
		`P="S"           = Set parameter P to string or enum S`,
		`P[I]=N          = ISet parameter P with EID of I to value N`,
		`P[I]="S"        = ISet parameter P with EID of I to string or enum S`,
		`P["E"]=N        = ISet parameter P with EID of enum E to value N`,
		`P["E"]="S"      = ISet parameter P with EID of E to string or enum S`,
		`P<N             = Add value N to parameter P list`,
		`P>N             = Subtract value N from parameter P list`,
		`P<"S"           = Add string or enum S to parameter P list`,
		`P>"S"           = Subtract string or enum S from parameter P list`,
		`P@"S"           = Upload parameter P from local file S`,
		`P#"S"           = Download parameter P to local file S`,
		`save            = Save all writable parameter values to default.state`,
		`load            = Load parameter values from default.state`,
	}
	for _, l := range lines {
		if err := sf.printf("%s\n", l); err != nil {
			return err
		}
	}
	return nil
}

func (sf *Processor) cmdHist(toks []string) error {
	if len(toks) != 1 {
		return sf.printf("Syntax: %s\n", toks[0])
	}
	for _, l := range sf.hist.Lines() {
		if err := sf.printf("%s\n", l); err != nil {
			return err
		}
	}
	return nil
}

func (sf *Processor) cmdChdir(toks []string) error {
	if len(toks) != 2 {
		return sf.printf("Syntax: %s <CONTAINER NAME>\n", toks[0])
	}
	start := sf.startCont(toks[1])
	if cont := start.Resolve(toks[1]); cont != nil {
		sf.work = cont
		return nil
	}
	if start.ResolveParam(toks[1]) != nil {
		return sf.printf("%s: Not a container\n", toks[1])
	}
	return sf.printf("%s: No such container\n", toks[1])
}

func (sf *Processor) cmdList(toks []string) error {
	if len(toks) == 1 {
		return sf.showListing("*", sf.work)
	}
	for _, arg := range toks[1:] {
		if err := sf.showListing(arg, sf.startCont(arg)); err != nil {
			return err
		}
	}
	return nil
}

func (sf *Processor) showListing(pattern string, start *hctree.Container) error {
	for _, m := range start.FindMatches(pattern) {
		if m.Param != nil {
			val, code := m.Param.GetStr()
			if code != hcerr.None {
				if err := sf.printf("%s: Error (%s)\n", m.Param.Name(), code); err != nil {
					return err
				}
				continue
			}
			if err := sf.printf("%s = %s\n", m.Param.Name(), val); err != nil {
				return err
			}
		} else if m.Cont != nil {
			if err := sf.printf("%s\n", m.Cont.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sf *Processor) cmdInfo(toks []string) error {
	if len(toks) == 1 {
		return sf.showInfo("*", sf.work)
	}
	for _, arg := range toks[1:] {
		if err := sf.showInfo(arg, sf.startCont(arg)); err != nil {
			return err
		}
	}
	return nil
}

func (sf *Processor) showInfo(pattern string, start *hctree.Container) error {
	for _, m := range start.FindMatches(pattern) {
		var line string
		switch {
		case m.Param != nil:
			line = fmt.Sprintf("%s: pid=%d type=%s kind=%v access=%v",
				m.Param.Name(), m.Param.PID(), m.Param.Type(), m.Param.Kind(), m.Param.Access())
		case m.Cont != nil:
			line = fmt.Sprintf("%s/ (container)", m.Cont.Name())
		default:
			continue
		}
		if err := sf.printf("%s\n\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (sf *Processor) cmdFind(toks []string) error {
	if len(toks) < 2 {
		return sf.printf("Syntax: %s <EXPRESSION(s)>\n", toks[0])
	}
	for _, pattern := range toks[1:] {
		for _, m := range sf.top.FindRecursive(pattern) {
			switch {
			case m.Param != nil:
				if err := sf.printf("%s\n", m.Path); err != nil {
					return err
				}
			case m.Cont != nil:
				if err := sf.printf("%s/\n", m.Path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (sf *Processor) cmdExit(toks []string) error {
	if len(toks) != 1 {
		return sf.printf("Syntax: %s\n", toks[0])
	}
	sf.exiting = true
	return nil
}

func (sf *Processor) cmdCall(toks []string) error {
	if len(toks) < 2 {
		return sf.printf("Syntax: %s <CALL PARAM LIST>\n", toks[0])
	}
	for _, name := range toks[1:] {
		p := sf.startCont(name).ResolveParam(name)
		if p == nil {
			if err := sf.printf("%s: No such parameter\n", name); err != nil {
				return err
			}
			continue
		}
		if code := p.Call(); code != hcerr.None {
			if err := sf.printErr(code); err != nil {
				return err
			}
		}
	}
	return nil
}

const defaultStateFile = "default.state"

func (sf *Processor) cmdSave(toks []string) error {
	if len(toks) != 1 {
		return sf.printf("Syntax: %s\n", toks[0])
	}
	return SaveDefault(sf.top)
}

func (sf *Processor) cmdLoad(toks []string) error {
	if len(toks) != 1 {
		return sf.printf("Syntax: %s\n", toks[0])
	}
	return LoadDefault(sf)
}

// cmdParam implements ParamCmdProc: every pattern not recognized as a
// builtin is tried against the P=N/P()/P[I]=N/... grammar, ported
// token-count-and-shape for token-count-and-shape from the original
// console.
func (sf *Processor) cmdParam(toks []string) error {
	start := sf.startCont(toks[0])

	if len(toks) == 1 {
		return sf.showListing(toks[0], start)
	}

	p := start.ResolveParam(toks[0])
	if p == nil {
		return sf.printf("%s: No such parameter\n", toks[0])
	}

	n := len(toks)
	tok := func(i int) string {
		if i < n {
			return toks[i]
		}
		return ""
	}

	switch {
	case n == 3 && tok(1) == "=":
		return sf.report(p.SetStr(tok(2)))
	case n == 3 && tok(1) == "<":
		return sf.report(p.AddStr(tok(2)))
	case n == 3 && tok(1) == ">":
		return sf.report(p.SubStr(tok(2)))
	case n == 3 && tok(1) == "(" && tok(2) == ")":
		return sf.report(p.Call())
	case n == 4 && tok(1) == "=" && tok(2) == `"` && tok(3) == `"`:
		return sf.report(p.SetStrLit(""))
	case n == 4 && tok(1) == "<" && tok(2) == `"` && tok(3) == `"`:
		return sf.report(p.AddStrLit(""))
	case n == 4 && tok(1) == ">" && tok(2) == `"` && tok(3) == `"`:
		return sf.report(p.SubStrLit(""))
	case n == 4 && tok(1) == "(" && tok(3) == ")":
		eid, err := parseEID(tok(2))
		if err != nil {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.CallTbl(eid))
	case n == 5 && tok(1) == "=" && tok(2) == `"` && tok(4) == `"`:
		return sf.report(p.SetStrLit(tok(3)))
	case n == 5 && tok(1) == "<" && tok(2) == `"` && tok(4) == `"`:
		return sf.report(p.AddStrLit(tok(3)))
	case n == 5 && tok(1) == ">" && tok(2) == `"` && tok(4) == `"`:
		return sf.report(p.SubStrLit(tok(3)))
	case n == 5 && tok(1) == "@" && tok(2) == `"` && tok(4) == `"`:
		return sf.report(p.Upload(tok(3)))
	case n == 5 && tok(1) == "#" && tok(2) == `"` && tok(4) == `"`:
		return sf.report(p.Download(tok(3)))
	case n == 6 && tok(1) == "[" && tok(3) == "]" && tok(4) == "=":
		eid, err := parseEID(tok(2))
		if err != nil {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrTbl(eid, tok(5)))
	case n == 6 && tok(1) == "(" && tok(2) == `"` && tok(4) == `"` && tok(5) == ")":
		eid, ok := p.EIDStrToNum(tok(3))
		if !ok {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.CallTbl(eid))
	case n == 7 && tok(1) == "[" && tok(3) == "]" && tok(4) == "=" && tok(5) == `"` && tok(6) == `"`:
		eid, err := parseEID(tok(2))
		if err != nil {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrLitTbl(eid, ""))
	case n == 8 && tok(1) == "[" && tok(3) == "]" && tok(4) == "=" && tok(5) == `"` && tok(7) == `"`:
		eid, err := parseEID(tok(2))
		if err != nil {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrLitTbl(eid, tok(6)))
	case n == 8 && tok(1) == "[" && tok(2) == `"` && tok(4) == `"` && tok(5) == "]" && tok(6) == "=":
		eid, ok := p.EIDStrToNum(tok(3))
		if !ok {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrTbl(eid, tok(7)))
	case n == 9 && tok(1) == "[" && tok(2) == `"` && tok(4) == `"` && tok(5) == "]" && tok(6) == "=" && tok(7) == `"` && tok(8) == `"`:
		eid, ok := p.EIDStrToNum(tok(3))
		if !ok {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrTbl(eid, ""))
	case n == 10 && tok(1) == "[" && tok(2) == `"` && tok(4) == `"` && tok(5) == "]" && tok(6) == "=" && tok(7) == `"` && tok(9) == `"`:
		eid, ok := p.EIDStrToNum(tok(3))
		if !ok {
			return sf.printErr(hcerr.Eid)
		}
		return sf.report(p.SetStrLitTbl(eid, tok(8)))
	default:
		return sf.printf("Unrecognized command\n")
	}
}

func (sf *Processor) report(code hcerr.Code) error {
	if code == hcerr.None {
		return nil
	}
	return sf.printErr(code)
}

func parseEID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}
