package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"

	"github.com/npillmayer/nedmacro/asm"
	"github.com/npillmayer/nedmacro/builtins"
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
)

const (
	prompt     = "nmrepl> "
	contPrompt = "   ...> "
)

// tracerKeys lists the tracers of this module; the -trace flag applies to
// all of them, unless configured otherwise.
var tracerKeys = []string{
	"nedmacro.value",
	"nedmacro.runtime",
	"nedmacro.vm",
	"nedmacro.asm",
	"nedmacro.builtins",
	"nedmacro.repl",
}

// main() starts an interactive CLI ("NMREPL"), where users may enter macro
// programs in assembler notation. NMREPL executes top-level code immediately
// and prints the result. It is a sandbox for experiments with the macro
// virtual machine.
//
// Please refer to packages "vm" and "asm".
//
func main() {
	initDisplay()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial load")
	flag.Parse()
	conf := initConfig(*tlevel)
	pterm.Info.Println("Welcome to NMREPL") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up machine, built-ins and a scratch document
	m := vm.NewMachine(vm.ConfigFrom(conf))
	intp := &Intp{
		m:   m,
		env: builtins.Install(m),
		doc: builtins.NewTextDocument("scratch", strings.Join(flag.Args(), " ")),
	}
	//
	// set up REPL
	if term.IsTerminal(int(os.Stdin.Fd())) {
		repl, err := readline.New(prompt)
		if err != nil {
			tracer().Errorf(err.Error())
			os.Exit(3)
		}
		defer repl.Close()
		intp.repl = repl
		tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	} else {
		intp.input = bufio.NewScanner(os.Stdin)
	}
	intp.loadInitFile(*initf) // init file name provided by flag
	intp.REPL()               // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// initConfig loads the application configuration and sets up tracing.
// Trace levels which are not configured explicitly are set to level.
func initConfig(level string) schuko.Configuration {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := koanfadapter.New(nil, "nmrepl", []string{"nt"})
	gconf.Initialize(conf)
	if !conf.IsSet("trace.root") {
		conf.Set("trace.root", level)
	}
	for _, key := range tracerKeys {
		if !conf.IsSet("trace." + key) {
			conf.Set("trace."+key, level)
		}
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		pterm.Error.Println(err.Error())
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return conf
}

// Intp is our interpreter object
type Intp struct {
	m     *vm.Machine
	env   *builtins.Env
	doc   *builtins.TextDocument
	repl  *readline.Instance // nil if stdin is not a terminal
	input *bufio.Scanner     // used if stdin is not a terminal
	last  *vm.Snapshot       // state at the most recent suspension
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()
	src, err := io.ReadAll(f)
	if err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
		return
	}
	if _, err := intp.Eval(string(src)); err != nil {
		tracer().Errorf("Error in init file %s: %v", filename, err)
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		unit, err := intp.readUnit()
		if err != nil { // io.EOF or interrupt
			break
		}
		if unit == "" {
			continue
		}
		quit, err := intp.Eval(unit)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// readLine reads the next line of input, with prompt p if interactive.
func (intp *Intp) readLine(p string) (string, error) {
	if intp.repl != nil {
		intp.repl.SetPrompt(p)
		return intp.repl.Readline()
	}
	if !intp.input.Scan() {
		if err := intp.input.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return intp.input.Text(), nil
}

// readUnit reads a line of input, or several lines if a define block is
// opened, until all define blocks are closed.
func (intp *Intp) readUnit() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		p := prompt
		if depth > 0 {
			p = contPrompt
		}
		line, err := intp.readLine(p)
		if err != nil {
			if depth > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil // let the assembler complain
			}
			return "", err
		}
		if depth == 0 && strings.TrimSpace(line) == "" {
			return "", nil
		}
		b.WriteString(line)
		b.WriteByte('\n')
		switch keyword(line) {
		case "define":
			depth++
		case "end":
			depth--
		}
		if depth <= 0 {
			return b.String(), nil
		}
	}
}

// keyword returns the first word of a line of assembler text, or "".
func keyword(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Eval evaluates a REPL command or a unit of assembler text.
//
func (intp *Intp) Eval(text string) (bool, error) {
	if t := strings.TrimSpace(text); strings.HasPrefix(t, ":") {
		return intp.command(t)
	}
	prog, err := asm.Assemble(intp.m, "repl", text)
	if err != nil {
		return false, err
	}
	tracer().Debugf("\n%s", prog.Disassemble())
	result, err := intp.run(prog)
	if err != nil {
		return false, err
	}
	intp.printResult(result)
	return false, nil
}

// run executes a program until it completes, resuming it after each time
// slice and serving the requests of suspending built-ins. <ctrl>C preempts
// the macro and abandons it.
func (intp *Intp) run(prog *vm.Program) (value.Value, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var interrupted int32
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			atomic.StoreInt32(&interrupted, 1)
			intp.m.PreemptMacro()
			cancel()
		case <-ctx.Done():
		}
	}()
	status, result, cont, err := intp.m.Execute(intp.doc, prog, nil)
	slices := 1
	for {
		if cont != nil {
			snap := cont.Snapshot()
			intp.last = &snap
			if atomic.LoadInt32(&interrupted) != 0 {
				pterm.Warning.Println(fmt.Sprintf("macro %s interrupted after %d time slices", cont.Macro(), slices))
				return value.None(), intp.m.FreeContinuation(cont)
			}
		}
		switch status {
		case vm.MacroDone:
			tracer().Debugf("macro completed after %d time slices", slices)
			return result, nil
		case vm.MacroError:
			return value.None(), err
		case vm.MacroPreempt:
			v, err := intp.serve(ctx, cont)
			if err != nil {
				intp.m.FreeContinuation(cont)
				return value.None(), err
			}
			if !v.IsNone() {
				cont.ModifyReturnedValue(v)
			}
		}
		slices++
		status, result, cont, err = intp.m.Continue(cont)
	}
}

// serve handles the request attached to a preempted macro. A result of
// the no-value leaves the macro's stack alone.
func (intp *Intp) serve(ctx context.Context, cont *vm.Continuation) (value.Value, error) {
	switch req := cont.Pending().(type) {
	case nil:
		return value.None(), nil
	case *builtins.ShellCommand:
		tracer().Infof("running shell command %q", req.Command)
		out, err := intp.env.RunShellCommand(ctx, req)
		if err != nil {
			return value.None(), err
		}
		return value.String(out), nil
	case *builtins.WaitRequest:
		p := req.Name + "? "
		if len(req.Args) > 0 {
			p = req.Name + " (" + strings.Join(req.Args, ", ") + ")? "
		}
		answer, err := intp.readLine(p)
		if err != nil {
			return value.None(), err
		}
		return value.String(answer), nil
	default:
		return value.None(), fmt.Errorf("macro %s waits for unknown request %T", cont.Macro(), req)
	}
}

func (intp *Intp) printResult(result value.Value) {
	if result.IsNone() {
		pterm.Info.Println("(no value)")
		return
	}
	if arr, ok := result.Array(); ok {
		pterm.Println(fmt.Sprintf("array[%d]", arr.Size()))
		root := pterm.NewTreeFromLeveledList(leveledArray(arr, pterm.LeveledList{}, 0))
		pterm.DefaultTree.WithRoot(root).Render()
		return
	}
	pterm.Info.Println(result.String())
}

func leveledArray(arr *value.Array, ll pterm.LeveledList, level int) pterm.LeveledList {
	for _, key := range arr.Keys() {
		v, _ := arr.Get(key)
		display := strings.ReplaceAll(key, value.DimSeparator, ",")
		if sub, ok := v.Array(); ok {
			ll = append(ll, pterm.LeveledListItem{Level: level, Text: display})
			ll = leveledArray(sub, ll, level+1)
			continue
		}
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  display + " = " + v.String(),
		})
	}
	return ll
}

// --- Commands --------------------------------------------------------------

func (intp *Intp) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":globals":
		intp.showGlobals()
	case ":gc":
		n := intp.m.Collect()
		pterm.Info.Println(fmt.Sprintf("%d strings reclaimed", n))
	case ":doc":
		if len(fields) > 1 {
			text := strings.TrimSpace(strings.TrimPrefix(line, ":doc"))
			if err := intp.doc.Replace(0, intp.doc.Length(), text); err != nil {
				return false, err
			}
			intp.doc.SetCursor(0)
		}
		text, cursor := intp.doc.Text(), intp.doc.Cursor()
		pterm.Info.Println(fmt.Sprintf("%s[%d] %q‸%q", intp.doc.Name(), cursor, text[:cursor], text[cursor:]))
	case ":stack":
		intp.showStack()
	case ":dis":
		if len(fields) != 2 {
			return false, errors.New("usage: :dis <macro>")
		}
		prog, err := intp.m.LookupMacro(fields[1])
		if err != nil {
			return false, err
		}
		pterm.Println(prog.Disassemble())
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func (intp *Intp) showGlobals() {
	var syms []*runtime.Symbol
	intp.m.Runtime().Globals().Symbols().Each(func(_ string, sym *runtime.Symbol) {
		syms = append(syms, sym)
	})
	if len(syms) == 0 {
		pterm.Info.Println("no globals")
		return
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name() < syms[j].Name() })
	data := [][]string{{"Name", "Kind", "Value"}}
	for _, sym := range syms {
		v := sym.Value.String()
		if prog, ok := sym.Value.Internal().(*vm.Program); ok {
			v = prog.String()
		}
		data = append(data, []string{sym.Name(), sym.Kind.String(), v})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) showStack() {
	if intp.last == nil {
		pterm.Info.Println("no macro has been suspended")
		return
	}
	snap := intp.last
	pterm.Println(fmt.Sprintf("%s in %s at %d", snap.Status, snap.Macro, snap.PC))
	var ll pterm.LeveledList
	for _, f := range snap.Frames {
		ll = append(ll, pterm.LeveledListItem{Level: 0, Text: fmt.Sprintf("%s @%d", f.Macro, f.PC)})
		if len(f.Args) > 0 {
			ll = append(ll, pterm.LeveledListItem{Level: 1, Text: "args: " + strings.Join(f.Args, ", ")})
		}
		if len(f.Locals) > 0 {
			ll = append(ll, pterm.LeveledListItem{Level: 1, Text: "locals: " + strings.Join(f.Locals, ", ")})
		}
	}
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}
