package builtins

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
)

// Env holds host-side state shared by the built-ins of a machine.
type Env struct {
	mu          sync.Mutex
	out         io.Writer
	shell       string
	shellStatus int
	docs        map[string]nedmacro.Document // documents focus_document may switch to
}

// Option configures the built-ins' environment.
type Option func(*Env)

// WithOutput directs the output of t_print to w. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(env *Env) {
		env.out = w
	}
}

// WithShell sets the shell used by RunShellCommand. The default is /bin/sh.
func WithShell(path string) Option {
	return func(env *Env) {
		env.shell = path
	}
}

// WithDocuments makes documents known to focus_document.
func WithDocuments(docs ...nedmacro.Document) Option {
	return func(env *Env) {
		for _, doc := range docs {
			env.docs[doc.Name()] = doc
		}
	}
}

// Install registers the standard built-ins with machine m.
func Install(m *vm.Machine, opts ...Option) *Env {
	env := &Env{out: os.Stdout, shell: "/bin/sh", docs: make(map[string]nedmacro.Document)}
	for _, opt := range opts {
		opt(env)
	}
	natives := map[string]vm.NativeFunc{
		"length":            length,
		"substring":         substring,
		"toupper":           toUpper,
		"tolower":           toLower,
		"search_string":     searchString,
		"replace_in_string": replaceInString,
		"split":             split,
		"t_print":           env.tPrint,
		"get_range":         getRange,
		"replace_range":     replaceRange,
		"insert_string":     insertString,
		"get_character":     getCharacter,
		"shell_command":     shellCommand,
		"wait_for":          waitFor,
		"focus_document":    env.focusDocument,
	}
	for name, fn := range natives {
		m.RegisterNative(name, fn)
	}
	procValues := map[string]vm.NativeFunc{
		"$cursor":           cursorPV,
		"$text_length":      textLengthPV,
		"$file_name":        fileNamePV,
		"$empty_array":      emptyArrayPV,
		"$sub_sep":          subSepPV,
		"$shell_cmd_status": env.shellStatusPV,
	}
	for name, fn := range procValues {
		m.RegisterProcValue(name, fn)
	}
	tracer().Infof("installed %d built-ins and %d procedure values", len(natives), len(procValues))
	return env
}

// --- Argument checking -----------------------------------------------------

func checkArgs(ctx *vm.CallContext, args []value.Value, min, max int) error {
	if len(args) < min {
		return fmt.Errorf("%s subroutine called with too few arguments", ctx.Name())
	}
	if max >= 0 && len(args) > max {
		return fmt.Errorf("%s subroutine called with too many arguments", ctx.Name())
	}
	return nil
}

func intArg(ctx *vm.CallContext, args []value.Value, i int) (int, error) {
	n, ok := value.ToInt(args[i])
	if !ok {
		return 0, fmt.Errorf("%s called with non-integer argument", ctx.Name())
	}
	return int(n), nil
}

func strArg(ctx *vm.CallContext, args []value.Value, i int) (string, error) {
	s, ok := value.ToString(args[i])
	if !ok {
		return "", fmt.Errorf("%s called with unknown object", ctx.Name())
	}
	return s, nil
}

// strArgs converts all arguments to strings.
func strArgs(ctx *vm.CallContext, args []value.Value) ([]string, error) {
	strs := make([]string, len(args))
	for i := range args {
		s, err := strArg(ctx, args, i)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}
	return strs, nil
}

// clamp limits n to [lo…hi].
func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
