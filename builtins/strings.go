package builtins

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// length(string)
func length(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, 1); err != nil {
		return value.None(), err
	}
	s, err := strArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	return value.Int(int32(len(s))), nil
}

// substring(string, from[, to]). Negative positions count from the end of
// the string, positions beyond the string are clamped.
func substring(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 2, 3); err != nil {
		return value.None(), err
	}
	s, err := strArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	from, err := intArg(ctx, args, 1)
	if err != nil {
		return value.None(), err
	}
	to := len(s)
	if len(args) == 3 {
		if to, err = intArg(ctx, args, 2); err != nil {
			return value.None(), err
		}
	}
	if from < 0 {
		from += len(s)
	}
	if to < 0 {
		to += len(s)
	}
	from = clamp(from, 0, len(s))
	to = clamp(to, from, len(s))
	return ctx.Pool().Alloc(s[from:to]), nil
}

// toupper(string)
func toUpper(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	return convertCase(ctx, args, cases.Upper(language.Und))
}

// tolower(string)
func toLower(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	return convertCase(ctx, args, cases.Lower(language.Und))
}

// convertCase applies a caser, which must not be shared between calls.
func convertCase(ctx *vm.CallContext, args []value.Value, c cases.Caser) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, 1); err != nil {
		return value.None(), err
	}
	s, err := strArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	return ctx.Pool().Alloc(c.String(s)), nil
}

// searchType selects how search_string, replace_in_string and split compare.
type searchType struct {
	caseless bool
	backward bool
}

// parseSearchType interprets the optional search type arguments:
// "case" (default), "literal" (caseless), "forward" and "backward".
func parseSearchType(ctx *vm.CallContext, args []value.Value) (searchType, error) {
	var st searchType
	for i := range args {
		s, err := strArg(ctx, args, i)
		if err != nil {
			return st, err
		}
		switch s {
		case "case", "forward":
		case "literal":
			st.caseless = true
		case "backward":
			st.backward = true
		default:
			return st, fmt.Errorf("%s: unsupported search type %q", ctx.Name(), s)
		}
	}
	return st, nil
}

// index finds pattern in s, starting at byte position start. Returns -1 if
// there is no match.
func (st searchType) index(s, pattern string, start int) int {
	match := func(i int) bool {
		if st.caseless {
			return strings.EqualFold(s[i:i+len(pattern)], pattern)
		}
		return s[i:i+len(pattern)] == pattern
	}
	last := len(s) - len(pattern)
	if st.backward {
		for i := clamp(start, -1, last); i >= 0; i-- {
			if match(i) {
				return i
			}
		}
		return -1
	}
	for i := clamp(start, 0, len(s)+1); i <= last; i++ {
		if match(i) {
			return i
		}
	}
	return -1
}

// search_string(string, pattern, start[, type...]) returns the position of
// the first match, or -1.
func searchString(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 3, 5); err != nil {
		return value.None(), err
	}
	strs, err := strArgs(ctx, args[:2])
	if err != nil {
		return value.None(), err
	}
	start, err := intArg(ctx, args, 2)
	if err != nil {
		return value.None(), err
	}
	st, err := parseSearchType(ctx, args[3:])
	if err != nil {
		return value.None(), err
	}
	if strs[1] == "" {
		return value.Int(-1), nil
	}
	return value.Int(int32(st.index(strs[0], strs[1], start))), nil
}

// replace_in_string(string, pattern, replacement[, type][, "copy"]) replaces
// all occurrences of pattern. If nothing has been replaced, the result is the
// empty string, or the original string if "copy" is given.
func replaceInString(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 3, 5); err != nil {
		return value.None(), err
	}
	strs, err := strArgs(ctx, args)
	if err != nil {
		return value.None(), err
	}
	s, pattern, repl := strs[0], strs[1], strs[2]
	copyFlag := false
	var typeArgs []value.Value
	for i := 3; i < len(args); i++ {
		if strs[i] == "copy" {
			copyFlag = true
			continue
		}
		typeArgs = append(typeArgs, args[i])
	}
	st, err := parseSearchType(ctx, typeArgs)
	if err != nil {
		return value.None(), err
	}
	st.backward = false
	if pattern == "" {
		return value.None(), errors.New("replace_in_string: empty search string")
	}
	var b strings.Builder
	replaced, pos := 0, 0
	for {
		i := st.index(s, pattern, pos)
		if i < 0 {
			break
		}
		b.WriteString(s[pos:i])
		b.WriteString(repl)
		pos = i + len(pattern)
		replaced++
	}
	if replaced == 0 {
		if copyFlag {
			return ctx.Pool().Alloc(s), nil
		}
		return ctx.Pool().Alloc(""), nil
	}
	b.WriteString(s[pos:])
	return ctx.Pool().Alloc(b.String()), nil
}

// split(string, separator[, type]) returns an array of the parts of string,
// keyed "0", "1", …
func split(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 2, 3); err != nil {
		return value.None(), err
	}
	strs, err := strArgs(ctx, args[:2])
	if err != nil {
		return value.None(), err
	}
	st, err := parseSearchType(ctx, args[2:])
	if err != nil {
		return value.None(), err
	}
	st.backward = false
	s, sep := strs[0], strs[1]
	if sep == "" {
		return value.None(), errors.New("split separator must not be empty")
	}
	result := value.NewArray()
	arr, _ := result.Array()
	add := func(part string) {
		key, _ := ctx.Pool().Alloc(strconv.Itoa(arr.Size())).Str()
		arr.Insert(key, ctx.Pool().Alloc(part))
	}
	pos := 0
	for {
		i := st.index(s, sep, pos)
		if i < 0 {
			break
		}
		add(s[pos:i])
		pos = i + len(sep)
	}
	add(s[pos:])
	return result, nil
}

// t_print(args...) writes its arguments, separated by blanks, to the output.
func (env *Env) tPrint(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	strs, err := strArgs(ctx, args)
	if err != nil {
		return value.None(), err
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	if _, err = io.WriteString(env.out, strings.Join(strs, " ")); err != nil {
		tracer().Errorf("t_print: %v", err)
	}
	return value.None(), nil
}
