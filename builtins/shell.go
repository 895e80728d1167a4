package builtins

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
)

// ShellCommand is the request a macro attaches to its continuation when it
// calls shell_command. The host runs the command, feeding Input to its
// standard input, and injects the command's output as the return value.
type ShellCommand struct {
	Command string
	Input   string
}

// WaitRequest is the request a macro attaches to its continuation when it
// calls wait_for. What the name denotes is up to the host, e.g. a dialog
// to present; the answer is injected as the return value.
type WaitRequest struct {
	Name string
	Args []string
}

// shell_command(command, input)
func shellCommand(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 2, 2); err != nil {
		return value.None(), err
	}
	strs, err := strArgs(ctx, args)
	if err != nil {
		return value.None(), err
	}
	if strings.TrimSpace(strs[0]) == "" {
		return value.None(), errors.New("shell_command: empty command")
	}
	tracer().Infof("shell_command: suspending macro for %q", strs[0])
	ctx.Suspend(&ShellCommand{Command: strs[0], Input: strs[1]})
	return value.None(), nil
}

// wait_for(name, args...)
func waitFor(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, -1); err != nil {
		return value.None(), err
	}
	strs, err := strArgs(ctx, args)
	if err != nil {
		return value.None(), err
	}
	ctx.Suspend(&WaitRequest{Name: strs[0], Args: strs[1:]})
	return value.None(), nil
}

// RunShellCommand executes a shell command on behalf of a suspended macro
// and returns its standard output. The exit status is recorded and made
// available to macros as $shell_cmd_status. A command which runs but fails
// is not an error.
func (env *Env) RunShellCommand(ctx context.Context, cmd *ShellCommand) (string, error) {
	c := exec.CommandContext(ctx, env.shell, "-c", cmd.Command)
	c.Stdin = strings.NewReader(cmd.Input)
	var out bytes.Buffer
	c.Stdout = &out
	err := c.Run()
	status := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			tracer().Errorf("shell command %q: %v", cmd.Command, err)
			return "", err
		}
		status = exitErr.ExitCode()
	}
	env.mu.Lock()
	env.shellStatus = status
	env.mu.Unlock()
	tracer().Debugf("shell command %q exited with status %d", cmd.Command, status)
	return out.String(), nil
}

func (env *Env) shellStatusPV(*vm.CallContext, []value.Value) (value.Value, error) {
	env.mu.Lock()
	defer env.mu.Unlock()
	return value.Int(int32(env.shellStatus)), nil
}
