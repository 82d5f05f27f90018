// Package invoke turns parsed bootimage arguments into concrete cargo and
// runner command lines, and executes them.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/brandonbloom/bootimage/internal/args"
	"github.com/brandonbloom/bootimage/internal/config"
	"github.com/brandonbloom/bootimage/internal/project"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrNoBinary indicates the runner was planned without a binary name.
	ErrNoBinary = errors.New("no binary selected; pass --bin")
	// ErrTimedOut indicates a subprocess outlived its context deadline.
	ErrTimedOut = errors.New("timed out")
	// ErrInterrupted indicates a subprocess was stopped because its context
	// was cancelled, usually by SIGINT or SIGTERM.
	ErrInterrupted = errors.New("interrupted")
)

const (
	// TimeoutExitCode is reported when a subprocess is killed by its deadline.
	TimeoutExitCode = 124
	// InterruptExitCode is reported when a subprocess is killed on cancellation.
	InterruptExitCode = 130
)

// Invocation is a single subprocess to run. An empty Dir inherits the
// caller's working directory, which is where relative paths in Args are
// meant to resolve.
type Invocation struct {
	Name string
	Args []string
	Dir  string
}

// String renders the invocation as a bash command line.
func (i Invocation) String() string {
	words := make([]string, 0, len(i.Args)+1)
	words = append(words, quote(i.Name))
	for _, arg := range i.Args {
		words = append(words, quoteArg(arg))
	}
	return strings.Join(words, " ")
}

// quoteArg leaves `--opt=value` style words bare when no piece between the
// equals signs needs quoting; an equals sign is only special in bash before
// the command name.
func quoteArg(word string) string {
	if !strings.Contains(word, "=") {
		return quote(word)
	}
	for _, part := range strings.Split(word, "=") {
		if part == "" || quote(part) != part {
			return quote(word)
		}
	}
	return word
}

func quote(word string) string {
	quoted, err := syntax.Quote(word, syntax.LangBash)
	if err != nil {
		return strconv.Quote(word)
	}
	return quoted
}

// Planner builds invocations for one project.
type Planner struct {
	// Cargo is the build tool executable.
	Cargo   string
	Project *project.Project
}

func (p Planner) cargo() string {
	if p.Cargo == "" {
		return "cargo"
	}
	return p.Cargo
}

// Build plans `cargo <build-command> <cargo args>`.
func (p Planner) Build(a *args.Args) Invocation {
	cfg := p.Project.Config()
	cmdArgs := make([]string, 0, len(cfg.BuildCommand)+len(a.CargoArgs))
	cmdArgs = append(cmdArgs, cfg.BuildCommand...)
	cmdArgs = append(cmdArgs, a.CargoArgs...)
	return Invocation{Name: p.cargo(), Args: cmdArgs}
}

// Runner plans the configured run-command for the disk image of the
// selected binary, followed by run-args and the user's run arguments.
func (p Planner) Runner(a *args.Args) (Invocation, error) {
	bin, ok := a.BinName()
	if !ok || bin == "" {
		return Invocation{}, ErrNoBinary
	}
	target, _ := a.Target()
	image := p.Project.ImagePath(target, bin, a.Release())

	cfg := p.Project.Config()
	line := make([]string, 0, len(cfg.RunCommand)+len(cfg.RunArgs)+len(a.RunArgs))
	for _, word := range cfg.RunCommand {
		line = append(line, strings.ReplaceAll(word, config.ImagePlaceholder, image))
	}
	line = append(line, cfg.RunArgs...)
	line = append(line, a.RunArgs...)
	return Invocation{Name: line[0], Args: line[1:]}, nil
}

// Test plans `cargo test <cargo args>`, handing test-args and the user's
// run arguments to the test harness after `--`.
func (p Planner) Test(a *args.Args) Invocation {
	cfg := p.Project.Config()
	cmdArgs := append([]string{"test"}, a.CargoArgs...)
	if len(cfg.TestArgs) > 0 || len(a.RunArgs) > 0 {
		cmdArgs = append(cmdArgs, "--")
		cmdArgs = append(cmdArgs, cfg.TestArgs...)
		cmdArgs = append(cmdArgs, a.RunArgs...)
	}
	return Invocation{Name: p.cargo(), Args: cmdArgs}
}

// Streams wires a subprocess to the caller's stdio.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes inv and returns its exit code. Failing to start the process
// or losing it to a signal is an error; a non-zero exit is not.
func Run(ctx context.Context, inv Invocation, streams Streams) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return TimeoutExitCode, fmt.Errorf("%s: %w", inv.Name, ErrTimedOut)
	case errors.Is(ctx.Err(), context.Canceled):
		return InterruptExitCode, fmt.Errorf("%s: %w", inv.Name, ErrInterrupted)
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		// ExitCode is -1 when the child was killed by a signal.
		if code := ee.ExitCode(); code >= 0 {
			return code, nil
		}
		return 1, fmt.Errorf("%s: %w", inv.Name, err)
	}
	return 1, fmt.Errorf("run %s: %w", inv.Name, err)
}
