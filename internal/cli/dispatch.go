package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brandonbloom/bootimage/internal/args"
	"github.com/brandonbloom/bootimage/internal/invoke"
	"github.com/brandonbloom/bootimage/internal/timefmt"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// usageExitCode is returned for malformed command lines.
const usageExitCode = 2

var colorStatus = color.New(color.FgGreen, color.Bold).SprintFunc()

func runRoot(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	opts := settingsFromEnv()
	logger := newLogger(cmd.ErrOrStderr(), opts.logLevel)

	parsed, err := withTraceRegion(ctx, "parse", func() (args.Command, error) {
		return args.Parse(argv)
	})
	if err != nil {
		if args.IsUsage(err) {
			return &ExitError{Code: usageExitCode, Err: err}
		}
		return err
	}
	logger.Debug("parsed command line", "kind", parsed.Kind.String(), "argv", argv)

	if page, ok := helpFor(parsed.Kind); ok {
		return page.render(cmd.OutOrStdout())
	}

	switch parsed.Kind {
	case args.Version:
		return printVersion(cmd)
	case args.NoSubcommand:
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, noSubcommandHint)
		fmt.Fprintln(errOut)
		if err := rootHelp.render(errOut); err != nil {
			return err
		}
		return &ExitError{Code: 1}
	case args.Build, args.Run, args.Test:
		s := &session{
			opts:   opts,
			logger: logger.With("command", parsed.Kind.String()),
			streams: invoke.Streams{
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			},
		}
		return s.run(ctx, parsed)
	default:
		return fmt.Errorf("unhandled command %s", parsed.Kind)
	}
}

// session executes one build, run, or test request.
type session struct {
	opts    settings
	logger  *slog.Logger
	streams invoke.Streams
}

func (s *session) run(ctx context.Context, parsed args.Command) error {
	a := parsed.Args
	proj, err := loadProject(a)
	if err != nil {
		return err
	}
	if err := applyProjectDefaults(parsed.Kind, a, proj); err != nil {
		return err
	}
	target, _ := a.Target()
	bin, _ := a.BinName()
	s.logger.Debug("resolved project",
		"manifest", proj.ManifestPath,
		"target", target,
		"bin", bin,
		"release", a.Release(),
	)

	planner := invoke.Planner{Cargo: s.opts.cargo, Project: proj}
	switch parsed.Kind {
	case args.Build:
		return s.step(ctx, "Building", planner.Build(a))
	case args.Run:
		if err := s.step(ctx, "Building", planner.Build(a)); err != nil {
			return err
		}
		runner, err := planner.Runner(a)
		if err != nil {
			return err
		}
		return s.step(ctx, "Running", runner)
	case args.Test:
		ctx, cancel := context.WithTimeout(ctx, proj.Config().TestTimeoutDuration())
		defer cancel()
		return s.step(ctx, "Testing", planner.Test(a))
	default:
		return fmt.Errorf("unhandled command %s", parsed.Kind)
	}
}

// step announces inv, runs it unless this is a dry run, and converts a
// non-zero exit code into an ExitError.
func (s *session) step(ctx context.Context, verb string, inv invoke.Invocation) error {
	s.status(verb, inv.String())
	if s.opts.dryRun {
		return nil
	}

	start := time.Now()
	var code int
	err := withTraceRegionErr(ctx, verb, func() error {
		var err error
		code, err = invoke.Run(ctx, inv, s.streams)
		return err
	})
	s.logger.Debug("subprocess exited", "name", inv.Name, "code", code, "elapsed", time.Since(start))
	if err != nil {
		if errors.Is(err, invoke.ErrTimedOut) || errors.Is(err, invoke.ErrInterrupted) {
			return &ExitError{Code: code, Err: err}
		}
		return err
	}
	if code != 0 {
		return &ExitError{Code: code, Err: fmt.Errorf("%s exited with status %d", inv.Name, code)}
	}
	s.status("Finished", "in "+timefmt.Since(start, time.Time{}))
	return nil
}

func (s *session) status(verb, detail string) {
	writeStatus(s.streams.Stderr, verb, detail)
}

// writeStatus prints a cargo-style status line with a right-aligned verb.
func writeStatus(w io.Writer, verb, detail string) {
	fmt.Fprintf(w, "%s %s\n", colorStatus(runewidth.FillLeft(verb, 12)), detail)
}
