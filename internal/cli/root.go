package cli

import (
	"context"

	"github.com/brandonbloom/bootimage/internal/version"
	"github.com/spf13/cobra"
)

// Execute runs bootimage with os.Args.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

// newRootCommand builds a root command that hands the raw argument vector
// to args.Parse; cobra's own flag parsing and help would swallow options
// meant for cargo.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "bootimage",
		Short:              "Creates a bootable disk image from a Rust kernel",
		Version:            version.String(),
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runRoot,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}
