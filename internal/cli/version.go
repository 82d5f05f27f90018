package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func printVersion(cmd *cobra.Command) error {
	root := cmd.Root()
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", root.DisplayName(), root.Version)
	return err
}
