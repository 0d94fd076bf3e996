package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danhigham/autotele/internal/sidechannel"
)

func newCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "code <code-socket> <code>",
		Short: "Hand a login code to a waiting run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := sidechannel.Send(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Code sent.")
			return nil
		},
	}
}
