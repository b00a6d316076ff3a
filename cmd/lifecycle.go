package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foliohq/folio/internal/document"
)

var transitionCmd = &cobra.Command{
	Use:   "transition <document-id> <from> <to>",
	Short: "Transition a document between lifecycle states",
	Long: `Applies a compare-and-swap transition: the edge must exist in the
state machine and the stored state must still equal <from>, otherwise the
command fails and nothing changes.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		from := document.State(args[1])
		to := document.State(args[2])
		if !from.IsValid() {
			return fmt.Errorf("unknown state %q", args[1])
		}
		if !to.IsValid() {
			return fmt.Errorf("unknown state %q", args[2])
		}

		if err := rt.lc.Transition(args[0], from, to); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", args[0], from, to)
		return nil
	},
}

var staleCmd = &cobra.Command{
	Use:   "stale <document-id>",
	Short: "Mark a document stale and propagate to its dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		marked, err := rt.lc.MarkStale(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s marked stale\n", args[0])
		for _, id := range marked {
			fmt.Fprintf(cmd.OutOrStdout(), "  propagated to %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transitionCmd, staleCmd)
}
