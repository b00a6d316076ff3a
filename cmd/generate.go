package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <document-id>",
	Short: "Generate a document: pin the schema bundle and store content",
	Long: `Stamps the current schema bundle hash on the document, transitions it
through generating, stores the supplied content, and finishes in the
complete state (or partial with --partial).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		contentPath, _ := cmd.Flags().GetString("content")
		partial, _ := cmd.Flags().GetBool("partial")

		content, err := readDataFile(contentPath)
		if err != nil {
			return err
		}

		hash, err := rt.comp.BeginGeneration(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := rt.comp.FinishGeneration(cmd.Context(), args[0], content, partial); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "generated %s (bundle %s)\n", args[0], hash)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("content", "", "path to content file (YAML or JSON), '-' for stdin")
	generateCmd.Flags().Bool("partial", false, "finish in the partial state")
	_ = generateCmd.MarkFlagRequired("content")

	rootCmd.AddCommand(generateCmd)
}
