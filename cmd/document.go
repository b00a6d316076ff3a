package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/presentation"
)

var createCmd = &cobra.Command{
	Use:   "create <document-type>",
	Short: "Create a document in the missing state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		title, _ := cmd.Flags().GetString("title")
		contentPath, _ := cmd.Flags().GetString("content")
		dependsOn, _ := cmd.Flags().GetStringSlice("depends-on")

		var content map[string]any
		if contentPath != "" {
			content, err = readDataFile(contentPath)
			if err != nil {
				return err
			}
		}

		doc, err := rt.comp.CreateDocument(cmd.Context(), args[0], title, content, dependsOn)
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).WriteDocument(doc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		docType, _ := cmd.Flags().GetString("type")
		state, _ := cmd.Flags().GetString("state")
		limit, _ := cmd.Flags().GetInt("limit")

		if state != "" && !document.State(state).IsValid() {
			return fmt.Errorf("unknown state %q", state)
		}

		docs, err := rt.repo.List(document.ListFilter{
			Type:  docType,
			State: document.State(state),
			Limit: limit,
		})
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).WriteDocuments(docs)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		doc, err := rt.repo.FindByID(args[0])
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).WriteDocument(doc)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document and its dependency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.repo.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().String("title", "", "document title")
	createCmd.Flags().String("content", "", "path to content file (YAML or JSON), '-' for stdin")
	createCmd.Flags().StringSlice("depends-on", nil, "upstream document ids")

	listCmd.Flags().String("type", "", "filter by document type")
	listCmd.Flags().String("state", "", "filter by lifecycle state")
	listCmd.Flags().Int("limit", 0, "maximum number of documents")

	rootCmd.AddCommand(createCmd, listCmd, showCmd, deleteCmd)
}

// readDataFile reads a YAML or JSON object from a file, or stdin for "-".
func readDataFile(path string) (map[string]any, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path) //nolint:gosec // G304: operator-supplied data file
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}
