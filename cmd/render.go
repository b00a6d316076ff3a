package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foliohq/folio/internal/presentation"
)

var renderCmd = &cobra.Command{
	Use:   "render <document-id>",
	Short: "Render a stored document against its pinned schema bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		surface, _ := cmd.Flags().GetString("surface")
		result, err := rt.comp.RenderStored(cmd.Context(), args[0], rt.surfaceOrDefault(surface))
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).WriteResult(result)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <document-type>",
	Short: "Render unsaved data without persisting anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		surface, _ := cmd.Flags().GetString("surface")
		dataPath, _ := cmd.Flags().GetString("data")
		paramFlags, _ := cmd.Flags().GetStringSlice("param")

		data, err := readDataFile(dataPath)
		if err != nil {
			return err
		}
		params, err := parseParams(paramFlags)
		if err != nil {
			return err
		}

		result, err := rt.comp.RenderPreview(cmd.Context(), args[0], params, data, rt.surfaceOrDefault(surface))
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).WriteResult(result)
	},
}

func init() {
	renderCmd.Flags().String("surface", "", "output surface (default from config)")

	previewCmd.Flags().String("surface", "", "output surface (default from config)")
	previewCmd.Flags().String("data", "", "path to data file (YAML or JSON), '-' for stdin")
	previewCmd.Flags().StringSlice("param", nil, "preview parameter as key=value (repeatable)")
	_ = previewCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(renderCmd, previewCmd)
}

func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
