package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foliohq/folio/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the loaded catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered schemas, components and docdefs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.CatalogDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "schemas:")
		for _, id := range cat.Schemas.IDs() {
			fmt.Fprintf(out, "  %s\n", id)
		}
		fmt.Fprintln(out, "components:")
		for _, comp := range cat.Components.List() {
			fmt.Fprintf(out, "  %s -> %s\n", comp.ID(), comp.SchemaID())
		}
		fmt.Fprintln(out, "docdefs:")
		for _, d := range cat.DocDefs.List() {
			fmt.Fprintf(out, "  %s [%s] %q\n", d.ID(), d.Status(), d.Title())
		}
		fmt.Fprintf(out, "fragments: %d\n", cat.FragmentCount())
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and cross-validate the catalog, reporting the first error",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.CatalogDir)
		if err != nil {
			return err
		}

		// Resolving every accepted type exercises bundle hashing too.
		for _, typeName := range cat.DocDefs.TypeNames() {
			d, err := cat.DocDefs.Resolve(typeName)
			if err != nil {
				continue // no accepted version for this type
			}
			hash, err := cat.BundleFor(d)
			if err != nil {
				return fmt.Errorf("docdef %s: %w", d.ID(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", typeName, d.ID(), hash)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "catalog ok")
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
