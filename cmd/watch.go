package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foliohq/folio/internal/catalog"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog directory and reload definitions on change",
	Long: `Runs until interrupted. Definition file changes reload the catalog
after a debounce window; a reload that fails validation keeps the previous
catalog active.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		w, err := watcher.New(watcher.Config{
			CatalogDir:  rt.cfg.CatalogDir,
			DebounceDur: rt.cfg.ReloadDebounce,
		})
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", rt.cfg.CatalogDir)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				cat, err := catalog.Load(rt.cfg.CatalogDir)
				if err != nil {
					log.ErrorErr(log.CatWatcher, "catalog reload failed, keeping previous", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					continue
				}
				rt.comp.ReplaceCatalog(cat)
				fmt.Fprintln(cmd.OutOrStdout(), "catalog reloaded")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
