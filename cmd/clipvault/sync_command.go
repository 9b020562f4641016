package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/uploader"
)

func newSyncCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload every local clip missing from the remote tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.newLogger()
			if err != nil {
				return err
			}
			store, _, err := cctx.openStore(logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !store.RemoteAvailable() {
				fmt.Fprintln(out, "Remote tier not configured; nothing to sync")
				return nil
			}

			pipeline := uploader.New(cfg, store, logger)
			count, err := pipeline.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Fprintln(out, "All clips already uploaded")
				return nil
			}

			fmt.Fprintf(out, "Uploading %d clip(s)\n", count)
			if failed := pipeline.Flush(cmd.Context()); failed > 0 {
				return fmt.Errorf("%d clip(s) failed to upload; see log for details", failed)
			}
			fmt.Fprintln(out, "Sync complete")
			return nil
		},
	}
}
