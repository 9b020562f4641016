package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/clipstore"
	"clipvault/internal/deps"
	"clipvault/internal/logging"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report configuration, dependencies, and clip counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Config: %s", cctx.configPath)
			if !cctx.configExists {
				fmt.Fprint(out, " (not found; defaults in use)")
			}
			fmt.Fprintln(out)

			binaryRows := make([][]string, 0, 2)
			for _, status := range deps.CheckSystemDeps(cfg) {
				binaryRows = append(binaryRows, []string{
					status.Name, yesNo(status.Available), firstNonEmpty(status.Detail, status.Command),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Binary", "Available", "Detail"},
				binaryRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			store, remote, err := cctx.openStore(logging.NewNop())
			if err != nil {
				return err
			}

			checkRows := make([][]string, 0, 4)
			for _, res := range deps.RunAll(cmd.Context(), cfg, remote) {
				checkRows = append(checkRows, []string{res.Name, yesNo(res.Passed), res.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Passed", "Detail"},
				checkRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			local, err := store.List(cmd.Context(), clipstore.TierLocal)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Local clips: %d\n", len(local))
			if store.RemoteAvailable() {
				remoteEntries, err := store.List(cmd.Context(), clipstore.TierRemote)
				if err != nil {
					fmt.Fprintf(out, "Remote clips: unavailable (%v)\n", err)
				} else {
					fmt.Fprintf(out, "Remote clips: %d\n", len(remoteEntries))
				}
			} else {
				fmt.Fprintln(out, "Remote tier: not configured")
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
