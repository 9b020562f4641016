package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"clipvault/internal/clipstore"
)

func newClipsCommand(cctx *commandContext) *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List recorded clips across both tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cctx.newLogger()
			if err != nil {
				return err
			}
			store, _, err := cctx.openStore(logger)
			if err != nil {
				return err
			}

			var entries []clipstore.Entry
			if localOnly {
				entries, err = store.List(cmd.Context(), clipstore.TierLocal)
			} else {
				entries, err = store.ListAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No clips recorded yet")
				return nil
			}

			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Interval.Start != entries[j].Interval.Start {
					return entries[i].Interval.Start < entries[j].Interval.Start
				}
				return entries[i].Tier < entries[j].Tier
			})

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				start := time.Unix(entry.Interval.Start, 0)
				rows = append(rows, []string{
					entry.Name,
					start.Format("2006-01-02 15:04:05"),
					entry.Interval.Duration().String(),
					tierLabel(entry.Tier),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Clip", "Start", "Length", "Tier"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "List only the staging tier")
	return cmd
}

func tierLabel(tier clipstore.Tier) string {
	switch tier {
	case clipstore.TierLocal:
		return "local"
	case clipstore.TierRemote:
		return "remote"
	default:
		return "unknown"
	}
}
