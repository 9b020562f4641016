package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipvault/internal/retrieval"
	"clipvault/internal/services"
)

func newFetchCommand(cctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "fetch <start-ms> <end-ms>",
		Short: "Extract the footage covering a millisecond epoch interval",
		Long: `Fetch resolves the interval against both clip tiers, downloads the
covering clip when it only exists remotely, and cuts it to the requested
bounds with a lossless stream copy. With --full the whole covering clip is
materialized instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			startMS, err := parseEpochMS(args[0])
			if err != nil {
				return err
			}
			endMS, err := parseEpochMS(args[1])
			if err != nil {
				return err
			}

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

			engine := retrieval.NewEngine(cfg, store, logger)
			var path string
			if full {
				path, err = engine.Fetch(cmd.Context(), startMS, endMS)
			} else {
				path, err = engine.Extract(cmd.Context(), startMS, endMS)
			}
			switch {
			case errors.Is(err, services.ErrNotFound):
				return fmt.Errorf("no clip covers [%d, %d] ms", startMS, endMS)
			case errors.Is(err, services.ErrInvalidRange):
				return fmt.Errorf("requested range holds no footage: %v", err)
			case err != nil:
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Materialize the whole covering clip without cropping")
	return cmd
}

func parseEpochMS(arg string) (int64, error) {
	value, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid epoch milliseconds %q", arg)
	}
	return value, nil
}
