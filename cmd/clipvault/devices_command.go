package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipvault/internal/devices"
)

func newDevicesCommand(cctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			detected, err := devices.Detect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if len(detected) == 0 {
				fmt.Fprintln(out, "No capture devices found")
			}
			for _, name := range detected {
				fmt.Fprintln(out, name)
			}

			if !watch {
				return nil
			}

			logger, err := cctx.newLogger()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			monitor := devices.NewMonitor(logger, func(ev devices.Event) {
				fmt.Fprintf(out, "%s %s\n", ev.Action, ev.Node)
			})
			if err := monitor.Start(ctx); err != nil {
				return err
			}
			defer monitor.Stop()

			fmt.Fprintln(out, "Watching for camera hotplug events; press Ctrl-C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and report hotplug events")
	return cmd
}
