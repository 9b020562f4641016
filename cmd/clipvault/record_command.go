package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipvault/internal/capture"
	"clipvault/internal/clipstore"
	"clipvault/internal/config"
	"clipvault/internal/deps"
	"clipvault/internal/devices"
	"clipvault/internal/services"
	"clipvault/internal/uploader"
)

func newRecordCommand(cctx *commandContext) *cobra.Command {
	var deviceFlag string
	var videoURL string
	var audioURL string
	var liveView bool
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from a camera or stream until stopped",
		Long: `Record spawns the encoder against a capture source, writes into the
staging directory, and on stop names the clip after its recorded interval
and hands it to the upload pipeline. Ctrl-C requests a graceful stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.newLogger()
			if err != nil {
				return err
			}

			for _, status := range deps.CheckSystemDeps(cfg) {
				if !status.Available && !status.Optional {
					return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
				}
			}
			for _, res := range deps.RunAll(cmd.Context(), cfg, nil) {
				if !res.Passed {
					return fmt.Errorf("preflight %s failed: %s", res.Name, res.Detail)
				}
			}

			src, err := buildSource(cmd.Context(), cfg, deviceFlag, videoURL, audioURL, liveView)
			if err != nil {
				return err
			}

			store, _, err := cctx.openStore(logger)
			if err != nil {
				return err
			}

			pipeline := uploader.New(cfg, store, logger)
			if err := pipeline.Start(context.Background()); err != nil {
				return err
			}
			defer pipeline.Stop()

			sess := capture.NewSession(cfg, store, pipeline, logger)
			if err := sess.Start(src); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recording from %s; press Ctrl-C to stop\n", src.Label())

			if duration > 0 {
				timer := time.AfterFunc(duration, sess.Stop)
				defer timer.Stop()
			}

			result, err := sess.Wait(ctx)
			stop()
			if err != nil && !errors.Is(err, services.ErrStopTimeout) {
				return err
			}
			if errors.Is(err, services.ErrStopTimeout) {
				fmt.Fprintln(out, "Encoder ignored the stop request and was terminated; the clip may be truncated")
			}
			fmt.Fprintf(out, "Saved %s (%s)\n", result.Name, result.Interval.Duration())

			waitForUploads(out, pipeline, store)
			return nil
		},
	}

	cmd.Flags().StringVarP(&deviceFlag, "device", "d", "", "Capture device (auto-detected when omitted)")
	cmd.Flags().StringVar(&videoURL, "video-url", "", "Network stream video URL")
	cmd.Flags().StringVar(&audioURL, "audio-url", "", "Network stream audio URL")
	cmd.Flags().BoolVar(&liveView, "live-view", false, "Treat the stream as a pre-encoded live view (stream copy)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop automatically after this long")
	return cmd
}

func buildSource(ctx context.Context, cfg *config.Config, device, videoURL, audioURL string, liveView bool) (capture.Source, error) {
	videoURL = strings.TrimSpace(videoURL)
	device = strings.TrimSpace(device)

	switch {
	case liveView:
		if videoURL == "" {
			return nil, fmt.Errorf("--live-view requires --video-url")
		}
		return capture.LiveView{VideoURL: videoURL, AudioURL: audioURL}, nil
	case videoURL != "":
		return capture.IPStream{VideoURL: videoURL, AudioURL: audioURL}, nil
	case device != "":
		return capture.Device{Name: device}, nil
	}

	detected, err := devices.Detect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(detected) == 0 {
		return nil, fmt.Errorf("no capture devices found; pass one with --device")
	}
	return capture.Device{Name: detected[0]}, nil
}

// waitForUploads gives the pipeline a bounded window to deliver the fresh
// clip; anything still pending is picked up by the next sync.
func waitForUploads(out io.Writer, pipeline *uploader.Pipeline, store *clipstore.Store) {
	if !store.RemoteAvailable() {
		return
	}
	deadline := time.After(30 * time.Second)
	for !pipeline.Idle() {
		select {
		case <-deadline:
			fmt.Fprintln(out, "Upload still pending; it will resume on the next sync")
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}
