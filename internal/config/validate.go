package config

import (
	"errors"
	"fmt"
	"regexp"
)

var frameSizePattern = regexp.MustCompile(`^\d+x\d+$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.WorkDir {
		return errors.New("paths.staging_dir and paths.work_dir must differ")
	}
	return nil
}

func (c *Config) validateCapture() error {
	switch c.Capture.InputFormat {
	case "v4l2", "dshow", "avfoundation":
	default:
		return fmt.Errorf("capture.input_format: unsupported value %q", c.Capture.InputFormat)
	}
	if c.Capture.FrameRate <= 0 {
		return errors.New("capture.frame_rate must be positive")
	}
	if !frameSizePattern.MatchString(c.Capture.FrameSize) {
		return fmt.Errorf("capture.frame_size: expected WIDTHxHEIGHT, got %q", c.Capture.FrameSize)
	}
	if c.Capture.StopGraceSeconds <= 0 {
		return errors.New("capture.stop_grace_seconds must be positive")
	}
	if c.Capture.KillGraceSeconds <= 0 {
		return errors.New("capture.kill_grace_seconds must be positive")
	}
	if c.Capture.PollIntervalMS <= 0 {
		return errors.New("capture.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.RemoteConfigured() {
		// Local-only operation is supported; nothing else to check.
		return nil
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return errors.New("storage.access_key and storage.secret_key are required when a remote endpoint is configured")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.QueuePollSeconds <= 0 {
		return errors.New("upload.queue_poll_seconds must be positive")
	}
	if c.Upload.ShutdownGraceSeconds < 0 {
		return errors.New("upload.shutdown_grace_seconds must not be negative")
	}
	if c.Upload.ProgressStepPercent <= 0 || c.Upload.ProgressStepPercent > 100 {
		return errors.New("upload.progress_step_percent must be in (0, 100]")
	}
	return nil
}
