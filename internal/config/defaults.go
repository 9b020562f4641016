package config

const (
	defaultStagingDir = "~/.local/share/clipvault/staging"
	defaultWorkDir    = "~/.local/share/clipvault/work"
	defaultLogDir     = "~/.local/share/clipvault/logs"

	defaultInputFormat      = "v4l2"
	defaultFrameRate        = 30
	defaultFrameSize        = "1280x720"
	defaultStopGraceSeconds = 10
	defaultKillGraceSeconds = 3
	defaultPollIntervalMS   = 100

	defaultStoragePrefix = "recorded-videos/"
	defaultStorageRegion = "us-east-1"

	defaultQueuePollSeconds     = 1
	defaultShutdownGraceSeconds = 5
	defaultProgressStepPercent  = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
		},
		Capture: Capture{
			InputFormat:      defaultInputFormat,
			FrameRate:        defaultFrameRate,
			FrameSize:        defaultFrameSize,
			StopGraceSeconds: defaultStopGraceSeconds,
			KillGraceSeconds: defaultKillGraceSeconds,
			PollIntervalMS:   defaultPollIntervalMS,
		},
		Storage: Storage{
			Prefix: defaultStoragePrefix,
			Region: defaultStorageRegion,
			UseSSL: true,
		},
		Upload: Upload{
			QueuePollSeconds:     defaultQueuePollSeconds,
			ShutdownGraceSeconds: defaultShutdownGraceSeconds,
			ProgressStepPercent:  defaultProgressStepPercent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
