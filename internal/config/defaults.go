package config

const (
	defaultDataDir       = "~/.local/share/radioscribe"
	defaultDownloadDir   = "~/.local/share/radioscribe/downloads"
	defaultTranscriptDir = "~/.local/share/radioscribe/transcripts"
	defaultLogDir        = "~/.local/share/radioscribe/logs"

	defaultFetchBinary    = "get_iplayer"
	defaultProgrammeType  = "radio"
	defaultCommandTimeout = 3600

	defaultTranscriptionBinary = "whisper"
	defaultTranscriptionModel  = "base"

	defaultRefreshInterval    = 60
	defaultQueuePollInterval  = 10
	defaultItemPause          = 1
	defaultErrorRetryInterval = 300

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultTranscriptionFormats() []string {
	return []string{"txt", "json"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			DownloadDir:   defaultDownloadDir,
			TranscriptDir: defaultTranscriptDir,
			LogDir:        defaultLogDir,
		},
		Fetch: Fetch{
			Binary:         defaultFetchBinary,
			ProgrammeType:  defaultProgrammeType,
			CommandTimeout: defaultCommandTimeout,
		},
		Transcription: Transcription{
			Binary:      defaultTranscriptionBinary,
			Model:       defaultTranscriptionModel,
			Formats:     defaultTranscriptionFormats(),
			AutoProcess: true,
		},
		Workflow: Workflow{
			RefreshInterval:    defaultRefreshInterval,
			QueuePollInterval:  defaultQueuePollInterval,
			ItemPause:          defaultItemPause,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
