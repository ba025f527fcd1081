package config

const (
	defaultInputsDir     = "inputs"
	defaultOutputsDir    = "outputs"
	defaultLogDir        = "~/.local/share/melodymind/logs"
	defaultFPS           = 25
	defaultGeneratorDir  = "SadTalker"
	defaultPythonBinary  = "python3"
	defaultPreprocess    = "full"
	defaultStyle         = "still"
	defaultFaceEnhancer  = "gfpgan"
	defaultCoverDuration = "5.0"
	defaultCoverFade     = 1.0
	defaultJournalPath   = "~/.local/share/melodymind/journal.db"
	defaultNotifyTimeout = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogRetention  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputsDir:  defaultInputsDir,
			OutputsDir: defaultOutputsDir,
			LogDir:     defaultLogDir,
		},
		Render: Render{
			FPS:          defaultFPS,
			Ducking:      false,
			Loudnorm:     true,
			StaticSilent: true,
			SkipExisting: false,
		},
		Generator: Generator{
			Dir:          defaultGeneratorDir,
			PythonBinary: defaultPythonBinary,
			Preprocess:   defaultPreprocess,
			Style:        defaultStyle,
		},
		Enhancers: Enhancers{
			Enabled: true,
			Face:    defaultFaceEnhancer,
		},
		Covers: Covers{
			IntroDuration: defaultCoverDuration,
			OutroDuration: defaultCoverDuration,
			FadeSeconds:   defaultCoverFade,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			EpisodeDone:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
