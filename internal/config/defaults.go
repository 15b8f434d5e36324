package config

const (
	defaultTemplate       = "web/templates/transcript.html"
	defaultTranscriptsDir = "data/transcripts"
	defaultAudioDir       = "data/audio"
	defaultStaticDir      = "web/static"
	defaultOutputDir      = "docs"

	defaultBackend     = BackendWhisperX
	defaultModel       = "small"
	defaultDevice      = DeviceAuto
	defaultBatchSize   = 8
	defaultComputeType = "float32"
	defaultUVXCommand  = "uvx"
	defaultPackage     = "whisperx"
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultOpenAIModel = "whisper-1"
	defaultIndexTitle  = "Transcripts"
	defaultStylesheet  = "css/style.css"
	defaultScript      = "js/karaoke.js"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Transcription backends.
const (
	BackendWhisperX = "whisperx"
	BackendOpenAI   = "openai"
)

// DeviceAuto selects the best available accelerator at run time.
const DeviceAuto = "auto"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Template:       defaultTemplate,
			TranscriptsDir: defaultTranscriptsDir,
			AudioDir:       defaultAudioDir,
			StaticDir:      defaultStaticDir,
			OutputDir:      defaultOutputDir,
		},
		Transcription: Transcription{
			Backend:       defaultBackend,
			Model:         defaultModel,
			Device:        defaultDevice,
			BatchSize:     defaultBatchSize,
			ComputeType:   defaultComputeType,
			UVXCommand:    defaultUVXCommand,
			Package:       defaultPackage,
			OpenAIBaseURL: defaultOpenAIURL,
			OpenAIModel:   defaultOpenAIModel,
		},
		Build: Build{
			IndexTitle: defaultIndexTitle,
			Stylesheet: defaultStylesheet,
			Script:     defaultScript,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
