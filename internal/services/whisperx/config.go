package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the Whisper model to load (e.g., "small", "large-v3").
	Model string
	// Device is "cuda", "cpu" or "auto".
	Device string
	// ComputeType is the numeric precision (float32, float16, int8).
	ComputeType string
	BatchSize   int
	// UVXCommand is the uv tool runner used to launch WhisperX.
	UVXCommand string
	// Package is the tool spec handed to uvx, e.g. "whisperx" or "whisperx@3.3.1".
	Package string
	// LogDir receives captured stderr from failed runs. Empty disables capture.
	LogDir string
}

// WhisperX configuration constants.
const (
	DefaultModel       = "small"
	DefaultBatchSize   = 8
	DefaultComputeType = "float32"
	CUDAIndexURL       = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL       = "https://pypi.org/simple"
	OutputFormat       = "json"
	CPUDevice          = "cpu"
	CUDADevice         = "cuda"
	AutoDevice         = "auto"
	UVXCommand         = "uvx"
	PackageName        = "whisperx"
	nvidiaProbeCommand = "nvidia-smi"
)
