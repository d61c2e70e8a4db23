package whisperx

// Config captures runtime settings for WhisperX runs.
type Config struct {
	// UVXBinary launches the whisperx tool. Defaults to "uvx".
	UVXBinary string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
}

// WhisperX invocation constants.
const (
	DefaultModel   = "large-v3-turbo"
	CUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL   = "https://pypi.org/simple"
	BatchSize      = "4"
	VADMethod      = "silero"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"
	UVXCommand     = "uvx"
)
