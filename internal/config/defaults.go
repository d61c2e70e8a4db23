package config

const (
	defaultConfigPath                 = "~/.config/autoshow/config.toml"
	defaultOutputDir                  = "~/autoshow/content"
	defaultDataDir                    = "~/.local/share/autoshow"
	defaultLogDir                     = "~/.local/share/autoshow/logs"
	defaultYtDlpBinary                = "yt-dlp"
	defaultFFmpegBinary               = "ffmpeg"
	defaultFFprobeBinary              = "ffprobe"
	defaultUVXBinary                  = "uvx"
	defaultTranscriptionService       = "whisperx"
	defaultDeepgramBaseURL            = "https://api.deepgram.com/v1"
	defaultAssemblyBaseURL            = "https://api.assemblyai.com/v2"
	defaultPollIntervalSeconds        = 3
	defaultTranscriptionTimeoutSecond = 3600
	defaultOpenAIBaseURL              = "https://api.openai.com/v1/chat/completions"
	defaultDeepSeekBaseURL            = "https://api.deepseek.com/chat/completions"
	defaultOllamaBaseURL              = "http://127.0.0.1:11434/v1/chat/completions"
	defaultLLMMaxTokens               = 4096
	defaultLLMTemperature             = 0.7
	defaultLLMTimeoutSeconds          = 600
	defaultConcurrency                = 1
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
		},
		Tools: Tools{
			YtDlp:   defaultYtDlpBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			UVX:     defaultUVXBinary,
		},
		Transcription: Transcription{
			DefaultService:      defaultTranscriptionService,
			DeepgramBaseURL:     defaultDeepgramBaseURL,
			AssemblyBaseURL:     defaultAssemblyBaseURL,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			TimeoutSeconds:      defaultTranscriptionTimeoutSecond,
		},
		LLM: LLM{
			OpenAIBaseURL:   defaultOpenAIBaseURL,
			DeepSeekBaseURL: defaultDeepSeekBaseURL,
			OllamaBaseURL:   defaultOllamaBaseURL,
			MaxTokens:       defaultLLMMaxTokens,
			Temperature:     defaultLLMTemperature,
			TimeoutSeconds:  defaultLLMTimeoutSeconds,
		},
		Workflow: Workflow{
			Concurrency: defaultConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
