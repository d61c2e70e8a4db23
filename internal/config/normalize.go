package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.YtDlp = orDefault(c.Tools.YtDlp, defaultYtDlpBinary)
	c.Tools.FFmpeg = orDefault(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = orDefault(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.UVX = orDefault(c.Tools.UVX, defaultUVXBinary)
}

func (c *Config) normalizeTranscription() {
	c.Transcription.DefaultService = strings.ToLower(strings.TrimSpace(c.Transcription.DefaultService))
	if c.Transcription.DefaultService == "" {
		c.Transcription.DefaultService = defaultTranscriptionService
	}
	c.Transcription.DeepgramAPIKey = envFallback(c.Transcription.DeepgramAPIKey, "DEEPGRAM_API_KEY")
	c.Transcription.AssemblyAPIKey = envFallback(c.Transcription.AssemblyAPIKey, "ASSEMBLY_API_KEY")
	c.Transcription.DeepgramBaseURL = strings.TrimRight(orDefault(c.Transcription.DeepgramBaseURL, defaultDeepgramBaseURL), "/")
	c.Transcription.AssemblyBaseURL = strings.TrimRight(orDefault(c.Transcription.AssemblyBaseURL, defaultAssemblyBaseURL), "/")
	if c.Transcription.PollIntervalSeconds <= 0 {
		c.Transcription.PollIntervalSeconds = defaultPollIntervalSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.OpenAIAPIKey = envFallback(c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	c.LLM.AnthropicAPIKey = envFallback(c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	c.LLM.DeepSeekAPIKey = envFallback(c.LLM.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	c.LLM.OpenAIBaseURL = orDefault(c.LLM.OpenAIBaseURL, defaultOpenAIBaseURL)
	c.LLM.DeepSeekBaseURL = orDefault(c.LLM.DeepSeekBaseURL, defaultDeepSeekBaseURL)
	c.LLM.OllamaBaseURL = orDefault(c.LLM.OllamaBaseURL, defaultOllamaBaseURL)
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
