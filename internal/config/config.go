package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"autoshow/internal/providers"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state directories.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tools names the external executables the pipeline spawns.
type Tools struct {
	YtDlp   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	UVX     string `toml:"uvx"`
}

// Transcription contains transcription backend settings.
type Transcription struct {
	DefaultService      string `toml:"default_service"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	DeepgramAPIKey      string `toml:"deepgram_api_key"`
	DeepgramBaseURL     string `toml:"deepgram_base_url"`
	AssemblyAPIKey      string `toml:"assembly_api_key"`
	AssemblyBaseURL     string `toml:"assembly_base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// LLM contains LLM backend credentials and request settings.
type LLM struct {
	OpenAIAPIKey    string  `toml:"openai_api_key"`
	AnthropicAPIKey string  `toml:"anthropic_api_key"`
	DeepSeekAPIKey  string  `toml:"deepseek_api_key"`
	OpenAIBaseURL   string  `toml:"openai_base_url"`
	DeepSeekBaseURL string  `toml:"deepseek_base_url"`
	OllamaBaseURL   string  `toml:"ollama_base_url"`
	MaxTokens       int     `toml:"max_tokens"`
	Temperature     float64 `toml:"temperature"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Workflow contains batch execution settings.
type Workflow struct {
	Concurrency      int  `toml:"concurrency"`
	KeepIntermediate bool `toml:"keep_intermediate"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for autoshow.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autoshow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, data, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite file backing the show-note store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "autoshow.db")
}

// ProviderKeys returns the API keys handed to the provider registry.
func (c *Config) ProviderKeys() providers.Keys {
	return providers.Keys{
		OpenAI:    c.LLM.OpenAIAPIKey,
		Anthropic: c.LLM.AnthropicAPIKey,
		DeepSeek:  c.LLM.DeepSeekAPIKey,
		Deepgram:  c.Transcription.DeepgramAPIKey,
		Assembly:  c.Transcription.AssemblyAPIKey,
	}
}

// TranscriptionTimeout bounds a single transcription attempt. Zero disables it.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// LLMTimeout bounds a single LLM attempt. Zero disables it.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// PollInterval is the delay between AssemblyAI status checks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Transcription.PollIntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
