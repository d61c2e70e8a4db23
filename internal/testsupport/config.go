package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"autoshow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "content")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	for _, dir := range []string{cfgVal.Paths.OutputDir, cfgVal.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithKeys sets every provider API key to a placeholder value.
func WithKeys() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.OpenAIAPIKey = "test-openai"
		b.cfg.LLM.AnthropicAPIKey = "test-anthropic"
		b.cfg.LLM.DeepSeekAPIKey = "test-deepseek"
		b.cfg.Transcription.DeepgramAPIKey = "test-deepgram"
		b.cfg.Transcription.AssemblyAPIKey = "test-assembly"
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends their directory to PATH. If names is empty, every
// external tool autoshow spawns is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe", "uvx"}
		}
		for _, name := range names {
			WriteScript(b.t, filepath.Join(b.binDir(), name), "exit 0\n")
		}
		b.prependPath()
	}
}

// WithScript installs a shell script named name (body excludes the shebang)
// and points the matching tool setting at it.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), name)
		WriteScript(b.t, target, body)
		switch name {
		case "yt-dlp":
			b.cfg.Tools.YtDlp = target
		case "ffmpeg":
			b.cfg.Tools.FFmpeg = target
		case "ffprobe":
			b.cfg.Tools.FFprobe = target
		case "uvx":
			b.cfg.Tools.UVX = target
		}
	}
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return dir
}

func (b *configBuilder) prependPath() {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", b.binDir()+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
