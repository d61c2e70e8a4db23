package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"autoshow/internal/fileutil"
	"autoshow/internal/logging"
	"autoshow/internal/media/ffprobe"
	"autoshow/internal/services"
)

// Canonical WAV parameters shared by every transcription provider.
const (
	SampleRate = "16000"
	Channels   = "1"
	Codec      = "pcm_s16le"
)

// SupportedExtensions is the allow-list of local input containers.
var SupportedExtensions = []string{"wav", "mp3", "m4a", "aac", "ogg", "flac", "mp4", "mkv", "avi", "mov", "webm"}

// Downloader produces a canonical WAV for a remote URL.
type Downloader interface {
	DownloadWAV(ctx context.Context, url, dest string) error
}

// Acquirer normalizes remote and local sources to the canonical WAV.
type Acquirer struct {
	outputDir     string
	ffmpeg        string
	downloader    Downloader
	logger        *slog.Logger
	now           func() time.Time
	commandRunner func(ctx context.Context, name string, args ...string) error
	inspect       func(ctx context.Context, path string) (ffprobe.Result, error)
}

// Option customizes an Acquirer.
type Option func(*Acquirer)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) Option {
	return func(a *Acquirer) {
		a.commandRunner = runner
	}
}

// WithClock overrides the time source used for rename-aside suffixes.
func WithClock(now func() time.Time) Option {
	return func(a *Acquirer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithInspector makes FromFile reject local inputs that inspect reports as
// having no audio stream.
func WithInspector(inspect func(ctx context.Context, path string) (ffprobe.Result, error)) Option {
	return func(a *Acquirer) {
		a.inspect = inspect
	}
}

// WithFFprobe inspects local inputs with the ffprobe binary.
func WithFFprobe(binary string) Option {
	return WithInspector(func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	})
}

// NewAcquirer builds an Acquirer writing WAV files into outputDir.
func NewAcquirer(outputDir, ffmpegBinary string, downloader Downloader, logger *slog.Logger, opts ...Option) *Acquirer {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	a := &Acquirer{
		outputDir:  outputDir,
		ffmpeg:     ffmpegBinary,
		downloader: downloader,
		logger:     logging.NewComponentLogger(logger, "audio"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WAVPath returns the canonical WAV location for baseName.
func (a *Acquirer) WAVPath(baseName string) string {
	return filepath.Join(a.outputDir, baseName+".wav")
}

// FromURL downloads url into the canonical WAV for baseName.
func (a *Acquirer) FromURL(ctx context.Context, url, baseName string) (string, error) {
	if a.downloader == nil {
		return "", services.Wrap(services.ErrConfiguration, "audio", "download", "no downloader configured", nil)
	}
	dest := a.WAVPath(baseName)
	if _, err := a.clearDestination(ctx, dest); err != nil {
		return "", err
	}
	if err := a.downloader.DownloadWAV(ctx, url, dest); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "download", url, err)
	}
	return dest, nil
}

// FromFile validates a local file against the allow-list and transcodes it to
// the canonical WAV for baseName.
func (a *Acquirer) FromFile(ctx context.Context, path, baseName string) (string, error) {
	src, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "audio", "resolve input", path, err)
	}
	kind, err := Detect(src)
	if err != nil {
		return "", err
	}
	if err := a.requireAudioStream(ctx, src); err != nil {
		return "", err
	}

	dest := a.WAVPath(baseName)
	if aside, err := a.clearDestination(ctx, dest); err != nil {
		return "", err
	} else if aside != "" && samePath(src, dest) {
		src = aside
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-sn",
		"-dn",
		"-ac", Channels,
		"-ar", SampleRate,
		"-c:a", Codec,
		dest,
	}
	if err := a.run(ctx, a.ffmpeg, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "transcode", fmt.Sprintf("%s (%s)", path, kind), err)
	}
	return dest, nil
}

// Detect sniffs path's content and returns the matching allow-listed
// extension. Anything outside the allow-list is an unsupported input.
func Detect(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrUnsupportedInput, "audio", "detect type", path, err)
	}
	for m := mt; m != nil; m = m.Parent() {
		ext := strings.TrimPrefix(m.Extension(), ".")
		for _, allowed := range SupportedExtensions {
			if ext == allowed {
				return ext, nil
			}
		}
	}
	return "", services.Wrap(services.ErrUnsupportedInput, "audio", "detect type",
		fmt.Sprintf("%s has unsupported type %s (supported: %s)", path, mt.String(), strings.Join(SupportedExtensions, ",")), nil)
}

func (a *Acquirer) requireAudioStream(ctx context.Context, path string) error {
	if a.inspect == nil {
		return nil
	}
	result, err := a.inspect(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "inspect input", path, err)
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrUnsupportedInput, "audio", "inspect input",
			fmt.Sprintf("%s has no audio stream", path), nil)
	}
	return nil
}

func (a *Acquirer) clearDestination(ctx context.Context, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "prepare output", dest, err)
	}
	aside, moved, err := fileutil.RenameAside(dest, a.now())
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "rename existing wav", dest, err)
	}
	if moved {
		logging.WithContext(ctx, a.logger).Info("existing wav renamed aside",
			logging.String(logging.FieldEventType, "wav_renamed"),
			logging.String("path", dest),
			logging.String("moved_to", aside),
		)
	}
	return aside, nil
}

func (a *Acquirer) run(ctx context.Context, name string, args ...string) error {
	if a.commandRunner != nil {
		return a.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
