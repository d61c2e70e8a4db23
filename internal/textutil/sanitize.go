package textutil

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxNameLength caps sanitized names.
const MaxNameLength = 200

var (
	disallowedChars = regexp.MustCompile(`[^\w\s-]`)
	separatorRuns   = regexp.MustCompile(`[\s_]+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
	stemSeparators  = regexp.MustCompile(`[\s_.-]+`)
)

// SanitizeTitle converts text into a lowercase name made only of [a-z0-9-],
// at most MaxNameLength long, with no leading or trailing hyphen. Input that
// sanitizes to nothing yields "untitled".
func SanitizeTitle(title string) string {
	out := disallowedChars.ReplaceAllString(title, "")
	out = separatorRuns.ReplaceAllString(out, "-")
	out = hyphenRuns.ReplaceAllString(out, "-")
	out = strings.ToLower(out)
	if len(out) > MaxNameLength {
		out = out[:MaxNameLength]
	}
	out = strings.Trim(out, "-")
	if out == "" {
		return "untitled"
	}
	return out
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TitleFromFilename derives a display title from a file path:
// "my_great-episode.mp3" becomes "My Great Episode".
func TitleFromFilename(path string) string {
	stem := strings.TrimSpace(stemSeparators.ReplaceAllString(FileStem(path), " "))
	if stem == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(stem)
}
