package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autoshow/internal/rss"
	"autoshow/internal/services/ytdlp"
	"autoshow/internal/textutil"
)

// ShowNote identifies the show and episode behind one processed item.
type ShowNote struct {
	ShowLink    string
	Channel     string
	ChannelURL  string
	Title       string
	Description string
	PublishDate string
	CoverImage  string
}

// Identity is the metadata plus the filesystem-safe base name shared by every
// file written for the item.
type Identity struct {
	Note     ShowNote
	BaseName string
}

// FromVideo builds the identity for a remote video.
func FromVideo(sourceURL string, info ytdlp.Info) Identity {
	note := ShowNote{
		ShowLink:    firstNonEmpty(info.WebpageURL, sourceURL),
		Channel:     info.Channel,
		ChannelURL:  info.ChannelURL,
		Title:       info.Title,
		PublishDate: info.UploadDate,
		CoverImage:  info.Thumbnail,
	}
	return Identity{Note: note, BaseName: datedName(note.PublishDate, note.Title)}
}

// FromFile builds the identity for a local file from its name and
// modification date.
func FromFile(path string) (Identity, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Identity{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Identity{}, fmt.Errorf("%s is a directory", path)
	}
	note := ShowNote{
		ShowLink:    abs,
		Title:       textutil.TitleFromFilename(abs),
		PublishDate: info.ModTime().Format(rss.DateLayout),
	}
	return Identity{Note: note, BaseName: textutil.SanitizeTitle(textutil.FileStem(abs))}, nil
}

// FromRSSItem builds the identity for a normalized feed item.
func FromRSSItem(item rss.Item) Identity {
	note := ShowNote{
		ShowLink:    item.ShowLink,
		Channel:     item.Channel,
		ChannelURL:  item.ChannelURL,
		Title:       item.Title,
		Description: item.Description,
		PublishDate: item.PublishDate,
		CoverImage:  item.CoverImage,
	}
	return Identity{Note: note, BaseName: datedName(note.PublishDate, note.Title)}
}

func datedName(date, title string) string {
	name := textutil.SanitizeTitle(title)
	if date = strings.TrimSpace(date); date != "" {
		name = textutil.SanitizeTitle(date + "-" + name)
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
