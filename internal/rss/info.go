package rss

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"autoshow/internal/fileutil"
	"autoshow/internal/textutil"
)

// InfoPath returns the info dump location for feed under dir.
func InfoPath(dir string, feed Feed) string {
	return filepath.Join(dir, textutil.SanitizeTitle(feed.Title)+"_info.json")
}

// WriteInfo writes the feed title and link with the selected items as
// indented JSON and returns the file path.
func WriteInfo(dir string, feed Feed, selected []Item) (string, error) {
	payload := Feed{Title: feed.Title, Link: feed.Link, Image: feed.Image, Items: selected}
	if payload.Items == nil {
		payload.Items = []Item{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode feed info: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create info dir: %w", err)
	}
	path := InfoPath(dir, feed)
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write feed info: %w", err)
	}
	return path, nil
}
