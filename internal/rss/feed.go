package rss

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// DateLayout is the publish date format used across show notes.
const DateLayout = "2006-01-02"

// Item is one feed entry normalized for processing.
type Item struct {
	PublishDate string `json:"publishDate"`
	Title       string `json:"title"`
	ShowLink    string `json:"showLink"`
	Channel     string `json:"channel"`
	ChannelURL  string `json:"channelURL"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
}

// Feed is a parsed channel with its normalized media items in feed order.
type Feed struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Image string `json:"image,omitempty"`
	Items []Item `json:"items"`
}

// Parse decodes an RSS or Atom document. Items without an audio or video
// enclosure are dropped. A missing or unparseable publish date becomes the
// date of now.
func Parse(body string, now time.Time) (Feed, error) {
	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return Feed{}, fmt.Errorf("parse feed: %w", err)
	}

	feed := Feed{
		Title: strings.TrimSpace(parsed.Title),
		Link:  strings.TrimSpace(parsed.Link),
		Image: feedImage(parsed),
	}
	converter := md.NewConverter("", true, nil)

	feed.Items = make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		enclosure := mediaEnclosure(entry)
		if enclosure == "" {
			continue
		}
		item := Item{
			PublishDate: publishDate(entry, now),
			Title:       strings.TrimSpace(entry.Title),
			ShowLink:    enclosure,
			Channel:     feed.Title,
			ChannelURL:  feed.Link,
			Description: description(converter, entry),
			CoverImage:  itemImage(entry),
		}
		if item.CoverImage == "" {
			item.CoverImage = feed.Image
		}
		feed.Items = append(feed.Items, item)
	}
	return feed, nil
}

func mediaEnclosure(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc == nil || strings.TrimSpace(enc.URL) == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(enc.Type))
		if strings.HasPrefix(kind, "audio/") || strings.HasPrefix(kind, "video/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

func publishDate(entry *gofeed.Item, now time.Time) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.Format(DateLayout)
	}
	if raw := strings.TrimSpace(entry.Published); raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return now.Format(DateLayout)
}

func description(converter *md.Converter, entry *gofeed.Item) string {
	raw := strings.TrimSpace(entry.Description)
	if raw == "" && entry.ITunesExt != nil {
		raw = strings.TrimSpace(entry.ITunesExt.Summary)
	}
	if raw == "" {
		return ""
	}
	markdown, err := converter.ConvertString(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(markdown)
}

func itemImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	if entry.ITunesExt != nil && entry.ITunesExt.Image != "" {
		return entry.ITunesExt.Image
	}
	return ""
}

func feedImage(parsed *gofeed.Feed) string {
	if parsed.Image != nil && parsed.Image.URL != "" {
		return parsed.Image.URL
	}
	if parsed.ITunesExt != nil && parsed.ITunesExt.Image != "" {
		return parsed.ITunesExt.Image
	}
	return ""
}
