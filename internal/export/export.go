// Package export renders the tracked feeds as a single RSS or Atom document
// whose items are the latest entry of every feed.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/lepinkainen/feedtrack/internal/tracker"
	"github.com/lepinkainen/feedtrack/pkg/filesystem"
)

// FeedType represents the type of feed to generate
type FeedType string

const (
	RSS  FeedType = "rss"
	Atom FeedType = "atom"
)

// ErrUnsupportedType is returned for a format other than rss or atom
var ErrUnsupportedType = errors.New("unsupported feed type")

// ParseFeedType maps a user supplied format name to a FeedType
func ParseFeedType(s string) (FeedType, error) {
	switch FeedType(strings.ToLower(s)) {
	case RSS:
		return RSS, nil
	case Atom, "":
		return Atom, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, s)
	}
}

// Generator handles RSS/Atom feed generation
type Generator struct {
	Title       string
	Description string
	Link        string
	Author      string
}

// NewGenerator creates a generator with the default feed metadata
func NewGenerator() *Generator {
	return &Generator{
		Title:       "feedtrack",
		Description: "Latest entries of the tracked feeds",
		Link:        "https://github.com/lepinkainen/feedtrack",
		Author:      "feedtrack",
	}
}

// Generate builds a feed with one item per record, in list order
func (g *Generator) Generate(records []tracker.Record, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       g.Title,
		Link:        &feeds.Link{Href: g.Link},
		Description: g.Description,
		Author:      &feeds.Author{Name: g.Author},
		Id:          g.Link,
		Created:     now,
		Updated:     now,
	}

	for _, rec := range records {
		link := rec.LastUpdate.Link
		if !isWebLink(link) {
			link = rec.FeedLink
		}
		id := rec.LastUpdate.Link
		if id == "" {
			id = rec.FeedLink
		}

		feed.Items = append(feed.Items, &feeds.Item{
			Title:       itemTitle(rec),
			Link:        &feeds.Link{Href: link},
			Source:      &feeds.Link{Href: rec.FeedLink},
			Author:      &feeds.Author{Name: rec.Title},
			Description: rec.LastUpdate.Name,
			Id:          id,
			Created:     now,
			Updated:     now,
		})
	}

	slog.Debug("Generated feed", "items", len(feed.Items))
	return feed
}

// Write renders feed in the requested format
func (g *Generator) Write(w io.Writer, feed *feeds.Feed, feedType FeedType) error {
	var err error
	switch feedType {
	case RSS:
		err = feed.WriteRss(w)
	case Atom:
		err = feed.WriteAtom(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, feedType)
	}

	if err != nil {
		return fmt.Errorf("failed to write %s feed: %w", feedType, err)
	}
	return nil
}

// SaveToFile renders feed and replaces outputPath with it
func (g *Generator) SaveToFile(feed *feeds.Feed, feedType FeedType, outputPath string) error {
	var buf bytes.Buffer
	if err := g.Write(&buf, feed, feedType); err != nil {
		return err
	}

	if err := filesystem.WriteFileAtomic(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save feed: %w", err)
	}

	slog.Debug("Feed saved successfully", "type", feedType, "path", outputPath)
	return nil
}

func itemTitle(rec tracker.Record) string {
	if rec.LastUpdate.Name == "" {
		return rec.Title
	}
	return rec.Title + ": " + rec.LastUpdate.Name
}

func isWebLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
