package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lepinkainen/feedtrack/internal/export"
	"github.com/lepinkainen/feedtrack/internal/store"
)

// History prints the most recent journal events, newest first
func (t *Tracker) History(ctx context.Context, limit int) error {
	if t.journal == nil {
		return notice(ErrHistoryDisabled, "History is disabled, set history_db in the configuration to enable it")
	}

	events, err := t.journal.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(events) == 0 {
		t.printer.Notice("There is no history yet")
		return nil
	}

	for _, e := range events {
		stamp := t.printer.Muted(e.CreatedAt.Local().Format("2006-01-02 15:04"))
		if e.EntryName == "" {
			t.printer.Plain("%s %-7s %s", stamp, e.Action, e.FeedTitle)
			continue
		}
		t.printer.Plain("%s %-7s %s -: %s", stamp, e.Action, e.FeedTitle, e.EntryName)
	}
	return nil
}

// Browse opens the interactive browser over the tracked feeds
func (t *Tracker) Browse() error {
	records, err := t.store.Load()
	if errors.Is(err, store.ErrEmpty) {
		return notice(err, "There is no feed on the list")
	}
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	return t.browse(records)
}

// DefaultExportFile is written by Export when no output path is given
const DefaultExportFile = "feedtrack.xml"

// Export writes the latest entry of every tracked feed to a single RSS or
// Atom document at outputPath.
func (t *Tracker) Export(outputPath, format string) error {
	if outputPath == "" {
		outputPath = DefaultExportFile
	}

	feedType, err := export.ParseFeedType(format)
	if err != nil {
		return notice(err, "Unknown export format %q, use rss or atom", format)
	}

	records, err := t.store.Load()
	if errors.Is(err, store.ErrEmpty) {
		return notice(err, "There is no feed to export")
	}
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	g := export.NewGenerator()
	if err := g.SaveToFile(g.Generate(records, time.Now()), feedType, outputPath); err != nil {
		return err
	}

	t.printer.Success("%d feeds exported to %s", len(records), outputPath)
	return nil
}
