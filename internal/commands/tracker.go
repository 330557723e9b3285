// Package commands implements the feed tracker operations on top of the
// store, the fetcher and the history journal.
package commands

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/feedtrack/internal/browse"
	"github.com/lepinkainen/feedtrack/internal/history"
	"github.com/lepinkainen/feedtrack/internal/store"
	"github.com/lepinkainen/feedtrack/internal/tracker"
	"github.com/lepinkainen/feedtrack/internal/ui"
)

// Fetcher retrieves and parses a feed
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (*tracker.Feed, error)
}

// Journal records and lists changes to the tracked feed list
type Journal interface {
	Record(ctx context.Context, event history.Event) error
	Recent(ctx context.Context, limit int) ([]history.Event, error)
}

// BrowseFunc shows records interactively
type BrowseFunc func(records []tracker.Record) error

// Tracker runs one command per invocation: load, compute, save.
type Tracker struct {
	store   *store.Store
	fetcher Fetcher
	printer *ui.Printer
	journal Journal
	browse  BrowseFunc
}

// Option configures a Tracker
type Option func(*Tracker)

// WithJournal enables the history journal
func WithJournal(j Journal) Option {
	return func(t *Tracker) {
		t.journal = j
	}
}

// WithBrowser replaces the interactive browser
func WithBrowser(fn BrowseFunc) Option {
	return func(t *Tracker) {
		t.browse = fn
	}
}

// New creates a tracker
func New(s *store.Store, f Fetcher, p *ui.Printer, opts ...Option) *Tracker {
	t := &Tracker{
		store:   s,
		fetcher: f,
		printer: p,
		browse:  browse.Run,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// record writes a journal event. Journal failures never fail a command
// because the data file has already been saved.
func (t *Tracker) record(ctx context.Context, action history.Action, rec tracker.Record) {
	if t.journal == nil {
		return
	}

	err := t.journal.Record(ctx, history.Event{
		Action:    action,
		FeedTitle: rec.Title,
		EntryName: rec.LastUpdate.Name,
		EntryLink: rec.LastUpdate.Link,
	})
	if err != nil {
		slog.Warn("Failed to record history", "action", action, "feed", rec.Title, "error", err)
	}
}
