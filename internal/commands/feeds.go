package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/lepinkainen/feedtrack/internal/history"
	"github.com/lepinkainen/feedtrack/internal/store"
	"github.com/lepinkainen/feedtrack/internal/tracker"
)

// Add fetches the feed at link and appends it unless a feed with the same
// title is already tracked.
func (t *Tracker) Add(ctx context.Context, link string) error {
	if !strings.Contains(link, ".rss") {
		return notice(ErrInvalidLink, "The link doesn't meet specifications")
	}

	feed, err := t.fetcher.Fetch(ctx, link)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", link, err)
	}

	rec, err := tracker.Sanitize(feed)
	if err != nil {
		return fmt.Errorf("cannot track %s: %w", link, err)
	}

	records, err := t.store.Load()
	if err != nil && !errors.Is(err, store.ErrEmpty) {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	if lo.ContainsBy(records, func(existing tracker.Record) bool { return existing.Title == rec.Title }) {
		return notice(ErrDuplicate, "%s is already on the list", rec.Title)
	}

	records = append(records, rec)
	if err := t.store.Save(records); err != nil {
		return err
	}

	t.printer.Success("%s has been added to the list", rec.Title)
	t.record(ctx, history.ActionAdded, rec)
	return nil
}

// List prints every tracked feed with its index
func (t *Tracker) List() error {
	records, err := t.store.Load()
	if errors.Is(err, store.ErrEmpty) {
		return notice(err, "There is no feed on the list")
	}
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	for i, rec := range records {
		t.printer.Indexed(i, rec.Title)
	}
	return nil
}

// Update re-fetches every feed in order. A record whose newest entry title is
// unchanged is kept as is; otherwise it is replaced by a freshly sanitized
// record. Nothing is saved if any fetch fails.
func (t *Tracker) Update(ctx context.Context) error {
	records, err := t.store.Load()
	if errors.Is(err, store.ErrEmpty) {
		return notice(err, "There is no feed to update")
	}
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	result := make([]tracker.Record, 0, len(records))
	var updated []tracker.Record

	for _, rec := range records {
		feed, err := t.fetcher.Fetch(ctx, rec.FeedLink)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", rec.Title, err)
		}

		changed, err := rec.HasNewContent(feed)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", rec.Title, err)
		}

		if !changed {
			result = append(result, rec)
			t.printer.Notice("%s has no new update", rec.Title)
			continue
		}

		fresh, err := tracker.Sanitize(feed)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", rec.Title, err)
		}
		result = append(result, fresh)
		updated = append(updated, fresh)

		t.printer.Success("%s has been updated", rec.Title)
		t.printer.Plain(" -:%s", fresh.LastUpdate.Link)
	}

	if err := t.store.Save(result); err != nil {
		return err
	}

	for _, rec := range updated {
		t.record(ctx, history.ActionUpdated, rec)
	}
	return nil
}

// Delete removes the feed at index
func (t *Tracker) Delete(ctx context.Context, index int) error {
	records, err := t.store.Load()
	if errors.Is(err, store.ErrEmpty) {
		return notice(err, "There is no feed to delete")
	}
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	if index < 0 || index >= len(records) {
		return notice(ErrIndexOutOfRange, "Index out of bound")
	}

	removed := records[index]
	records = append(records[:index], records[index+1:]...)
	if err := t.store.Save(records); err != nil {
		return err
	}

	t.printer.Success("Element deleted successfully")
	t.record(ctx, history.ActionDeleted, removed)
	return nil
}
