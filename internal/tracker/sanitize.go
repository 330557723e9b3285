package tracker

import "errors"

// ErrNoEntries is returned when a feed carries no entries to summarize.
var ErrNoEntries = errors.New("feed has no entries")

// Sanitize projects a parsed feed into the record that gets persisted.
func Sanitize(feed *Feed) (Record, error) {
	if len(feed.Entries) == 0 {
		return Record{}, ErrNoEntries
	}

	latest := feed.Entries[0]
	return Record{
		Title:    feed.Title,
		FeedLink: feed.SelfLink,
		LastUpdate: LastUpdate{
			Name: latest.Title,
			Link: latest.ID,
		},
	}, nil
}

// LatestEntry returns the newest entry of the feed.
func (f *Feed) LatestEntry() (Entry, error) {
	if len(f.Entries) == 0 {
		return Entry{}, ErrNoEntries
	}
	return f.Entries[0], nil
}

// HasNewContent reports whether the feed's newest entry differs from the one
// recorded. Only the entry title is compared, so a feed that changes nothing
// but its own title is never considered updated.
func (r Record) HasNewContent(feed *Feed) (bool, error) {
	latest, err := feed.LatestEntry()
	if err != nil {
		return false, err
	}
	return latest.Title != r.LastUpdate.Name, nil
}
