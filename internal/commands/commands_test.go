package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/feedtrack/internal/export"
	"github.com/lepinkainen/feedtrack/internal/fetcher"
	"github.com/lepinkainen/feedtrack/internal/history"
	"github.com/lepinkainen/feedtrack/internal/store"
	"github.com/lepinkainen/feedtrack/internal/tracker"
	"github.com/lepinkainen/feedtrack/internal/ui"
)

type fakeFetcher struct {
	feeds map[string]*tracker.Feed
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		feeds: make(map[string]*tracker.Feed),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, feedURL string) (*tracker.Feed, error) {
	f.calls = append(f.calls, feedURL)
	if err, ok := f.errs[feedURL]; ok {
		return nil, err
	}
	feed, ok := f.feeds[feedURL]
	if !ok {
		return nil, fmt.Errorf("%w: no such feed %s", fetcher.ErrNetwork, feedURL)
	}
	return feed, nil
}

type fakeJournal struct {
	events []history.Event
	err    error
}

func (j *fakeJournal) Record(_ context.Context, event history.Event) error {
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, event)
	return nil
}

func (j *fakeJournal) Recent(_ context.Context, limit int) ([]history.Event, error) {
	if j.err != nil {
		return nil, j.err
	}
	out := make([]history.Event, 0, len(j.events))
	for i := len(j.events) - 1; i >= 0; i-- {
		out = append(out, j.events[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type harness struct {
	tracker *Tracker
	store   *store.Store
	fetcher *fakeFetcher
	journal *fakeJournal
	out     *bytes.Buffer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:   store.New(filepath.Join(t.TempDir(), "Data.json")),
		fetcher: newFakeFetcher(),
		journal: &fakeJournal{},
		out:     &bytes.Buffer{},
	}
	require.NoError(t, h.store.Ensure())
	opts = append([]Option{WithJournal(h.journal)}, opts...)
	h.tracker = New(h.store, h.fetcher, ui.NewPrinter(h.out), opts...)
	return h
}

func (h *harness) seed(t *testing.T, records ...tracker.Record) {
	t.Helper()
	require.NoError(t, h.store.Save(records))
}

func (h *harness) fileContent(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.store.Path())
	require.NoError(t, err)
	return string(data)
}

func (h *harness) load(t *testing.T) []tracker.Record {
	t.Helper()
	records, err := h.store.Load()
	require.NoError(t, err)
	return records
}

func rec(title string) tracker.Record {
	return tracker.Record{
		Title:      title,
		FeedLink:   "https://" + title + ".example.com/feed.rss",
		LastUpdate: tracker.LastUpdate{Name: title + " post 1", Link: title + "-1"},
	}
}

func feedFor(title, selfLink, latest, latestID string) *tracker.Feed {
	return &tracker.Feed{
		Title:    title,
		SelfLink: selfLink,
		Entries: []tracker.Entry{
			{Title: latest, ID: latestID, Link: "https://example.com/" + latestID},
			{Title: "older", ID: "older"},
		},
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)
	link := "https://foo.example.com/feed.rss"
	h.fetcher.feeds[link] = feedFor("Foo", link, "Foo post 7", "foo-7")

	require.NoError(t, h.tracker.Add(context.Background(), link))

	assert.Equal(t, []tracker.Record{{
		Title:      "Foo",
		FeedLink:   link,
		LastUpdate: tracker.LastUpdate{Name: "Foo post 7", Link: "foo-7"},
	}}, h.load(t))
	assert.Equal(t, "Foo has been added to the list\n", h.out.String())

	require.Len(t, h.journal.events, 1)
	assert.Equal(t, history.ActionAdded, h.journal.events[0].Action)
	assert.Equal(t, "Foo", h.journal.events[0].FeedTitle)
	assert.Equal(t, "Foo post 7", h.journal.events[0].EntryName)
}

func TestAdd_AppendsInOrder(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("a"), rec("b"))
	link := "https://c.example.com/feed.rss"
	h.fetcher.feeds[link] = feedFor("c", link, "c post", "c-1")

	require.NoError(t, h.tracker.Add(context.Background(), link))

	records := h.load(t)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{records[0].Title, records[1].Title, records[2].Title})
}

func TestAdd_InvalidLink(t *testing.T) {
	h := newHarness(t)

	err := h.tracker.Add(context.Background(), "https://example.com/feed.xml")

	assert.ErrorIs(t, err, ErrInvalidLink)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "The link doesn't meet specifications")
	assert.Empty(t, h.fetcher.calls, "invalid links must not be fetched")
	assert.Empty(t, h.fileContent(t))
}

func TestAdd_Duplicate(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("Foo"))
	before := h.fileContent(t)

	link := "https://mirror.example.com/other.rss"
	h.fetcher.feeds[link] = feedFor("Foo", link, "different post", "x-1")

	err := h.tracker.Add(context.Background(), link)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Foo is already on the list")
	assert.Equal(t, before, h.fileContent(t))
	assert.Len(t, h.load(t), 1)
	assert.Empty(t, h.journal.events)
}

func TestAdd_TitleMatchIsCaseSensitive(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("Foo"))
	link := "https://foo2.example.com/feed.rss"
	h.fetcher.feeds[link] = feedFor("foo", link, "post", "p-1")

	require.NoError(t, h.tracker.Add(context.Background(), link))
	assert.Len(t, h.load(t), 2)
}

func TestAdd_FetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "network", err: fmt.Errorf("%w: connection refused", fetcher.ErrNetwork), want: fetcher.ErrNetwork},
		{name: "parse", err: fmt.Errorf("%w: not xml", fetcher.ErrParse), want: fetcher.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, rec("a"))
			before := h.fileContent(t)
			link := "https://broken.example.com/feed.rss"
			h.fetcher.errs[link] = tt.err

			err := h.tracker.Add(context.Background(), link)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, h.fileContent(t))
		})
	}
}

func TestAdd_FeedWithoutEntries(t *testing.T) {
	h := newHarness(t)
	link := "https://empty.example.com/feed.rss"
	h.fetcher.feeds[link] = &tracker.Feed{Title: "Empty", SelfLink: link}

	err := h.tracker.Add(context.Background(), link)

	assert.ErrorIs(t, err, tracker.ErrNoEntries)
	assert.Empty(t, h.fileContent(t))
}

func TestList(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("A"), rec("B"), rec("C"))

	require.NoError(t, h.tracker.List())

	assert.Equal(t, "0 -: A\n1 -: B\n2 -: C\n", h.out.String())
}

func TestList_Empty(t *testing.T) {
	h := newHarness(t)

	err := h.tracker.List()

	assert.ErrorIs(t, err, store.ErrEmpty)
	assert.EqualError(t, err, "There is no feed on the list")
	assert.Empty(t, h.out.String())
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("A"), rec("B"), rec("C"))

	require.NoError(t, h.tracker.Delete(context.Background(), 1))

	assert.Equal(t, []tracker.Record{rec("A"), rec("C")}, h.load(t))
	assert.Equal(t, "Element deleted successfully\n", h.out.String())
	require.Len(t, h.journal.events, 1)
	assert.Equal(t, history.ActionDeleted, h.journal.events[0].Action)
	assert.Equal(t, "B", h.journal.events[0].FeedTitle)
}

func TestDelete_OutOfRange(t *testing.T) {
	for _, index := range []int{3, 5, -1} {
		t.Run(fmt.Sprintf("index %d", index), func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, rec("A"), rec("B"), rec("C"))
			before := h.fileContent(t)

			err := h.tracker.Delete(context.Background(), index)

			assert.ErrorIs(t, err, ErrIndexOutOfRange)
			assert.EqualError(t, err, "Index out of bound")
			assert.Equal(t, before, h.fileContent(t))
		})
	}
}

func TestDelete_Empty(t *testing.T) {
	h := newHarness(t)

	err := h.tracker.Delete(context.Background(), 0)

	assert.ErrorIs(t, err, store.ErrEmpty)
	assert.EqualError(t, err, "There is no feed to delete")
}

func TestDelete_LastRecord(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("A"))

	require.NoError(t, h.tracker.Delete(context.Background(), 0))

	assert.Equal(t, "[]\n", h.fileContent(t))
	assert.ErrorIs(t, h.tracker.List(), store.ErrEmpty)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	a, b := rec("A"), rec("B")
	h.seed(t, a, b)

	// A: same latest entry title, different feed title and id; must stay untouched
	h.fetcher.feeds[a.FeedLink] = feedFor("A renamed", "https://moved.example.com/a.rss", a.LastUpdate.Name, "new-id")
	// B: new entry and a moved self link
	h.fetcher.feeds[b.FeedLink] = feedFor("B", "https://new.example.com/b.rss", "B post 2", "B-2")

	aBefore, err := store.Encode([]tracker.Record{a})
	require.NoError(t, err)

	require.NoError(t, h.tracker.Update(context.Background()))

	records := h.load(t)
	require.Len(t, records, 2)
	assert.Equal(t, a, records[0])
	aAfter, err := store.Encode(records[:1])
	require.NoError(t, err)
	assert.Equal(t, string(aBefore), string(aAfter))

	assert.Equal(t, tracker.Record{
		Title:      "B",
		FeedLink:   "https://new.example.com/b.rss",
		LastUpdate: tracker.LastUpdate{Name: "B post 2", Link: "B-2"},
	}, records[1])

	assert.Equal(t, "A has no new update\nB has been updated\n -:B-2\n", h.out.String())
	assert.Equal(t, []string{a.FeedLink, b.FeedLink}, h.fetcher.calls)

	require.Len(t, h.journal.events, 1)
	assert.Equal(t, history.ActionUpdated, h.journal.events[0].Action)
	assert.Equal(t, "B post 2", h.journal.events[0].EntryName)
}

func TestUpdate_ReplacesTitleOnlyWithNewContent(t *testing.T) {
	h := newHarness(t)
	a := rec("A")
	h.seed(t, a)
	h.fetcher.feeds[a.FeedLink] = feedFor("A v2", a.FeedLink, "A post 2", "A-2")

	require.NoError(t, h.tracker.Update(context.Background()))

	records := h.load(t)
	require.Len(t, records, 1)
	assert.Equal(t, "A v2", records[0].Title)
	assert.Equal(t, "A has been updated\n -:A-2\n", h.out.String())
}

func TestUpdate_FetchFailureSavesNothing(t *testing.T) {
	h := newHarness(t)
	a, b := rec("A"), rec("B")
	h.seed(t, a, b)
	before := h.fileContent(t)

	h.fetcher.feeds[a.FeedLink] = feedFor("A", a.FeedLink, "A post 2", "A-2")
	h.fetcher.errs[b.FeedLink] = fmt.Errorf("%w: timeout", fetcher.ErrNetwork)

	err := h.tracker.Update(context.Background())

	assert.ErrorIs(t, err, fetcher.ErrNetwork)
	assert.Contains(t, err.Error(), "failed to update B")
	assert.Equal(t, before, h.fileContent(t))
	assert.Empty(t, h.journal.events)
}

func TestUpdate_FeedWithoutEntries(t *testing.T) {
	h := newHarness(t)
	a := rec("A")
	h.seed(t, a)
	h.fetcher.feeds[a.FeedLink] = &tracker.Feed{Title: "A"}

	err := h.tracker.Update(context.Background())

	assert.ErrorIs(t, err, tracker.ErrNoEntries)
}

func TestUpdate_Empty(t *testing.T) {
	h := newHarness(t)

	err := h.tracker.Update(context.Background())

	assert.ErrorIs(t, err, store.ErrEmpty)
	assert.EqualError(t, err, "There is no feed to update")
	assert.Empty(t, h.fetcher.calls)
}

func TestJournalFailureDoesNotFailCommand(t *testing.T) {
	h := newHarness(t)
	h.journal.err = errors.New("disk full")
	h.seed(t, rec("A"))

	require.NoError(t, h.tracker.Delete(context.Background(), 0))
	assert.Equal(t, "[]\n", h.fileContent(t))
}

func TestWithoutJournal(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "Data.json"))
	require.NoError(t, s.Save([]tracker.Record{rec("A")}))
	var out bytes.Buffer
	tr := New(s, newFakeFetcher(), ui.NewPrinter(&out))

	require.NoError(t, tr.Delete(context.Background(), 0))

	err := tr.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	at := time.Date(2024, 5, 6, 7, 8, 0, 0, time.Local)
	h.journal.events = []history.Event{
		{Action: history.ActionAdded, FeedTitle: "A", EntryName: "A post 1", CreatedAt: at},
		{Action: history.ActionDeleted, FeedTitle: "A", CreatedAt: at},
	}

	require.NoError(t, h.tracker.History(context.Background(), 10))

	assert.Equal(t,
		"2024-05-06 07:08 deleted A\n"+
			"2024-05-06 07:08 added   A -: A post 1\n",
		h.out.String())
}

func TestHistory_Empty(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.tracker.History(context.Background(), 10))
	assert.Equal(t, "There is no history yet\n", h.out.String())
}

func TestBrowse(t *testing.T) {
	var got []tracker.Record
	h := newHarness(t, WithBrowser(func(records []tracker.Record) error {
		got = records
		return nil
	}))
	h.seed(t, rec("A"), rec("B"))

	require.NoError(t, h.tracker.Browse())
	assert.Equal(t, []tracker.Record{rec("A"), rec("B")}, got)
}

func TestBrowse_Empty(t *testing.T) {
	called := false
	h := newHarness(t, WithBrowser(func([]tracker.Record) error {
		called = true
		return nil
	}))

	err := h.tracker.Browse()

	assert.ErrorIs(t, err, store.ErrEmpty)
	assert.False(t, called)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.seed(t, rec("A"), rec("B"))
	out := filepath.Join(t.TempDir(), "latest.xml")

	require.NoError(t, h.tracker.Export(out, "rss"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<rss")
	assert.Contains(t, string(data), "A: A post 1")
	assert.Equal(t, fmt.Sprintf("2 feeds exported to %s\n", out), h.out.String())
}

func TestExport_Errors(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(t.TempDir(), "latest.xml")

	err := h.tracker.Export(out, "atom")
	assert.ErrorIs(t, err, store.ErrEmpty)
	assert.EqualError(t, err, "There is no feed to export")

	h.seed(t, rec("A"))
	err = h.tracker.Export(out, "json")
	assert.ErrorIs(t, err, export.ErrUnsupportedType)
	assert.NoFileExists(t, out)
}
