// Package fetcher downloads RSS/Atom documents and normalizes them into
// tracker.Feed values.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"regexp"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"

	"github.com/lepinkainen/feedtrack/internal/tracker"
	httputil "github.com/lepinkainen/feedtrack/pkg/http"
	"github.com/lepinkainen/feedtrack/pkg/urlutils"
)

// Error kinds returned by Fetch
var (
	ErrNetwork = errors.New("network error")
	ErrParse   = errors.New("parse error")
)

// xmlEncodingDecl matches an XML prolog that names its own encoding
var xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=`)

// Fetcher performs a single GET per feed and parses the body with gofeed
type Fetcher struct {
	client *httputil.Client
	parser *gofeed.Parser
}

// New creates a fetcher on top of client. A nil client uses the default configuration.
func New(client *httputil.Client) *Fetcher {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &Fetcher{
		client: client,
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads feedURL and returns its normalized form.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*tracker.Feed, error) {
	slog.Debug("Fetching feed", "url", feedURL)

	resp, err := f.client.GetWithContext(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	body, err := httputil.ReadResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %s: %w", ErrNetwork, feedURL, err)
	}

	if err := httputil.EnsureSuccess(resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, feedURL, err)
	}

	reader, err := decodeBody(body, httputil.GetContentType(resp))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, feedURL, err)
	}

	parsed, err := f.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, feedURL, err)
	}

	feed := normalize(parsed, feedURL)
	slog.Debug("Parsed feed", "url", feedURL, "title", feed.Title, "entries", len(feed.Entries))
	return feed, nil
}

func normalize(parsed *gofeed.Feed, feedURL string) *tracker.Feed {
	feed := &tracker.Feed{
		Title:    parsed.Title,
		SelfLink: parsed.FeedLink,
		Entries:  make([]tracker.Entry, 0, len(parsed.Items)),
	}
	if feed.SelfLink == "" {
		feed.SelfLink = feedURL
	} else {
		feed.SelfLink = resolve(feedURL, feed.SelfLink)
	}

	for _, item := range parsed.Items {
		link := item.Link
		if link != "" {
			link = resolve(feedURL, link)
		}
		id := item.GUID
		if id == "" {
			id = link
		}
		feed.Entries = append(feed.Entries, tracker.Entry{
			Title: item.Title,
			ID:    id,
			Link:  link,
		})
	}

	return feed
}

// resolve makes a link found in the document absolute. Unparseable links are
// kept as they are.
func resolve(feedURL, link string) string {
	resolved, err := urlutils.ResolveURL(feedURL, link)
	if err != nil {
		slog.Debug("Keeping unresolvable link", "url", feedURL, "link", link, "error", err)
		return link
	}
	return resolved
}

// decodeBody converts the body to UTF-8 when the Content-Type header names
// another charset and the document does not declare its own encoding. When
// the prolog declares one, the XML decoder handles the conversion.
func decodeBody(body []byte, contentType string) (io.Reader, error) {
	label := charsetLabel(contentType)
	if label == "" || declaresEncoding(body) {
		return bytes.NewReader(body), nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	if name == "utf-8" {
		return bytes.NewReader(body), nil
	}

	slog.Debug("Transcoding feed body", "charset", name)
	return charset.NewReaderLabel(label, bytes.NewReader(body))
}

func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func declaresEncoding(body []byte) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	return xmlEncodingDecl.Match(head)
}
