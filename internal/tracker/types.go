// Package tracker defines the tracked feed record and its projection from a
// parsed feed.
package tracker

// Entry is one item within a parsed feed
type Entry struct {
	Title string
	ID    string // stable identifier (RSS guid, Atom id)
	Link  string
}

// Feed is the normalized shape of a fetched RSS/Atom document
type Feed struct {
	Title    string
	SelfLink string
	Entries  []Entry // newest first, as published
}

// LastUpdate identifies the most recently seen entry of a feed
type LastUpdate struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Record is the persisted summary of one tracked feed
type Record struct {
	Title      string     `json:"title"`
	FeedLink   string     `json:"feedLink"`
	LastUpdate LastUpdate `json:"lastUpdate"`
}
