// Package browse provides an interactive browser over tracked feeds using Bubble Tea.
package browse

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/feedtrack/internal/tracker"
)

const maxTitleLength = 70

// FormatListItem formats a record as a single list line
// Example: " 0. Example Serial  (Chapter 12)"
func FormatListItem(index int, rec tracker.Record) string {
	title := truncate(rec.Title, maxTitleLength)
	latest := truncate(rec.LastUpdate.Name, 40)
	if latest == "" {
		return fmt.Sprintf("%2d. %s", index, title)
	}
	return fmt.Sprintf("%2d. %s  (%s)", index, title, latest)
}

// FormatDetail formats every field of a record
func FormatDetail(index int, rec tracker.Record) string {
	var b strings.Builder

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")
	b.WriteString(fmt.Sprintf("Index: %d\n", index))
	b.WriteString(fmt.Sprintf("Title: %s\n", rec.Title))
	b.WriteString(fmt.Sprintf("Feed: %s\n", rec.FeedLink))
	b.WriteString(fmt.Sprintf("Latest entry: %s\n", rec.LastUpdate.Name))
	if rec.LastUpdate.Link != "" {
		b.WriteString(fmt.Sprintf("Entry link: %s\n", rec.LastUpdate.Link))
	}
	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
