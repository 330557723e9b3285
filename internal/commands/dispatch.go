package commands

import (
	"context"
	"strings"
)

// HelpText lists every command
const HelpText = `
    help     -f help
             Show all the commands
    add      -f add -l link
             Add the feed to the list
    update   -f update
             Update all the feeds in the list
    list     -f list
             List all the feeds
    delete   -f delete -i index
             Delete the feed at the index shown in list
    history  -f history [-n limit]
             Show recent additions, updates and deletions
    browse   -f browse
             Browse the feeds interactively
    export   -f export [-o file] [--format atom|rss]
             Write the latest entries as a feed
`

// UsageHint is printed for a missing or unknown function
const UsageHint = "use -f help to show all current commands"

// Request is one parsed command line
type Request struct {
	Function string
	Link     string
	Index    int // negative when not given
	Limit    int
	Output   string
	Format   string
	Args     []string
}

// Dispatch runs the command named by req.Function
func (t *Tracker) Dispatch(ctx context.Context, req Request) error {
	fn := strings.ToLower(req.Function)

	switch {
	case fn == "add":
		return t.Add(ctx, req.Link)
	case fn == "update":
		return t.Update(ctx)
	case fn == "list":
		return t.List()
	case fn == "delete" && req.Index >= 0:
		return t.Delete(ctx, req.Index)
	case fn == "history":
		return t.History(ctx, req.Limit)
	case fn == "browse":
		return t.Browse()
	case fn == "export":
		return t.Export(req.Output, req.Format)
	case fn == "help" || fn == "h" || isBareHelp(req.Args):
		t.printer.Plain("%s", HelpText)
	default:
		t.printer.Plain(UsageHint)
	}
	return nil
}

func isBareHelp(args []string) bool {
	if len(args) != 1 {
		return false
	}
	arg := strings.ToLower(args[0])
	return arg == "help" || arg == "h"
}

// UsesJournal reports whether the named function records or reads history
func UsesJournal(function string) bool {
	switch strings.ToLower(function) {
	case "add", "update", "delete", "history":
		return true
	}
	return false
}
