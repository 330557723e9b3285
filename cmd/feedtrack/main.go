// Package main provides the CLI entry point for feedtrack.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/feedtrack/internal/commands"
	"github.com/lepinkainen/feedtrack/internal/config"
	"github.com/lepinkainen/feedtrack/internal/fetcher"
	"github.com/lepinkainen/feedtrack/internal/history"
	"github.com/lepinkainen/feedtrack/internal/store"
	"github.com/lepinkainen/feedtrack/internal/ui"
	httputil "github.com/lepinkainen/feedtrack/pkg/http"
)

// cli structure
type cli struct {
	Config   string `help:"Configuration file path" default:"config.yaml"`
	Debug    bool   `help:"Enable debug logging" default:"false"`
	DataFile string `help:"Data file path, overrides data_file from the configuration"`

	Function string `help:"Command to run: add, update, list, delete, history, browse, export, help" short:"f"`
	Link     string `help:"Feed link for add" short:"l"`
	Index    int    `help:"Feed index for delete, as shown by list" short:"i" default:"-1"`
	Limit    int    `help:"Number of history lines, 0 uses history_limit" short:"n"`
	Output   string `help:"Output file for export" short:"o" default:"${export_file}"`
	Format   string `help:"Export format: atom or rss" default:"atom"`

	Args []string `arg:"" optional:"" help:"Use 'help' or 'h' to list commands"`
}

// CLI holds the parsed command line
var CLI cli

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("feedtrack"),
		kong.Description("Track RSS feeds and their latest entries."),
		kong.Vars{"export_file": commands.DefaultExportFile},
	}
}

func main() {
	kong.Parse(&CLI, kongOptions()...)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}

	printer := ui.NewPrinter(os.Stdout)
	if err := run(printer); err != nil {
		printer.Failure("%s", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 0 for outcomes the user is told about, such as an empty list
// or a rejected link, and 1 for failures.
func exitCode(err error) int {
	if err == nil || commands.IsNotice(err) {
		return 0
	}
	return 1
}

// journalOptions opens the history journal when function uses it. A journal
// that cannot be opened is logged and left out so the data file commands
// still run. The returned func closes the journal.
func journalOptions(historyDB, function string) ([]commands.Option, func()) {
	if historyDB == "" || !commands.UsesJournal(function) {
		return nil, func() {}
	}

	journal, err := history.Open(historyDB)
	if err != nil {
		slog.Warn("Failed to open history journal", "path", historyDB, "error", err)
		return nil, func() {}
	}

	return []commands.Option{commands.WithJournal(journal)}, func() {
		if err := journal.Close(); err != nil {
			slog.Error("Failed to close history journal", "error", err)
		}
	}
}

func run(printer *ui.Printer) error {
	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.DataFile != "" {
		cfg.DataFile = CLI.DataFile
	}
	slog.Debug("Loaded configuration", "data_file", cfg.DataFile, "history_db", cfg.HistoryDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feeds := store.New(cfg.DataFile)
	if err := feeds.Ensure(); err != nil {
		return err
	}

	clientConfig := httputil.DefaultConfig()
	clientConfig.Timeout = cfg.Timeout
	if cfg.UserAgent != "" {
		clientConfig.UserAgent = cfg.UserAgent
	}
	f := fetcher.New(httputil.NewClient(clientConfig))

	opts, closeJournal := journalOptions(cfg.HistoryDB, CLI.Function)
	defer closeJournal()

	limit := CLI.Limit
	if limit == 0 {
		limit = cfg.HistoryLimit
	}

	t := commands.New(feeds, f, printer, opts...)
	return t.Dispatch(ctx, commands.Request{
		Function: CLI.Function,
		Link:     CLI.Link,
		Index:    CLI.Index,
		Limit:    limit,
		Output:   CLI.Output,
		Format:   CLI.Format,
		Args:     CLI.Args,
	})
}
