package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sphinxbuild/internal/gitinfo"
	"git.home.luguber.info/inful/sphinxbuild/internal/history"
)

// HistoryCmd lists recorded invocations.
type HistoryCmd struct {
	Limit int  `short:"n" default:"20" help:"Number of invocations to show (0 for all)"`
	Args  bool `name:"args" help:"Also print each invocation's argument vector"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, nil)
	if err != nil {
		return err
	}
	return RunHistory(context.Background(), cfg, h.Limit, h.Args, os.Stdout)
}

// RunHistory prints the most recent invocations from the configured store.
func RunHistory(ctx context.Context, cfg *config.Config, limit int, withArgs bool, out io.Writer) error {
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "no invocation history recorded").
			WithContext("path", path).
			Build()
	}

	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return printRecords(out, records, withArgs)
}

func printRecords(out io.Writer, records []history.Record, withArgs bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No invocations recorded")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILDER\tSTATE\tEXIT\tDURATION\tREVISION\tID")
	for _, r := range records {
		rev := gitinfo.Revision{Commit: r.Revision}.Short()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Builder, r.State, r.ExitCode,
			r.Duration.Round(time.Millisecond), rev, r.ID)
		if withArgs {
			_, _ = fmt.Fprintf(tw, "\t%s\t\t\t\t\t\n", strings.Join(r.Args, " "))
		}
	}
	return tw.Flush()
}
