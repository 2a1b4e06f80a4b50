package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
	"git.home.luguber.info/inful/sphinxbuild/internal/report"
)

// ReportCmd implements the 'report' command: the host report contract driven from the CLI.
type ReportCmd struct {
	SphinxFlags `embed:""`

	ReportDir string `name:"report-dir" help:"Override the report output directory (as a host would)"`
	Locale    string `name:"locale" default:"und" help:"BCP 47 locale used for the report name and description"`
}

func (r *ReportCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, &r.SphinxFlags)
	if err != nil {
		return err
	}
	locale, err := language.Parse(r.Locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", r.Locale, err)
	}
	return RunReport(context.Background(), cfg, r.ReportDir, locale, os.Stdout)
}

// NewReport builds the report adapter over a build service for cfg.
func NewReport(cfg *config.Config, svc build.Service) *report.Report {
	step := report.NewStep(svc, cfg.Invocation())
	return report.New(step, report.Identity{
		OutputName:  cfg.Report.OutputName,
		Category:    cfg.Report.Category,
		Name:        cfg.Report.Name,
		Description: cfg.Report.Description,
	})
}

// RunReport prints the report descriptor, then generates it.
func RunReport(ctx context.Context, cfg *config.Config, reportDir string, locale language.Tag, out io.Writer) error {
	svc, cleanup := newService(cfg, metrics.NoopRecorder{})
	defer cleanup()

	rep := NewReport(cfg, svc)
	if reportDir != "" {
		rep.SetReportOutputDirectory(absFlagPath(reportDir))
	}

	_, _ = fmt.Fprintf(out, "Report:      %s\n", rep.Name(locale))
	_, _ = fmt.Fprintf(out, "Description: %s\n", rep.Description(locale))
	_, _ = fmt.Fprintf(out, "Category:    %s\n", rep.CategoryName())
	_, _ = fmt.Fprintf(out, "Output name: %s\n", rep.OutputName())
	_, _ = fmt.Fprintf(out, "Directory:   %s\n", rep.ReportOutputDirectory())

	return rep.Generate(ctx, out, locale)
}
