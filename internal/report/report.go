package report

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/language"
)

// Report is the host's view of the sphinx-build run.
type Report struct {
	step     *Step
	identity *Localized
}

// New creates a report over step with the given default identity strings.
func New(step *Step, identity Identity) *Report {
	return &Report{step: step, identity: NewLocalized(identity)}
}

// Localize registers identity strings for a locale.
func (r *Report) Localize(tag language.Tag, id Identity) *Report {
	r.identity.Add(tag, id)
	return r
}

// Step returns the build step behind the report.
func (r *Report) Step() *Step { return r.step }

// OutputName is the base name hosts use for the report's output.
func (r *Report) OutputName() string { return r.identity.fallback.OutputName }

// CategoryName is the report group hosts list the report under.
func (r *Report) CategoryName() string { return r.identity.fallback.Category }

// Name returns the report name for the locale.
func (r *Report) Name(locale language.Tag) string {
	return r.identity.Lookup(locale).Name
}

// Description returns the report description for the locale.
func (r *Report) Description(locale language.Tag) string {
	return r.identity.Lookup(locale).Description
}

// ReportOutputDirectory is the directory the next run writes to.
func (r *Report) ReportOutputDirectory() string {
	return r.step.Invocation().OutputDirectory
}

// SetReportOutputDirectory moves the output of the next run.
func (r *Report) SetReportOutputDirectory(dir string) {
	r.step.SetOutputDirectory(dir)
}

// IsExternalReport is always true: sphinx-build writes its own files.
func (r *Report) IsExternalReport() bool { return true }

// CanGenerateReport is always true; a missing source tree is reported by Generate.
func (r *Report) CanGenerateReport() bool { return true }

// Generate runs the step. When sink is non-nil a pointer to the artifact root,
// naming the report in locale, is written to it.
func (r *Report) Generate(ctx context.Context, sink io.Writer, locale language.Tag) error {
	if err := r.step.Execute(ctx); err != nil {
		return fmt.Errorf("error generating report: %w", err)
	}
	if sink == nil {
		return nil
	}
	root := r.step.Invocation().ArtifactRoot()
	if last := r.step.LastResult(); last != nil {
		root = last.ArtifactRoot
	}
	if _, err := fmt.Fprintf(sink, "%s documentation generated in %s\n", r.Name(locale), root); err != nil {
		return fmt.Errorf("error generating report: %w", err)
	}
	return nil
}
