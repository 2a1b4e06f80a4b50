package report

import (
	"context"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// Step runs sphinx-build as a host build step.
type Step struct {
	service build.Service

	mu   sync.Mutex
	inv  sphinx.Invocation
	last *build.Result
}

// NewStep binds an invocation to the service that runs it.
func NewStep(service build.Service, inv sphinx.Invocation) *Step {
	return &Step{service: service, inv: inv}
}

// Invocation returns a copy of the invocation the next Execute will run.
func (s *Step) Invocation() sphinx.Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv
}

// SetOutputDirectory changes where the next run writes its output.
func (s *Step) SetOutputDirectory(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inv.OutputDirectory = dir
}

// LastResult returns the outcome of the most recent Execute, or nil.
func (s *Step) LastResult() *build.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Execute runs the invocation once. Failures keep their classification.
func (s *Step) Execute(ctx context.Context) error {
	inv := s.Invocation()
	result, err := s.service.Run(ctx, inv)

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to run the report: %w", err)
	}
	return nil
}
