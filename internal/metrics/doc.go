// Package metrics records sphinx-build invocation metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs nil checks:
//
//	svc := build.NewService(runner).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The watch command serves the registry over HTTP with HTTPHandler when
// metrics are enabled.
package metrics
