// Package report adapts a sphinx-build invocation to a host build system.
//
// Step is the imperative build step. Report exposes the same run through the
// report contract: identity strings, an output directory the host may move,
// and Generate. Rendering is left to sphinx-build itself; Generate only points
// the host at the produced artifact root.
package report
