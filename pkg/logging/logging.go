// Package logging wraps github.com/charmbracelet/log so pkg/cpu has one
// shared log sink for the anomaly and fallback paths documented in
// spec.md sections 7 and 9 — paths that have no ack-visible signal and
// would otherwise be silent. A nil *log.Logger passed into pkg/cpu is
// replaced by Discard, so writers never need to nil-check their logger.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a charmbracelet/log.Logger writing to w, configured with
// the given level and a prefix identifying the firmware core, for use
// by cmd/ entry points.
func New(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "autd3cpu",
	})
	l.SetLevel(level)
	return l
}

// Discard is a logger that drops everything, used when a Context is
// constructed without an explicit logger.
var Discard = log.NewWithOptions(io.Discard, log.Options{})
