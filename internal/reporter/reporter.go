/*
Package reporter defines a simple interface for structs to produce a printable report about
themselves which are typically statistically oriented.

The string returned by Report() should be one or more lines separated by newlines. Lines() splits
a report up so that the caller can prefix each line with other logging data such as the reporter
Name(). Empty lines are ignored.
*/
package reporter

import (
	"strings"
)

// Reporter is implemented by the cymru client, both resolvers and the concurrency tracker.
type Reporter interface {

	// Name returns the name of the reportable struct. This is normally used
	// as a prefix for reportable output.
	Name() string

	// Report returns one or more printable set of lines separated by
	// newlines. If 'resetCounters' is true, then any internal values used
	// to produce the report should be reset to zero *after* the report is
	// produced. Implementation needs to manage concurrent access as
	// Report() may be called by multiple go-routines.
	Report(resetCounters bool) string
}

// Lines returns the non-empty lines of r.Report() with trailing white-space removed.
func Lines(r Reporter, resetCounters bool) []string {
	var lines []string
	for _, l := range strings.Split(r.Report(resetCounters), "\n") {
		l = strings.TrimRight(l, " \t\r")
		if len(l) > 0 {
			lines = append(lines, l)
		}
	}

	return lines
}
