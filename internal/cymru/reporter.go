package cymru

import (
	"errors"
	"fmt"
)

// qx = Query indeX into the per-query-type stats array

type qxInt int

const (
	qxOrigin qxInt = iota
	qxASInfo
	qxArraySize
)

// fx = Failure indeX into the per-query-type failure array

type fxInt int

const (
	fxNoResults fxInt = iota
	fxIO
	fxResolution
	fxOther
	fxArraySize
)

type queryStats struct {
	success  int
	failures [fxArraySize]int
}

// clientStats is a separate struct to make resetCounters() simple and resilient to changes.
type clientStats struct {
	lookupSuccess int
	lookupFailure int
	skipped       int // Unparsable rows and AS number tokens
	queries       [qxArraySize]queryStats
}

// Caller has protected data structures
func (t *Client) resetCounters() {
	t.clientStats = clientStats{}
}

// classify maps a transport error to its failure index
func classify(err error) fxInt {
	switch {
	case errors.Is(err, ErrIO):
		return fxIO
	case errors.Is(err, ErrResolution):
		return fxResolution
	case errors.Is(err, ErrNoResults):
		return fxNoResults
	}

	return fxOther
}

func (t *Client) addQuerySuccess(qx qxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queries[qx].success++
}

func (t *Client) addQueryFailure(qx qxInt, fx fxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queries[qx].failures[fx]++
}

func (t *Client) addSkipped(count int) {
	if count == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.skipped += count
}

// addLookup tracks the outcome of IP2ASN() calls. There is exactly one of these per call.
func (t *Client) addLookup(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok {
		t.lookupSuccess++
	} else {
		t.lookupFailure++
	}
}

func (t *Client) Name() string {
	return "Cymru Client"
}

/*
Report returns a multi-line string showing stats suitable for printing to a log file. Zero counters
if resetCounters is true.

IP2ASN: req=10 ok=9 errs=1 skipped=0
        ^      ^    ^      ^
        |      |    |      +--Unparsable rows and AS number tokens
        |      |    +--Failed lookups
        |      +--Successful lookups
        +--Total IP2ASN lookups

Origin: req=10 ok=9 errs=1 (1/0/0/0)
AS:     req=12 ok=12 errs=0 (0/0/0/0)
        ^      ^     ^       ^ ^ ^ ^
        |      |     |       | | | +--Other
        |      |     |       | | +--Resolution (Rcode) error
        |      |     |       | +--I/O error
        |      |     |       +--No results
        |      |     +--Total failed queries
        |      +--Good queries
        +--Total queries
*/
func (t *Client) Report(resetCounters bool) string {
	if resetCounters {
		t.mu.Lock()
		defer t.mu.Unlock()
	} else {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}

	report := fmt.Sprintf("IP2ASN: req=%d ok=%d errs=%d skipped=%d\n",
		t.lookupSuccess+t.lookupFailure, t.lookupSuccess, t.lookupFailure, t.skipped)
	for qx, label := range []string{"Origin:", "AS:    "} {
		qs := t.queries[qx]
		errs := 0
		for _, v := range qs.failures {
			errs += v
		}
		report += fmt.Sprintf("%s req=%d ok=%d errs=%d (%s)\n",
			label, qs.success+errs, qs.success, errs, formatCounters("%d", "/", qs.failures[:]))
	}

	if resetCounters {
		t.resetCounters()
	}

	return report
}

// formatCounters returns a nice %d/%d/%d format from an array of ints.
func formatCounters(vfmt string, delim string, vals []int) string {
	res := ""
	for ix, v := range vals {
		if ix > 0 {
			res += delim
		}
		res += fmt.Sprintf(vfmt, v)
	}

	return res
}
