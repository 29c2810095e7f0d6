package local

import (
	"fmt"
	"time"
)

// addGeneralSuccess tracks Resolve() calls which returned a response. There is a maximum of one of
// these calls per Resolve() call.
func (t *local) addGeneralSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.success++
}

// addGeneralFailure tracks Resolve() calls which gave up. There is a maximum of one of these calls
// per Resolve() call.
func (t *local) addGeneralFailure(gfx gfxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[gfx]++
}

// addFailover tracks each time the bestserver Manager moves on to the next server
func (t *local) addFailover() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failovers++
}

// addServerResult tracks the outcome of each exchange with a server. There can be multiple of these
// calls per Resolve() call as it iterates over servers. sfxNone means the server responded with an
// acceptable answer, which says nothing about whether the query itself found anything.
func (t *local) addServerResult(bsix int, tcpFallback, tcpSuperior bool, latency time.Duration, sfx sfxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bs := t.bsList[bsix]
	if tcpFallback {
		bs.events[evxTCPFallback]++
	}
	if tcpSuperior {
		bs.events[evxTCPSuperior]++
	}
	if sfx != sfxNone {
		bs.failures[sfx]++
		return
	}

	t.totalLatency += latency
	bs.success++
	bs.latency += latency
}

func (t *local) Name() string {
	return "Local Resolver"
}

/*
Report returns a multi-line string showing stats suitable for printing to a log file. Zero counters
if resetCounters is true.

Totals: req=12 ok=12 errs=0 (0/0) fo=0
        ^      ^     ^       ^ ^     ^
        |      |     |       | |     +--Server failovers
        |      |     |       | +--Retry count exceeded
        |      |     |       +--Timeout limit exceeded
        |      |     +--Total bad requests
        |      +--Total good requests
        +--Total requests

Server: req=12 ok=12 al=0.031 errs=0 (0/0/0/0/0/0) (ev 0/0) 10.0.0.1:53
        ^      ^     ^        ^       ^ ^ ^ ^ ^ ^   ^  ^ ^  ^
        |      |     |        |       | | | | | |   |  | |  +--Server
        |      |     |        |       | | | | | |   |  | +--TCP response used
        |      |     |        |       | | | | | |   |  +--TCP fallback
        |      |     |        |       | | | | | +--Other rcodes
        |      |     |        |       | | | | +--Not implemented (Rcode)
        |      |     |        |       | | | +--Refused (Rcode)
        |      |     |        |       | | +--Server fail (Rcode)
        |      |     |        |       | +--Format error (Rcode)
        |      |     |        |       +--Exchange error
        |      |     |        +--Total bad exchanges
        |      |     +--Average latency
        |      +--Good exchanges
        +---Total exchanges
*/
func (t *local) Report(resetCounters bool) string {
	if resetCounters {
		t.mu.Lock()
		defer t.mu.Unlock()
	} else {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}

	errs := sum(t.failures[:])
	report := fmt.Sprintf("Totals: req=%d ok=%d errs=%d (%s) fo=%d\n",
		t.success+errs, t.success, errs, formatCounters("%d", "/", t.failures[:]), t.failovers)

	for _, bs := range t.bsList {
		bsErrs := sum(bs.failures[:])
		var al float64
		if bs.success > 0 {
			al = bs.latency.Seconds() / float64(bs.success)
		}
		report += fmt.Sprintf("Server: req=%d ok=%d al=%0.3f errs=%d (%s) (ev %s) %s\n",
			bs.success+bsErrs, bs.success, al, bsErrs, formatCounters("%d", "/", bs.failures[:]),
			formatCounters("%d", "/", bs.events[:]), bs.name)
		if resetCounters {
			bs.resetCounters()
		}
	}

	if resetCounters {
		t.resetCounters()
	}

	return report
}

func sum(vals []int) (total int) {
	for _, v := range vals {
		total += v
	}

	return
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
