package doh

import (
	"fmt"
	"time"
)

func (t *remote) addSuccessStats(bsIX int, latency time.Duration, ageAdjusted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bs := t.bsList[bsIX]
	bs.success++
	bs.latency += latency
	if ageAdjusted {
		bs.ageAdj++
	}
}

func (t *remote) addGeneralFailure(dgx dgxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[dgx]++
}

func (t *remote) addFailover() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failovers++
}

func (t *remote) addServerFailure(bsIX int, dex dexInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bsList[bsIX].failures[dex]++
}

func (t *remote) Name() string {
	return "DoH Resolver"
}

/*
Report returns a multi-line string showing stats suitable for printing to a log file. Reset counters
if resetCounters is true.

Output:

Totals: req=305 ok=301 errs=4 (0) fo=1
        ^       ^      ^       ^   ^
        |       |      |       |   +--Server failovers
        |       |      |       +--DNSPackError
        |       |      +--Total Error Requests
        |       +--Total Good requests
        +---Total Requests

Server: ok=301 al=0.254 age=3 errs=4 (0/0/4/0/0/0) https://dns.example.net/dns-query
        ^      ^        ^     ^       ^ ^ ^ ^ ^ ^  ^
        |      |        |     |       | | | | | |  +-- Server URL
        |      |        |     |       | | | | | +--UnpackDNSResponse
        |      |        |     |       | | | | +--ContentType
        |      |        |     |       | | | +--ResponseReadAll
        |      |        |     |       | | +--NonStatusOk
        |      |        |     |       | +--DoRequest
        |      |        |     |       +--CreateHTTPRequest
        |      |        |     +--Per-Server Errors
        |      |        +--Responses with TTLs reduced by Age
        |      +--Average latency
        +--Good Requests
*/
func (t *remote) Report(resetCounters bool) string {
	if resetCounters {
		t.mu.Lock()
		defer t.mu.Unlock()
	} else {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}

	// Per-server reports come first so the totals can be accumulated on the way thru.

	serverReport := ""
	ok := 0
	errs := 0
	for _, bs := range t.bsList {
		bsErrs := 0
		for _, v := range bs.failures {
			bsErrs += v
		}
		ok += bs.success
		errs += bsErrs
		var al float64
		if bs.success > 0 {
			al = bs.latency.Seconds() / float64(bs.success)
		}
		serverReport += fmt.Sprintf("Server: ok=%d al=%0.3f age=%d errs=%d (%s) %s\n",
			bs.success, al, bs.ageAdj, bsErrs, formatCounters("%d", "/", bs.failures[:]), bs.name)
		if resetCounters {
			bs.resetCounters()
		}
	}
	for _, v := range t.failures {
		errs += v
	}
	mainReport := fmt.Sprintf("Totals: req=%d ok=%d errs=%d (%s) fo=%d\n",
		ok+errs, ok, errs, formatCounters("%d", "/", t.failures[:]), t.failovers)

	if resetCounters {
		t.resetCounters()
	}

	return mainReport + serverReport
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
