package local

import (
	"strings"
	"testing"
	"time"
)

const (
	zero1 = `Totals: req=0 ok=0 errs=0 (0/0) fo=0
Server: req=0 ok=0 al=0.000 errs=0 (0/0/0/0/0/0) (ev 0/0) 127.0.0.127:53
Server: req=0 ok=0 al=0.000 errs=0 (0/0/0/0/0/0) (ev 0/0) [::127]:53`

	all1 = `Totals: req=5 ok=2 errs=3 (1/2) fo=2
Server: req=8 ok=2 al=1.500 errs=6 (1/1/1/1/1/1) (ev 2/2) 127.0.0.127:53
Server: req=1 ok=0 al=0.000 errs=1 (0/0/1/0/0/0) (ev 1/0) [::127]:53`
)

func TestReporter(t *testing.T) {
	res, _ := New(Config{ResolvConfPath: "testdata/two.resolv.conf"})
	nm := res.Name()
	if !strings.Contains(nm, "Resolver") {
		t.Error("Name() does not contain the word 'Resolver'", nm)
	}

	st := res.Report(false)
	if !strings.Contains(st, zero1) {
		t.Error("Report() not returning Zeroes. Want:\n", zero1, "\ngot\n", st)
	}

	res.addServerResult(0, true, false, time.Second, sfxNone) // Report successful server responses
	res.addGeneralSuccess()
	res.addServerResult(0, false, true, time.Second*2, sfxNone) // (1+2)/2 - 1.5s latency
	res.addGeneralSuccess()

	res.addServerResult(0, true, false, 0, sfxExchangeError) // Report all possible errors to force
	res.addServerResult(0, false, true, 0, sfxFormatError)   // every counter to tick over from zero
	res.addServerResult(0, false, false, 0, sfxServerFail)
	res.addServerResult(0, false, false, 0, sfxRefused)
	res.addServerResult(0, false, false, 0, sfxNotImplemented)
	res.addServerResult(0, false, false, 0, sfxOther)

	res.addServerResult(1, true, false, 0, sfxServerFail)

	res.addGeneralFailure(gfxTimeout) // Report all possible general failures
	res.addGeneralFailure(gfxMaxAttempts)
	res.addGeneralFailure(gfxMaxAttempts)
	res.addFailover()
	res.addFailover()
	st = res.Report(true)
	if !strings.Contains(st, all1) {
		t.Error("Report() not returning all counters. Want:\n", all1, "\ngot\n", st)
	}

	// Test that the reset flag works

	st = res.Report(false) // Previous Report() reset counters so now we should be back to the zero
	if !strings.Contains(st, zero1) {
		t.Error("reporter Report(true) did not appear to reset counters. Got:", st)
	}
}
