package reporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReporter struct {
	report string
	resets int
}

func (t *fakeReporter) Name() string {
	return "fake"
}

func (t *fakeReporter) Report(resetCounters bool) string {
	if resetCounters {
		t.resets++
	}
	return t.report
}

func TestLines(t *testing.T) {
	r := &fakeReporter{report: "one\n\ntwo  \nthree\n"}
	assert.Equal(t, []string{"one", "two", "three"}, Lines(r, true))
	assert.Equal(t, 1, r.resets)

	r.report = ""
	assert.Empty(t, Lines(r, false))
	assert.Equal(t, 1, r.resets)
}
