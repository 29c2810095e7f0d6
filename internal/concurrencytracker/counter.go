/*
Package concurrencytracker keeps track of how many lookups are in flight so that peak parallelism
can be reported. Typical usage:

	var cct concurrencytracker.Counter

	go func() {
		cct.Add()
		defer cct.Done()
		... do a lookup
	}()

and when reporting:

	fmt.Println(cct.Report(true))
*/
package concurrencytracker

import (
	"fmt"
	"sync"
)

type Counter struct {
	sync.Mutex
	current int // Count of pending Done() calls
	peak    int // Max 'current' has ever reached
	total   int // Add() calls since last reset
}

// Add increments 'current' and if a new peak has been reached, the peak value is updated. Return
// true if the peak has increased as a result of this call.
func (t *Counter) Add() (increased bool) {
	t.Lock()
	defer t.Unlock()
	t.current++
	t.total++
	if t.current > t.peak {
		t.peak = t.current
		increased = true
	}

	return
}

// Done decrements 'current'. Done() must only be called after an Add() call, otherwise a panic
// ensues.
func (t *Counter) Done() {
	t.Lock()
	defer t.Unlock()
	if t.current == 0 {
		panic("concurrencytracker.Done() lacks matching .Add()")
	}
	t.current--
}

// Peak returns the peak concurrency count and optionally resets the peak value to the current
// concurrency value. The current counter is never reset. The reset occurs *after* the return value
// is set so it is not visible until a subsequent call.
func (t *Counter) Peak(resetCounters bool) (peak int) {
	t.Lock()
	defer t.Unlock()
	peak = t.peak
	if resetCounters {
		t.peak = t.current
		t.total = 0
	}

	return
}

func (t *Counter) Name() string {
	return "Concurrency"
}

// Report satisfies reporter.Reporter
//
//	lookups=20 peak=4 active=0
func (t *Counter) Report(resetCounters bool) string {
	t.Lock()
	s := fmt.Sprintf("lookups=%d peak=%d active=%d", t.total, t.peak, t.current)
	t.Unlock()
	if resetCounters {
		t.Peak(true)
	}

	return s
}
