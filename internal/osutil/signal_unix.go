//go:build !windows

// Package osutil hides platform differences in signal handling.
package osutil

import (
	"os"
	"os/signal"
	"syscall"
)

// ReportSignalNotify relays SIGUSR1, a request for an interim statistics report, to c.
func ReportSignalNotify(c chan<- os.Signal) {
	signal.Notify(c, syscall.SIGUSR1)
}

func IsReportSignal(s os.Signal) bool {
	return s == syscall.SIGUSR1
}
