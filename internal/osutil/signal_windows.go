//go:build windows

package osutil

import (
	"os"
)

// ReportSignalNotify does nothing as Windows has no SIGUSR1
func ReportSignalNotify(c chan<- os.Signal) {
}

func IsReportSignal(s os.Signal) bool {
	return false
}
