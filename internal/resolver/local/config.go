package local

import "time"

// Config is passed to the New() constructor.
type Config struct {
	ResolvConfPath string        // Mandatory. Supplies options and default nameservers
	Servers        []string      // Replaces resolv.conf nameservers. host or host:port
	Timeout        time.Duration // Replaces the resolv.conf timeout if positive

	// Caller can create their own Exchangers on our behalf
	NewDNSClientExchangerFunc func(net string, timeout time.Duration) DNSClientExchanger
}
