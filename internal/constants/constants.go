/*
Package constants provides common values used across all cymrudns packages. Usage is to call the
global Get() function which returns the Constants by value ensuring that any modifications made
(accidental or otherwise) will not affect other modules when they call Get().

Typically usage:

	consts := constants.Get()
	fmt.Println("I am", consts.LookupProgramName, "querying", consts.CymruDomain)

The struct form rather than a const () block is so that it can be fed directly into templating
packages for printing usage messages.
*/
package constants

import "time"

// Constants contains the system-wide constants
type Constants struct {
	LookupProgramName string // Package related constants
	Version           string
	PackageName       string
	PackageURL        string
	ServiceURL        string
	RFC               string

	CymruDomain       string // Team Cymru IP-to-ASN service
	CymruOriginLabel  string
	CymruOrigin6Label string

	HTTPSDefaultPort string // HTTP related constants
	AgeHeader        string

	AcceptHeader      string // Place in every request
	ContentTypeHeader string
	UserAgentHeader   string

	Rfc8484AcceptValue string
	Rfc8484Path        string
	Rfc8484QueryParam  string

	DNSDefaultPort          string // DNS Related constants
	MinimumViableDNSMessage uint   // MsgHdr + one Question with zero length name
	MaximumViableDNSMessage uint   // RFC8484 defines an upper limit
	Rfc8467ClientPadModulo  uint

	DNSUDPTransport string // Suitable for the "net" package, but just to make sure we're
	DNSTCPTransport string // consistent across the whole package.

	DefaultResolvConf  string // CLI defaults
	DefaultTimeout     time.Duration
	DefaultParallelism int
}

var readOnlyConstants *Constants

// createReadOnlyConstants creates a read-only copy of the Constants which is copied whenever a
// caller asks for the constants set.
func createReadOnlyConstants() {
	readOnlyConstants = &Constants{
		LookupProgramName: "cymru-lookup",
		Version:           "v0.1.0",
		PackageName:       "Cymru IP-to-ASN DNS Client",
		PackageURL:        "https://github.com/markdingo/cymrudns",
		ServiceURL:        "https://www.team-cymru.com/ip-asn-mapping",
		RFC:               "RFC8484",

		CymruDomain:       "asn.cymru.com",
		CymruOriginLabel:  "origin",
		CymruOrigin6Label: "origin6",

		HTTPSDefaultPort: "443",

		AgeHeader: "Age",

		AcceptHeader:      "Accept",
		ContentTypeHeader: "Content-Type",
		UserAgentHeader:   "User-Agent",

		Rfc8484AcceptValue: "application/dns-message",
		Rfc8484Path:        "/dns-query",
		Rfc8484QueryParam:  "dns",

		DNSDefaultPort:          "53",
		MinimumViableDNSMessage: 16, // A legit binary DNS Message *cannot* be shorter than this
		MaximumViableDNSMessage: 65535,
		Rfc8467ClientPadModulo:  128,

		DNSUDPTransport: "udp",
		DNSTCPTransport: "tcp",

		DefaultResolvConf:  "/etc/resolv.conf",
		DefaultTimeout:     15 * time.Second,
		DefaultParallelism: 1,
	}
}

func init() {
	createReadOnlyConstants()
}

// Get returns a copy of the Constant struct. Return by value so internal values cannot be
// inadvertently changed by callers.
func Get() Constants {
	return *readOnlyConstants
}
