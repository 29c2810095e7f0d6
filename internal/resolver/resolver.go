// Package resolver defines the interface for resolving a dns.Msg. The local and doh sub-packages
// provide the two implementations: classic UDP/TCP via resolv.conf and DNS over HTTPS.
package resolver

import (
	"time"

	"github.com/miekg/dns"
)

type DNSTransportType string

const (
	DNSTransportUndefined DNSTransportType = ""
	DNSTransportHTTP      DNSTransportType = "http"
	DNSTransportUDP       DNSTransportType = "udp"
	DNSTransportTCP       DNSTransportType = "tcp"
)

// QueryMetaData contains metadata about the query passed to Resolve(). DNS messages have almost no
// ability to carry meta data so it travels alongside.
type QueryMetaData struct {
	TransportType DNSTransportType // Preferred transport, if any
}

// ResponseMetaData returns metadata about the query made by Resolve(). It mostly contains
// statistical and trace meta-information.
type ResponseMetaData struct {
	TransportType DNSTransportType // Final transport used with the resultant query

	TransportDuration  time.Duration // Does not include ResolutionDuration
	ResolutionDuration time.Duration // Time taken by the remote resolver, if known
	// Total Resolution Duration = TransportDuration+ResolutionDuration

	PayloadSize     int
	QueryTries      int    // Number of resolution attempts were made
	ServerTries     int    // Number of different servers were tried
	FinalServerUsed string // Name of the last server attempted
}

type Resolver interface {
	// Resolve resolves the dns.Msg query. Returns resp+respMeta or error. A response with a
	// non-zero Rcode is not an error at this level. queryMeta can be nil.
	Resolve(query *dns.Msg, queryMeta *QueryMetaData) (resp *dns.Msg, respMeta *ResponseMetaData, err error)
}
