// Package local is a resolver implementation which sends queries directly to the nameservers listed
// in resolv.conf, or to an explicitly configured list of servers, over UDP with TCP fallback.
package local

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/markdingo/cymrudns/internal/bestserver"
	"github.com/markdingo/cymrudns/internal/constants"
	"github.com/markdingo/cymrudns/internal/log"
	"github.com/markdingo/cymrudns/internal/resolver"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

const me = "localresolver"

// gfx = General Failure Index into error array for non-server specific errors

type gfxInt int

const (
	gfxTimeout     gfxInt = iota
	gfxMaxAttempts        // Maximum number of attempts exceeded
	gfxArraySize
)

// sfx = Server Failure Index into per-best-server error array

type sfxInt int

const (
	sfxExchangeError sfxInt = iota
	sfxFormatError
	sfxServerFail
	sfxRefused
	sfxNotImplemented
	sfxOther
	sfxArraySize

	sfxNone sfxInt = -1 // Not a failure worth counting
)

// evx = EVent indeX into per-best-server event array
const (
	evxTCPFallback = iota
	evxTCPSuperior
	evxArraySize
)

// DNSClientExchanger is an interface which implements dns.Client.Exchange() - the only dns.Client
// method used by localresolver. It exists so we can supply a mock dns.Client for testing.
type DNSClientExchanger interface {
	Exchange(query *dns.Msg, server string) (reply *dns.Msg, rtt time.Duration, err error)
}

// defaultNewDNSClientExchangerFunc returns a miekg/dns.Client which meets the DNSClientExchanger
// interface. A zero timeout leaves the miekg/dns defaults in place.
func defaultNewDNSClientExchangerFunc(net string, timeout time.Duration) DNSClientExchanger {
	return &dns.Client{Net: net, Timeout: timeout}
}

// bestServerStats is kept as a separate struct from bestServer so that resetCounters() is a struct
// copy.
type bestServerStats struct {
	success int

	events   [evxArraySize]int
	failures [sfxArraySize]int

	latency time.Duration
}

// bestServer tracks statistics above and beyond what the bestserver package does.
type bestServer struct {
	name string
	bestServerStats
}

// Name meets the bestserver.Server interface
func (t *bestServer) Name() string {
	return t.name
}

// Caller has protected the structure from concurrent access.
func (t *bestServer) resetCounters() {
	t.bestServerStats = bestServerStats{}
}

type resolverStats struct {
	success      int
	failures     [gfxArraySize]int
	failovers    int
	totalLatency time.Duration
}

type local struct {
	config Config
	logger zerolog.Logger

	attempts int
	timeout  time.Duration // Overall time budget for one Resolve()

	bestServer bestserver.Manager // Rotates to the next server on failure

	mu sync.RWMutex // Protects everything below here

	bsList []*bestServer
	resolverStats
}

// Caller has protected data structures
func (t *local) resetCounters() {
	t.resolverStats = resolverStats{}
}

// New is the constructor for a local resolver. The resolv.conf file is always loaded as it supplies
// the attempts and timeout options; its nameservers are only used if Config.Servers is empty.
func New(config Config) (*local, error) {
	t := &local{config: config} // Take a copy of the supplied config
	if t.config.NewDNSClientExchangerFunc == nil {
		t.config.NewDNSClientExchangerFunc = defaultNewDNSClientExchangerFunc
	}
	t.logger = log.WithComponent(me)

	cc, err := loadResolvConf(t.config.ResolvConfPath)
	if err != nil {
		return nil, err
	}
	t.attempts = cc.Attempts
	t.timeout = time.Second * time.Duration(cc.Timeout)
	if t.config.Timeout > 0 {
		t.timeout = t.config.Timeout
	}

	var servers []string
	if len(t.config.Servers) > 0 {
		for _, s := range t.config.Servers {
			servers = append(servers, serverAddress(s, cc.Port))
		}
	} else {
		for _, s := range cc.Servers {
			servers = append(servers, serverAddress(s, cc.Port))
		}
	}

	// The "traditional" bestserver algorithm mimics res_send semantics.

	t.bsList = make([]*bestServer, 0, len(servers))
	ifList := make([]bestserver.Server, 0, len(servers)) // Need a separate list as go doesn't coerce arrays
	for _, n := range servers {
		bs := &bestServer{name: n}
		t.bsList = append(t.bsList, bs)
		ifList = append(ifList, bs)
	}
	t.bestServer, err = bestserver.NewTraditional(bestserver.TraditionalConfig{OnFailover: t.failover}, ifList)
	if err != nil {
		return nil, errors.New(me + ": Loading '" + t.config.ResolvConfPath + "' " + err.Error())
	}

	return t, nil
}

// loadResolvConf loads a resolv.conf file via miekg/dns. miekg/dns corrects bogus attempts and
// timeout values but we check anyway as any change in its behaviour could break us.
//
// Note that resolv.conf port syntax is not well defined across platforms so the port is always
// whatever miekg/dns says, normally 53. Use Config.Servers to reach a server on another port.
func loadResolvConf(resolvConfPath string) (*dns.ClientConfig, error) {
	if len(resolvConfPath) == 0 {
		return nil, errors.New(me + ": Empty resolv.conf path is invalid")
	}
	cc, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return nil, errors.New(me + ": " + err.Error())
	}
	if cc.Attempts <= 0 {
		cc.Attempts = 1
	}
	if cc.Timeout <= 0 {
		cc.Timeout = 1
	}
	if len(cc.Port) == 0 {
		cc.Port = constants.Get().DNSDefaultPort
	}

	return cc, nil
}

// serverAddress converts a "host" or "host:port" into a form suitable for the go Dial functions,
// adding the default port if one is missing. Bare ipv6 addresses are bracketed.
func serverAddress(s, defaultPort string) string {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}

	return net.JoinHostPort(strings.Trim(s, "[]"), defaultPort)
}

// Servers returns the normalized addresses of all servers in the order they are tried
func (t *local) Servers() []string {
	ret := make([]string, 0, len(t.bsList))
	for _, bs := range t.bsList {
		ret = append(ret, bs.name)
	}

	return ret
}

// classifyRcode determines three things about a response: 1) whether it was "successful" in the
// bestServer sense; 2) whether it is an error worth tracking in our stats and 3) whether the
// resolution loop should retry with the next server.
//
// Iteration stops if the problem can be attributed to the query and continues if it can be
// attributed to the server. Not Implemented is considered a per-server error as each server could
// be running a different implementation. NXDomain is a perfectly good answer.
func classifyRcode(rcode int) (bsSuccess bool, sfx sfxInt, iterate bool) {
	switch rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
		return true, sfxNone, false
	case dns.RcodeFormatError:
		return true, sfxFormatError, false
	case dns.RcodeServerFailure:
		return false, sfxServerFail, true
	case dns.RcodeRefused: // Assume a server access control issue
		return false, sfxRefused, true
	case dns.RcodeNotImplemented:
		return true, sfxNotImplemented, true
	}

	return true, sfxOther, false // All other Rcodes are returned to the caller
}

// Resolve more or less re-implements res_send(3). Iterate over the best servers until we get an
// acceptable response or run out of attempts or time. Running out returns the last reply received,
// if any.
//
// If the response indicates a TCP fallback (rcode=0, truncated=true) then re-exchange the same
// query with the same server using TCP. If the TCP query fails then the original UDP response is
// returned and the caller can deal with TC=1 as they see fit.
func (t *local) Resolve(q *dns.Msg, qMeta *resolver.QueryMetaData) (*dns.Msg, *resolver.ResponseMetaData, error) {
	var timeUsed time.Duration
	respMeta := &resolver.ResponseMetaData{}
	if qMeta != nil {
		respMeta.TransportType = qMeta.TransportType
	}

	exchanger := t.config.NewDNSClientExchangerFunc("", t.config.Timeout) // Start off with UDP

	// No transport for local resolver so pretend the API takes a nanosecond
	respMeta.TransportDuration = 1

	maxAttempts := t.attempts
	if maxAttempts > t.bestServer.Len() { // No point trying a server more than once
		maxAttempts = t.bestServer.Len()
	}

	var lastReply *dns.Msg // Most recent server reply, returned if every server wants a retry
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		respMeta.ServerTries++
		server, bsix := t.bestServer.Best()
		respMeta.FinalServerUsed = server.Name()          // Set response metadata in
		respMeta.TransportType = resolver.DNSTransportUDP // happy anticipation of success.
		respMeta.QueryTries++
		r, rtt, err := exchanger.Exchange(q, server.Name())
		tcpFallback := false
		tcpSuperior := false
		if err == nil && r.Rcode == dns.RcodeSuccess && r.Truncated {
			tcpFallback = true
			tcpExchanger := t.config.NewDNSClientExchangerFunc(constants.Get().DNSTCPTransport, t.config.Timeout)
			respMeta.QueryTries++
			tcpReply, tcpRtt, tcpErr := tcpExchanger.Exchange(q, server.Name())
			if tcpErr == nil && tcpReply.Rcode == dns.RcodeSuccess {
				tcpSuperior = true
				r = tcpReply
				respMeta.TransportType = resolver.DNSTransportTCP
			}
			rtt += tcpRtt // Treat as one big fat query for stats purposes
		}

		bsSuccess, sfx, iterate := false, sfxExchangeError, true // Assume a network or server issue
		if err == nil {
			bsSuccess, sfx, iterate = classifyRcode(r.Rcode)
		}

		t.logger.Trace().Str("server", server.Name()).Err(err).Dur("rtt", rtt).
			Bool("tcp", tcpSuperior).Bool("iterate", iterate).Msg("exchange")

		timeUsed += rtt
		t.bestServer.Result(server, bsSuccess, time.Now(), rtt)
		t.addServerResult(bsix, tcpFallback, tcpSuperior, rtt, sfx)
		if err == nil {
			lastReply = r
		}
		if !iterate {
			t.addGeneralSuccess()
			respMeta.ResolutionDuration = timeUsed
			respMeta.PayloadSize = r.Len()
			return r, respMeta, nil
		}

		if timeUsed > t.timeout { // Run out of time to iterate?
			t.addGeneralFailure(gfxTimeout)
			if lastReply != nil {
				return giveUp(lastReply, respMeta, timeUsed)
			}
			return nil, nil, fmt.Errorf(me+": Query timeout: %s", t.timeout)
		}
	}

	t.addGeneralFailure(gfxMaxAttempts)
	if lastReply != nil {
		return giveUp(lastReply, respMeta, timeUsed)
	}
	return nil, nil, fmt.Errorf(me+": Query attempts exceeded: %d", maxAttempts)
}

// giveUp returns the last reply received when iteration stops without an acceptable reply. As with
// res_send(3), a SERVFAIL or REFUSED from the final server is still an answer and the caller gets
// to see the Rcode. Only when no server replied at all is an error returned.
func giveUp(r *dns.Msg, respMeta *resolver.ResponseMetaData, timeUsed time.Duration) (*dns.Msg, *resolver.ResponseMetaData, error) {
	respMeta.ResolutionDuration = timeUsed
	respMeta.PayloadSize = r.Len()

	return r, respMeta, nil
}

// failover is called by the bestserver Manager when the current server fails
func (t *local) failover(from, to bestserver.Server) {
	t.addFailover()
	t.logger.Info().Str("from", from.Name()).Str("to", to.Name()).Msg("failover")
}
