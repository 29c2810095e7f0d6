/*
Package doh is a resolver implementation which sends queries to DNS over HTTPS (RFC8484) servers.

Create the resolver once then use it to resolve dns.Msgs.

	res, err := doh.New(doh.Config{ServerURLs: []string{"https://dns.example.net/dns-query"}}, httpClient)
	reply, details, err := res.Resolve(msg, nil)

When multiple ServerURLs are supplied, the first one is used until it fails then the next one and so
on, wrapping around at the end of the list.
*/
package doh

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/markdingo/cymrudns/internal/bestserver"
	"github.com/markdingo/cymrudns/internal/constants"
	"github.com/markdingo/cymrudns/internal/dnsutil"
	"github.com/markdingo/cymrudns/internal/log"
	"github.com/markdingo/cymrudns/internal/resolver"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// HTTPClientDo is an interface which implements http.Client.Do() - the only http.Client method used
// by the DoH resolver. It mainly exists so we can supply a mock http.Client for testing.
type HTTPClientDo interface {
	Do(*http.Request) (*http.Response, error)
}

const me = "resolver/doh"

// dgx = Doh General error indeX into resolver errors array

type dgxInt int

const (
	dgxPackDNSQuery dgxInt = iota
	dgxArraySize
)

// dex = Doh server Error indeX into per-server errors array

type dexInt int

const (
	dexCreateHTTPRequest dexInt = iota
	dexDoRequest
	dexNonStatusOk
	dexResponseReadAll
	dexContentType
	dexUnpackDNSResponse
	dexArraySize
)

type bestServerStats struct {
	success  int
	latency  time.Duration
	ageAdj   int // Responses with TTLs reduced by an Age header
	failures [dexArraySize]int
}

type bestServer struct {
	name string
	bestServerStats
}

// Name meets the bestserver.Server interface
func (t *bestServer) Name() string {
	return t.name
}

func (t *bestServer) resetCounters() {
	t.bestServerStats = bestServerStats{}
}

type resolverStats struct {
	failures  [dgxArraySize]int
	failovers int
}

type remote struct {
	consts constants.Constants
	config Config
	logger zerolog.Logger

	httpClient HTTPClientDo
	httpMethod string // Normally POST
	userAgent  string

	bestServer bestserver.Manager

	mu sync.RWMutex // Protects everything below here

	bsList []*bestServer
	resolverStats
}

func (t *remote) resetCounters() {
	t.resolverStats = resolverStats{}
}

// New is the constructor for a DoH resolver. If httpClient is nil, http.DefaultClient is used.
func New(config Config, httpClient HTTPClientDo) (*remote, error) {
	t := &remote{config: config, httpClient: httpClient}
	if t.httpClient == nil {
		t.httpClient = http.DefaultClient
	}
	t.consts = constants.Get()
	t.logger = log.WithComponent(me)
	t.userAgent = t.consts.LookupProgramName + "/" + t.consts.Version + " (" + t.consts.PackageURL + ")"

	t.httpMethod = http.MethodPost
	if t.config.UseGetMethod {
		t.httpMethod = http.MethodGet
	}

	t.bsList = make([]*bestServer, 0, len(t.config.ServerURLs))
	ifList := make([]bestserver.Server, 0, len(t.config.ServerURLs)) // go doesn't coerce arrays
	for _, n := range t.config.ServerURLs {
		bs := &bestServer{name: n}
		t.bsList = append(t.bsList, bs)
		ifList = append(ifList, bs)
	}
	var err error
	t.bestServer, err = bestserver.NewTraditional(bestserver.TraditionalConfig{OnFailover: t.failover}, ifList)
	if err != nil {
		return nil, errors.New(me + ": Could not construct bestServer Manager: " + err.Error())
	}

	return t, nil
}

// Resolve sends the query to the current best server and returns the unpacked reply. Any HTTP
// level problem is an error and causes the next server to be preferred for subsequent queries.
//
// The query is modified in place: the ID is zeroed for GET requests as RFC8484 recommends for cache
// friendliness and padding may be added. The original ID is restored in the reply.
func (t *remote) Resolve(dnsQ *dns.Msg, dnsQMeta *resolver.QueryMetaData) (*dns.Msg, *resolver.ResponseMetaData, error) {
	startTime := time.Now()
	originalID := dnsQ.MsgHdr.Id
	msgIsMutable := dnsQ.IsTsig() == nil

	if t.httpMethod == http.MethodGet {
		dnsQ.MsgHdr.Id = 0
	}

	var binary []byte
	var err error
	if t.config.GeneratePadding && msgIsMutable {
		binary, err = dnsutil.PadAndPack(dnsQ, t.consts.Rfc8467ClientPadModulo)
	} else {
		binary, err = dnsQ.Pack()
	}
	if err != nil {
		t.addGeneralFailure(dgxPackDNSQuery)
		return nil, nil, errors.New(me + ": Msg Pack: " + err.Error())
	}

	bestURL, bsix := t.bestServer.Best()
	url := bestURL.Name()

	var rd io.Reader
	if t.httpMethod == http.MethodGet {
		url += "?" + t.consts.Rfc8484QueryParam + "=" + base64.RawURLEncoding.EncodeToString(binary)
	} else {
		rd = bytes.NewReader(binary)
	}

	req, err := http.NewRequest(t.httpMethod, url, rd)
	if err != nil {
		t.addServerFailure(bsix, dexCreateHTTPRequest)
		return nil, nil, err
	}
	req.Header.Set(t.consts.AcceptHeader, t.consts.Rfc8484AcceptValue) // RFC SHOULD
	if t.httpMethod == http.MethodPost {
		req.Header.Set(t.consts.ContentTypeHeader, t.consts.Rfc8484AcceptValue) // RFC MUST
	}
	req.Header.Set(t.consts.UserAgentHeader, t.userAgent)

	t.logger.Trace().Str("url", url).Str("method", t.httpMethod).Int("size", len(binary)).Msg("request")

	resp, err := t.httpClient.Do(req)
	endTime := time.Now()
	totalDuration := endTime.Sub(startTime)
	if err != nil {
		t.addServerFailure(bsix, dexDoRequest)
		t.bestServer.Result(bestURL, false, endTime, 0)
		return nil, nil, err
	}
	defer resp.Body.Close()

	httpR, dex, err := t.decodeResponse(resp, bestURL.Name(), dnsQ)
	if err != nil {
		t.addServerFailure(bsix, dex)
		t.bestServer.Result(bestURL, false, endTime, 0)
		return nil, nil, err
	}
	t.bestServer.Result(bestURL, true, endTime, totalDuration)

	// RFC8484 5.1 says to reduce TTLs by Age. It fails to say what to do if Age exceeds the TTL so
	// never reduce below 1s as a TTL of zero is not well defined.

	ageAdjusted := false
	if ageValue := resp.Header.Get(t.consts.AgeHeader); len(ageValue) > 0 && httpR.IsTsig() == nil {
		ttlAdjust, err := strconv.ParseUint(ageValue, 10, 32) // TTL is 32bit so...
		if err == nil && ttlAdjust > 0 {
			ageAdjusted = dnsutil.ReduceTTL(httpR, uint32(ttlAdjust), 1) > 0
		}
	}

	httpR.MsgHdr.Id = originalID
	if t.config.GeneratePadding && httpR.IsTsig() == nil {
		dnsutil.RemoveEDNS0FromOPT(httpR, dns.EDNS0PADDING)
	}

	t.addSuccessStats(bsix, totalDuration, ageAdjusted)
	if e := t.logger.Trace(); e.Enabled() {
		e.Str("url", bestURL.Name()).Dur("duration", totalDuration).
			Str("reply", dnsutil.CompactMsgString(httpR)).Msg("response")
	}

	respMeta := &resolver.ResponseMetaData{
		TransportType:      resolver.DNSTransportHTTP,
		TransportDuration:  totalDuration,
		ResolutionDuration: 1, // Unknown for a remote server so pretend it took a nanosecond
		PayloadSize:        httpR.Len(),
		QueryTries:         1,
		ServerTries:        1,
		FinalServerUsed:    bestURL.Name(),
	}
	if respMeta.TransportDuration <= 0 {
		respMeta.TransportDuration = 1 // Never let durations be LE 0
	}

	return httpR, respMeta, nil
}

// decodeResponse validates the HTTP response and unpacks the DNS reply. On error the returned dex
// identifies the failure for stats purposes.
func (t *remote) decodeResponse(resp *http.Response, url string, dnsQ *dns.Msg) (*dns.Msg, dexInt, error) {
	if resp.StatusCode != http.StatusOK { // Only accept a 200 ok status
		qName := "?"
		if len(dnsQ.Question) >= 1 {
			qName = dnsQ.Question[0].Name
		}
		return nil, dexNonStatusOk, fmt.Errorf(me+": Bad HTTP Status: %s with %s qName=%s",
			resp.Status, url, qName)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dexResponseReadAll, fmt.Errorf(me+": Body Read Error: %s", err.Error())
	}

	ct := resp.Header.Get(t.consts.ContentTypeHeader)
	if ct != t.consts.Rfc8484AcceptValue {
		return nil, dexContentType, fmt.Errorf(me+": Expected Content-Type of '%s' but got '%s'",
			t.consts.Rfc8484AcceptValue, ct)
	}

	if uint(len(body)) < t.consts.MinimumViableDNSMessage {
		return nil, dexContentType,
			fmt.Errorf(me+": Response message length of %d is less than minimum viable of %d",
				len(body), t.consts.MinimumViableDNSMessage)
	}

	httpR := &dns.Msg{}
	if err := httpR.Unpack(body); err != nil {
		return nil, dexUnpackDNSResponse, fmt.Errorf(me+": dns.Unpack of reply failed: %s", err.Error())
	}

	return httpR, 0, nil
}

// failover is called by the bestserver Manager when the current server fails
func (t *remote) failover(from, to bestserver.Server) {
	t.addFailover()
	t.logger.Info().Str("from", from.Name()).Str("to", to.Name()).Msg("failover")
}
