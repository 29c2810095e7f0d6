/*
Package cymru queries Team Cymru's IP-to-ASN mapping service via DNS. See
https://www.team-cymru.com/ip-asn-mapping before using it, and note Team Cymru's warning that the
mapping is not a Geo-IP service.

An IP lookup is an origin query for the address followed by one AS query for each distinct origin
AS number. The two are merged into one Result per AS number. A bare AS lookup is a single AS query.

	c, err := cymru.New(cymru.Config{Resolver: txt.New(localResolver)})
	results, err := c.IP2ASN(netip.MustParseAddr("216.90.108.31"))
	infos, err := c.ASInfo(23028)

All queries are issued sequentially by the calling goroutine and nothing is cached. Each record
carries an Expires time derived from the DNS TTL which callers may use to cache results
themselves.

Errors are classified with errors.Is against ErrNoResults, ErrIO and ErrResolution.
*/
package cymru

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/markdingo/cymrudns/internal/log"
	"github.com/markdingo/cymrudns/internal/txt"

	"github.com/rs/zerolog"
)

const me = "cymru"

var (
	// ErrNoResults is returned when a query produces zero usable records
	ErrNoResults = errors.New(me + ": Query found no results")

	// ErrIO and ErrResolution are the TXT transport error kinds. Re-exported here so callers
	// only need to import this package to classify errors.
	ErrIO         = txt.ErrIO
	ErrResolution = txt.ErrResolution
)

// Config is passed to the New() constructor.
type Config struct {
	Resolver txt.Resolver     // Mandatory
	Domain   string           // Service domain. Default is DefaultDomain
	Now      func() time.Time // Clock used to calculate Expires. Default is time.Now
}

// Client issues cymru queries. It is safe for concurrent use though each individual lookup is
// strictly sequential.
type Client struct {
	config Config
	domain string
	logger zerolog.Logger

	mu sync.RWMutex // Protects everything below here
	clientStats
}

// New is the constructor for a cymru Client
func New(config Config) (*Client, error) {
	if config.Resolver == nil {
		return nil, errors.New(me + ": Config.Resolver cannot be nil")
	}
	t := &Client{config: config, domain: normalizeDomain(config.Domain)}
	if t.config.Now == nil {
		t.config.Now = time.Now
	}
	t.logger = log.WithComponent(me)

	return t, nil
}

// Domain returns the normalized service domain used in all queries
func (t *Client) Domain() string {
	return t.domain
}

// noResults wraps ErrNoResults with the offending query name
func noResults(qName string) error {
	return fmt.Errorf("%w: %s", ErrNoResults, qName)
}

// lookup resolves the TXT rows for qName and converts the TTL into an absolute expiry time.
// Transport errors are returned unchanged.
func (t *Client) lookup(qx qxInt, qName string) ([]string, time.Time, error) {
	t.logger.Debug().Str("qName", qName).Msg("query")
	rows, ttl, err := t.config.Resolver.LookupTXT(qName)
	if err != nil {
		t.addQueryFailure(qx, classify(err))
		t.logger.Warn().Err(err).Str("qName", qName).Msg("query failed")
		return nil, time.Time{}, err
	}
	expires := t.config.Now().Add(ttl)
	t.logger.Debug().Str("qName", qName).Int("rows", len(rows)).Dur("ttl", ttl).Msg("answer")

	return rows, expires, nil
}

// ASInfo returns what the service knows about an AS number. Normally exactly one record is
// returned.
func (t *Client) ASInfo(asn AsNumber) ([]ASInfoRecord, error) {
	qName := ASQueryName(asn, t.domain)
	rows, expires, err := t.lookup(qxASInfo, qName)
	if err != nil {
		return nil, err
	}

	records := make([]ASInfoRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if rec, ok := ParseASInfo(row, expires); ok {
			records = append(records, rec)
		} else {
			skipped++
			t.logger.Debug().Str("qName", qName).Str("row", row).Msg("skipped AS row")
		}
	}

	return finish(t, qxASInfo, qName, records, skipped)
}

// Origin returns every origin AS candidate for the prefix containing addr.
func (t *Client) Origin(addr netip.Addr) ([]OriginRecord, error) {
	if !addr.IsValid() {
		return nil, errors.New(me + ": Invalid IP address")
	}
	qName := OriginQueryName(addr, t.domain)
	rows, expires, err := t.lookup(qxOrigin, qName)
	if err != nil {
		return nil, err
	}

	records := make([]OriginRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		recs, sk := ParseOrigin(row, expires)
		records = append(records, recs...)
		if sk > 0 {
			skipped += sk
			t.logger.Debug().Str("qName", qName).Str("row", row).Int("skipped", sk).Msg("skipped origin tokens")
		}
	}

	return finish(t, qxOrigin, qName, records, skipped)
}

// finish does the common accounting for a parsed query and converts an empty result set into
// ErrNoResults.
func finish[R any](t *Client, qx qxInt, qName string, records []R, skipped int) ([]R, error) {
	t.addSkipped(skipped)
	if len(records) == 0 {
		t.addQueryFailure(qx, fxNoResults)
		return nil, noResults(qName)
	}
	t.addQuerySuccess(qx)

	return records, nil
}

// IP2ASN returns one merged Result for each distinct origin AS of addr, in order of first
// appearance in the origin response. Any failed AS query fails the whole lookup; partial results
// are never returned.
func (t *Client) IP2ASN(addr netip.Addr) ([]Result, error) {
	origins, err := t.Origin(addr)
	if err != nil {
		t.addLookup(false)
		return nil, err
	}

	results := make([]Result, 0, len(origins))
	seen := make(map[AsNumber]struct{}, len(origins))
	for _, origin := range origins {
		if _, ok := seen[origin.ASNumber]; ok {
			continue
		}
		seen[origin.ASNumber] = struct{}{}

		infos, err := t.ASInfo(origin.ASNumber)
		if err != nil {
			t.addLookup(false)
			return nil, err
		}
		results = append(results, merge(addr, origin, pickASInfo(origin.ASNumber, infos)))
	}

	if len(results) == 0 {
		t.addLookup(false)
		return nil, noResults(OriginQueryName(addr, t.domain))
	}
	t.addLookup(true)

	return results, nil
}

// pickASInfo prefers the record describing asn, falling back to the first. infos is never empty.
func pickASInfo(asn AsNumber, infos []ASInfoRecord) ASInfoRecord {
	for _, info := range infos {
		if info.ASNumber == asn {
			return info
		}
	}

	return infos[0]
}

// merge combines an origin and AS record into a Result. Expires is the earlier of the two as
// either source could go stale first.
func merge(addr netip.Addr, origin OriginRecord, info ASInfoRecord) Result {
	expires := origin.Expires
	if info.Expires.Before(expires) {
		expires = info.Expires
	}

	return Result{
		IPAddr:      addr,
		BGPPrefix:   origin.BGPPrefix,
		ASNumber:    origin.ASNumber,
		ASName:      info.ASName,
		CountryCode: origin.CountryCode,
		Registry:    origin.Registry,
		Allocated:   origin.Allocated,
		Expires:     expires,
	}
}
