/*
Package txt adapts a dns.Msg resolver into a simple TXT lookup returning rows of text and a TTL. It
is the only DNS-aware dependency of the cymru package.

Errors are classified with errors.Is against ErrIO and ErrResolution. A name which does not exist
(NXDOMAIN) or has no TXT records (NODATA) is not an error; it simply returns zero rows.
*/
package txt

import (
	"errors"
	"fmt"
	"time"

	"github.com/markdingo/cymrudns/internal/dnsutil"
	"github.com/markdingo/cymrudns/internal/log"
	"github.com/markdingo/cymrudns/internal/resolver"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

const me = "txt"

var (
	// ErrIO means the query could not be exchanged with any server: timeouts, refused
	// connections, HTTP errors, unparsable responses.
	ErrIO = errors.New(me + ": I/O failure")

	// ErrResolution means a server responded with an Rcode indicating resolution failed.
	ErrResolution = errors.New(me + ": Resolution failure")
)

// Error carries the details of a failed lookup. Err wraps one of ErrIO or ErrResolution and
// possibly the underlying cause.
type Error struct {
	QName string
	Rcode int // Only meaningful for ErrResolution
	Err   error
}

func (t *Error) Error() string {
	return t.Err.Error() + ": " + t.QName
}

func (t *Error) Unwrap() error {
	return t.Err
}

// Resolver is the interface the cymru package uses to issue queries. It exists so callers can
// substitute their own transport or a mock. rows are in response order. ttl is the minimum TTL of
// the returned rows.
type Resolver interface {
	LookupTXT(qName string) (rows []string, ttl time.Duration, err error)
}

// dnsTXT implements Resolver over any resolver.Resolver
type dnsTXT struct {
	resolver resolver.Resolver
	logger   zerolog.Logger
}

// New returns a Resolver which issues TXT queries via res.
func New(res resolver.Resolver) *dnsTXT {
	return &dnsTXT{resolver: res, logger: log.WithComponent(me)}
}

// LookupTXT issues a recursive IN/TXT query for qName. qName should be fully qualified.
func (t *dnsTXT) LookupTXT(qName string) ([]string, time.Duration, error) {
	q := &dns.Msg{}
	q.SetQuestion(dns.Fqdn(qName), dns.TypeTXT)
	q.SetEdns0(dns.DefaultMsgSize, false) // Reduce the chance of a TCP fallback

	r, meta, err := t.resolver.Resolve(q, &resolver.QueryMetaData{})
	if err != nil {
		return nil, 0, &Error{QName: qName, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	if e := t.logger.Trace(); e.Enabled() {
		e.Str("server", meta.FinalServerUsed).Str("transport", string(meta.TransportType)).
			Str("reply", dnsutil.CompactMsgString(r)).Msg("reply")
	}

	switch r.Rcode {
	case dns.RcodeSuccess: // Includes NODATA
	case dns.RcodeNameError:
		return nil, 0, nil
	default:
		return nil, 0, &Error{QName: qName, Rcode: r.Rcode,
			Err: fmt.Errorf("%w: %s", ErrResolution, dns.RcodeToString[r.Rcode])}
	}

	rows, minTTL, dropped := dnsutil.TXTAnswers(r)
	if dropped > 0 {
		t.logger.Debug().Str("qName", qName).Int("dropped", dropped).Msg("invalid TXT rows")
	}

	return rows, time.Duration(minTTL) * time.Second, nil
}
