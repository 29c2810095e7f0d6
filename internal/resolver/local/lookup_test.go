package local

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/markdingo/cymrudns/internal/cymru"
	"github.com/markdingo/cymrudns/internal/txt"

	"github.com/miekg/dns"
)

// A lookup where every server answers SERVFAIL or REFUSED is a resolution failure, not an I/O
// failure. Only a lookup where no server answers at all is an I/O failure.
func TestLookupErrorKinds(t *testing.T) {
	type testCase struct {
		rcode       int
		exchangeErr error
		resolution  bool
	}
	for ix, tc := range []testCase{
		{rcode: dns.RcodeServerFailure, resolution: true},
		{rcode: dns.RcodeRefused, resolution: true},
		{exchangeErr: errors.New("i/o timeout")},
	} {
		res, err := New(Config{ResolvConfPath: "testdata/resolv.conf",
			NewDNSClientExchangerFunc: func(string, time.Duration) DNSClientExchanger {
				if tc.exchangeErr != nil {
					me := newMockOne(nil, time.Millisecond, tc.exchangeErr)
					me.append(nil, time.Millisecond, tc.exchangeErr)
					return me
				}
				return newMockRcodes(tc.rcode, 2)
			}})
		if err != nil {
			t.Fatal(ix, "New failed with mock Exchanger", err)
		}
		client, err := cymru.New(cymru.Config{Resolver: txt.New(res)})
		if err != nil {
			t.Fatal(ix, "cymru.New failed", err)
		}

		_, err = client.IP2ASN(netip.MustParseAddr("216.90.108.31"))
		if err == nil {
			t.Error(ix, "Expected IP2ASN to fail")
			continue
		}
		if errors.Is(err, cymru.ErrResolution) != tc.resolution {
			t.Error(ix, "ErrResolution classification wrong", err)
		}
		if errors.Is(err, cymru.ErrIO) == tc.resolution {
			t.Error(ix, "ErrIO classification wrong", err)
		}
		if !tc.resolution {
			continue
		}
		var txtErr *txt.Error
		if !errors.As(err, &txtErr) {
			t.Fatal(ix, "Expected a *txt.Error, not", err)
		}
		if txtErr.Rcode != tc.rcode {
			t.Error(ix, "Expected Rcode", dns.RcodeToString[tc.rcode], "not", dns.RcodeToString[txtErr.Rcode])
		}
	}
}
