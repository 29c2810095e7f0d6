package cymru

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginQueryName(t *testing.T) {
	tt := []struct {
		addr   string
		domain string
		expect string
	}{
		{"216.90.108.31", "", "31.108.90.216.origin.asn.cymru.com."},
		{"0.0.0.0", "", "0.0.0.0.origin.asn.cymru.com."},
		{"255.255.255.255", "", "255.255.255.255.origin.asn.cymru.com."},
		{"::ffff:216.90.108.31", "", "31.108.90.216.origin.asn.cymru.com."},
		{"10.1.2.3", "example.net", "3.2.1.10.origin.example.net."},
		{"10.1.2.3", ".example.net.", "3.2.1.10.origin.example.net."},
		{"2001:db8:123:4567:89ab:cdef:123:4567", "",
			"7.6.5.4.3.2.1.0.f.e.d.c.b.a.9.8.7.6.5.4.3.2.1.0.8.b.d.0.1.0.0.2.origin6.asn.cymru.com."},
		{"::", "", strings.Repeat("0.", 32) + "origin6.asn.cymru.com."},
		{"fe80::1%eth0", "", "1." + strings.Repeat("0.", 27) + "0.8.e.f.origin6.asn.cymru.com."},
	}

	for _, tc := range tt {
		addr := netip.MustParseAddr(tc.addr)
		assert.Equal(t, tc.expect, OriginQueryName(addr, tc.domain), tc.addr)
	}

	assert.Empty(t, OriginQueryName(netip.Addr{}, ""), "Invalid address should return an empty name")
}

func TestOriginQueryNameIPv6Labels(t *testing.T) {
	name := OriginQueryName(netip.MustParseAddr("2001:db8::1"), "")
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	assert.Len(t, labels, 32+4) // 32 nibbles + origin6.asn.cymru.com
	for _, l := range labels[:32] {
		assert.Len(t, l, 1)
	}
}

func TestASQueryName(t *testing.T) {
	assert.Equal(t, "AS23028.asn.cymru.com.", ASQueryName(23028, ""))
	assert.Equal(t, "AS0.asn.cymru.com.", ASQueryName(0, ""))
	assert.Equal(t, "AS4294967295.asn.cymru.com.", ASQueryName(4294967295, ""))
	assert.Equal(t, "AS1.example.org.", ASQueryName(1, "example.org."))
}
