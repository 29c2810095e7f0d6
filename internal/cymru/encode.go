package cymru

import (
	"net/netip"
	"strconv"
	"strings"
)

// DefaultDomain is the Team Cymru IP-to-ASN service domain. Origin queries live under
// origin.<domain> and origin6.<domain>, AS queries directly under <domain>.
const DefaultDomain = "asn.cymru.com"

const hexDigits = "0123456789abcdef"

// normalizeDomain strips leading and trailing dots so the query templates can add their own. An
// empty domain means DefaultDomain.
func normalizeDomain(domain string) string {
	domain = strings.Trim(domain, ".")
	if len(domain) == 0 {
		return DefaultDomain
	}

	return domain
}

// OriginQueryName returns the FQDN used to ask which AS originates the prefix containing addr. An
// IPv4 address a.b.c.d becomes "d.c.b.a.origin.<domain>." and an IPv6 address becomes its 32
// nibbles in reverse order, as with ip6.arpa, under "origin6.<domain>.". IPv4-mapped IPv6
// addresses are treated as IPv4 and any zone is ignored.
//
// An invalid (zero) netip.Addr returns the empty string.
func OriginQueryName(addr netip.Addr, domain string) string {
	if !addr.IsValid() {
		return ""
	}
	domain = normalizeDomain(domain)
	addr = addr.Unmap()

	if addr.Is4() {
		o := addr.As4()
		var b strings.Builder
		for ix := len(o) - 1; ix >= 0; ix-- {
			b.WriteString(strconv.Itoa(int(o[ix])))
			b.WriteByte('.')
		}
		b.WriteString("origin.")
		b.WriteString(domain)
		b.WriteByte('.')

		return b.String()
	}

	return ipv6Nibbles(addr.As16()) + ".origin6." + domain + "."
}

// ASQueryName returns the FQDN used to ask for information about an AS number.
func ASQueryName(asn AsNumber, domain string) string {
	return asn.String() + "." + normalizeDomain(domain) + "."
}

// ipv6Nibbles returns all 32 nibbles of the address separated by dots, least-significant nibble
// of the last octet first.
func ipv6Nibbles(a [16]byte) string {
	b := make([]byte, 0, 63)
	for ix := len(a) - 1; ix >= 0; ix-- {
		if len(b) > 0 {
			b = append(b, '.')
		}
		b = append(b, hexDigits[a[ix]&0x0F], '.', hexDigits[a[ix]>>4])
	}

	return string(b)
}
