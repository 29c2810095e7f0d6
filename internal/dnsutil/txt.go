package dnsutil

import (
	"strings"
	"unicode/utf8"

	"github.com/miekg/dns"
)

// TXTAnswers extracts one row of text from each TXT RR in the Answer section of msg. The
// character-strings of a single RR are concatenated as that is how long rows are split over the
// 255 octet character-string limit. CNAMEs and other RR types are ignored.
//
// miekg/dns presents non-printable octets in the \DDD escaped form, so rows are unescaped back to
// their original bytes. Rows which are not valid UTF-8 once unescaped are dropped and counted.
//
// minTTL is the smallest TTL of any TXT RR returned, or zero if there are none.
func TXTAnswers(msg *dns.Msg) (rows []string, minTTL uint32, dropped int) {
	first := true
	for _, rr := range msg.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		row := UnescapeTXT(strings.Join(txt.Txt, ""))
		if !utf8.ValidString(row) {
			dropped++
			continue
		}
		rows = append(rows, row)
		if first || txt.Hdr.Ttl < minTTL {
			minTTL = txt.Hdr.Ttl
			first = false
		}
	}

	return
}

// UnescapeTXT reverses the presentation escaping miekg/dns applies to TXT character-strings. That
// is \DDD is replaced by the octet with decimal value DDD and \X by X. A malformed \DDD sequence is
// left as-is.
func UnescapeTXT(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}

	b := make([]byte, 0, len(s))
	for ix := 0; ix < len(s); ix++ {
		c := s[ix]
		if c != '\\' || ix+1 >= len(s) {
			b = append(b, c)
			continue
		}
		if d, ok := decimalOctet(s[ix+1:]); ok {
			b = append(b, d)
			ix += 3
			continue
		}
		if isDigit(s[ix+1]) { // Malformed \DDD
			b = append(b, c)
			continue
		}
		ix++
		b = append(b, s[ix])
	}

	return string(b)
}

// decimalOctet converts a leading three digit decimal value in the range 0-255
func decimalOctet(s string) (byte, bool) {
	if len(s) < 3 || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[2]) {
		return 0, false
	}
	v := int(s[0]-'0')*100 + int(s[1]-'0')*10 + int(s[2]-'0')
	if v > 255 {
		return 0, false
	}

	return byte(v), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
