package dnsutil

import (
	"fmt"

	"github.com/miekg/dns"
)

// PadAndPack packs a query into wire format padded with an EDNS0_PADDING sub-option so that the
// packed length is a multiple of moduloSize. RFC8467 recommends queries be padded to the closest
// multiple of 128 octets so an on-path observer of a DoH stream cannot trivially tell which IP
// address or AS number is being looked up from the message size alone.
//
// Any padding already present is replaced and an OPT RR is added if the query lacks one. A padding
// option is always added, even a zero length one, as its presence asks the server to pad the
// response.
//
// msg.Len() and msg.Pack() take different code paths so the packed length is checked against the
// modulo before returning.
func PadAndPack(msg *dns.Msg, moduloSize uint) ([]byte, error) {
	if moduloSize < 1 || moduloSize > consts.MaximumViableDNSMessage {
		return nil, fmt.Errorf("PadAndPack: Modulo size %d is not in range 1-%d",
			moduloSize, consts.MaximumViableDNSMessage)
	}

	RemoveEDNS0FromOPT(msg, dns.EDNS0PADDING)
	optRR := FindOPT(msg)
	if optRR == nil {
		optRR = NewOPT()
		msg.Extra = append(msg.Extra, optRR)
	}

	// Measure with an empty padding option in place so its own overhead is included.
	padding := &dns.EDNS0_PADDING{Padding: []byte{}}
	optRR.Option = append(optRR.Option, padding)
	if rem := uint(msg.Len()) % moduloSize; rem > 0 {
		padding.Padding = make([]byte, moduloSize-rem)
	}

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("PadAndPack dns.Pack() failed: %w", err)
	}
	if uint(len(packed))%moduloSize != 0 {
		return nil, fmt.Errorf("PadAndPack dns.Pack() created unexpected length of %d with mod %d",
			len(packed), moduloSize)
	}

	return packed, nil
}
