package cymru

import (
	"errors"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// AsNumber is an Autonomous System number. Currently they are 32 bit unsigned integers.
type AsNumber uint32

// String returns the conventional "AS" prefixed form, e.g. AS23028.
func (t AsNumber) String() string {
	return "AS" + strconv.FormatUint(uint64(t), 10)
}

// ParseAsNumber accepts either a bare decimal AS number or one prefixed with "AS" (case
// insensitive), as in "23028" or "AS23028".
func ParseAsNumber(s string) (AsNumber, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && strings.EqualFold(s[:2], "AS") {
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.New(me + ": Invalid AS number: " + s)
	}

	return AsNumber(n), nil
}

const dateLayout = "2006-01-02"

// OriginRecord is one origin AS candidate for a BGP prefix as parsed from an origin query
// response. Multi-origin prefixes produce multiple OriginRecords which differ only by ASNumber.
type OriginRecord struct {
	ASNumber    AsNumber
	BGPPrefix   string
	CountryCode string
	Registry    string
	Allocated   time.Time // Zero if absent or unparsable
	Expires     time.Time
}

// ASInfoRecord is the descriptive information about an AS as parsed from an AS query response.
type ASInfoRecord struct {
	ASNumber    AsNumber
	CountryCode string
	Registry    string
	Allocated   time.Time // Zero if absent or unparsable
	ASName      string
	Expires     time.Time
}

// Result is the union of an OriginRecord and the ASInfoRecord for the same AS number. Expires is
// the earlier of the two contributing expiry times.
type Result struct {
	IPAddr      netip.Addr
	BGPPrefix   string
	ASNumber    AsNumber
	ASName      string
	CountryCode string
	Registry    string
	Allocated   time.Time // From the OriginRecord. Zero if absent
	Expires     time.Time
}

func (t OriginRecord) HasAllocated() bool { return !t.Allocated.IsZero() }
func (t ASInfoRecord) HasAllocated() bool { return !t.Allocated.IsZero() }
func (t Result) HasAllocated() bool { return !t.Allocated.IsZero() }
func (t OriginRecord) AllocatedString() string { return formatDate(t.Allocated) }
func (t ASInfoRecord) AllocatedString() string { return formatDate(t.Allocated) }
func (t Result) AllocatedString() string { return formatDate(t.Allocated) }

// formatDate returns the YYYY-MM-DD form or the empty string for an absent date.
func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}

	return d.Format(dateLayout)
}
