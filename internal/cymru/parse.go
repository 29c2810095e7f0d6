package cymru

import (
	"strconv"
	"strings"
	"time"
)

// Sample origin row, from https://www.team-cymru.com/ip-asn-mapping:
//
//	"23028 | 216.90.108.0/24 | US | arin | 1998-09-25"
//
// Multi-origin prefixes have space separated AS numbers in the first field:
//
//	"1 23 456 7890 | 203.0.113.0/24 | GB | ripencc | 2006-02-17"
//
// Sample AS row:
//
//	"23028 | US | arin | 2002-01-04 | TEAM-CYMRU - Team Cymru Inc., US"

const (
	originFieldCount = 5
	asInfoFieldCount = 5
)

// splitRow splits a response row on "|" and trims the surrounding whitespace of every field. A
// limit of zero means no limit.
func splitRow(row string, limit int) []string {
	var fields []string
	if limit > 0 {
		fields = strings.SplitN(row, "|", limit)
	} else {
		fields = strings.Split(row, "|")
	}
	for ix, f := range fields {
		fields[ix] = strings.TrimSpace(f)
	}

	return fields
}

// parseAsNumber only accepts plain decimal numbers that fit in 32 bits.
func parseAsNumber(s string) (AsNumber, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}

	return AsNumber(n), true
}

// parseDate returns the zero time.Time if s is not a YYYY-MM-DD date.
func parseDate(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}

	return d
}

// ParseOrigin converts one origin response row into zero or more OriginRecords, one per parsable
// AS number in the leading field. A row with too few fields produces no records. Unparsable AS
// numbers are skipped and an unparsable date leaves Allocated as the zero value. The count of
// rejected rows and AS number tokens is returned as skipped.
func ParseOrigin(row string, expires time.Time) (records []OriginRecord, skipped int) {
	fields := splitRow(row, 0)
	if len(fields) < originFieldCount {
		return nil, 1
	}

	allocated := parseDate(fields[4])
	for _, token := range strings.Fields(fields[0]) {
		asn, ok := parseAsNumber(token)
		if !ok {
			skipped++
			continue
		}
		records = append(records, OriginRecord{
			ASNumber:    asn,
			BGPPrefix:   fields[1],
			CountryCode: fields[2],
			Registry:    fields[3],
			Allocated:   allocated,
			Expires:     expires,
		})
	}
	if len(records) == 0 && skipped == 0 { // Empty leading field
		skipped = 1
	}

	return
}

// ParseASInfo converts one AS response row into an ASInfoRecord. The row is split into at most
// five fields so an AS name containing "|" is retained intact. ok is false if the row is too short
// or the AS number is unparsable.
func ParseASInfo(row string, expires time.Time) (record ASInfoRecord, ok bool) {
	fields := splitRow(row, asInfoFieldCount)
	if len(fields) < asInfoFieldCount {
		return
	}
	asn, ok := parseAsNumber(fields[0])
	if !ok {
		return
	}

	return ASInfoRecord{
		ASNumber:    asn,
		CountryCode: fields[1],
		Registry:    fields[2],
		Allocated:   parseDate(fields[3]),
		ASName:      fields[4],
		Expires:     expires,
	}, true
}
