package cymru

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExpires = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseOrigin(t *testing.T) {
	recs, skipped := ParseOrigin("23028 | 216.90.108.0/24 | US | arin | 1998-09-25", testExpires)
	require.Len(t, recs, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, OriginRecord{
		ASNumber:    23028,
		BGPPrefix:   "216.90.108.0/24",
		CountryCode: "US",
		Registry:    "arin",
		Allocated:   date(1998, 9, 25),
		Expires:     testExpires,
	}, recs[0])
}

func TestParseOriginMultipleAS(t *testing.T) {
	recs, skipped := ParseOrigin("1 23 456 7890 | 203.0.113.0/24 | GB | ripencc | 2006-02-17", testExpires)
	assert.Zero(t, skipped)
	require.Len(t, recs, 4)
	for ix, asn := range []AsNumber{1, 23, 456, 7890} {
		assert.Equal(t, asn, recs[ix].ASNumber)
		assert.Equal(t, "203.0.113.0/24", recs[ix].BGPPrefix)
		assert.Equal(t, "GB", recs[ix].CountryCode)
		assert.Equal(t, "ripencc", recs[ix].Registry)
		assert.Equal(t, date(2006, 2, 17), recs[ix].Allocated)
	}
}

func TestParseOriginLenient(t *testing.T) {
	tt := []struct {
		name    string
		row     string
		asns    []AsNumber
		skipped int
	}{
		{"bad token skipped", "1 x2 3 | 192.0.2.0/24 | AU | apnic | 2001-01-01", []AsNumber{1, 3}, 1},
		{"too big", "4294967296 5 | 192.0.2.0/24 | AU | apnic | 2001-01-01", []AsNumber{5}, 1},
		{"negative", "-1 | 192.0.2.0/24 | AU | apnic | 2001-01-01", nil, 1},
		{"all bad", "x y | 192.0.2.0/24 | AU | apnic | 2001-01-01", nil, 2},
		{"empty asn field", " | 192.0.2.0/24 | AU | apnic | 2001-01-01", nil, 1},
		{"too few fields", "1 | 192.0.2.0/24 | AU", nil, 1},
		{"empty row", "", nil, 1},
		{"extra whitespace", "  7   8  |192.0.2.0/24|AU|apnic|2001-01-01  ", []AsNumber{7, 8}, 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			recs, skipped := ParseOrigin(tc.row, testExpires)
			var asns []AsNumber
			for _, r := range recs {
				asns = append(asns, r.ASNumber)
			}
			assert.Equal(t, tc.asns, asns)
			assert.Equal(t, tc.skipped, skipped)
		})
	}
}

func TestParseOriginDates(t *testing.T) {
	tt := []struct {
		date    string
		present bool
	}{
		{"1998-09-25", true},
		{"", false},
		{"1998/09/25", false},
		{"1998-13-01", false},
		{"yesterday", false},
	}

	for _, tc := range tt {
		recs, _ := ParseOrigin("64496 | 192.0.2.0/24 | ZZ | other | "+tc.date, testExpires)
		require.Len(t, recs, 1, tc.date)
		assert.Equal(t, tc.present, recs[0].HasAllocated(), tc.date)
		if tc.present {
			assert.Equal(t, tc.date, recs[0].AllocatedString())
		} else {
			assert.Empty(t, recs[0].AllocatedString())
		}
	}
}

func TestParseASInfo(t *testing.T) {
	rec, ok := ParseASInfo("23028 | US | arin | 2002-01-04 | TEAM-CYMRU - Team Cymru Inc., US", testExpires)
	require.True(t, ok)
	assert.Equal(t, ASInfoRecord{
		ASNumber:    23028,
		CountryCode: "US",
		Registry:    "arin",
		Allocated:   date(2002, 1, 4),
		ASName:      "TEAM-CYMRU - Team Cymru Inc., US",
		Expires:     testExpires,
	}, rec)
}

func TestParseASInfoLenient(t *testing.T) {
	rec, ok := ParseASInfo("64500 | ZZ | other | | Pipes | In | Name", testExpires)
	require.True(t, ok)
	assert.Equal(t, "Pipes | In | Name", rec.ASName, "Name should keep embedded separators")
	assert.False(t, rec.HasAllocated())

	rec, ok = ParseASInfo("64501 | ZZ | other | 2020-02-02 | ", testExpires)
	require.True(t, ok)
	assert.Empty(t, rec.ASName)

	for _, row := range []string{
		"",
		"64500 | ZZ | other | 2020-02-02",
		"AS64500 | ZZ | other | 2020-02-02 | Name",
		"99999999999 | ZZ | other | 2020-02-02 | Name",
		" | ZZ | other | 2020-02-02 | Name",
	} {
		_, ok := ParseASInfo(row, testExpires)
		assert.False(t, ok, row)
	}
}
