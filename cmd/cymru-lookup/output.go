package main

import (
	"fmt"
	"io"
	"time"

	"github.com/markdingo/cymrudns/internal/cymru"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonRecord is the --json representation of both IP and AS results. IP-only fields are omitted
// for AS lookups.
type jsonRecord struct {
	Query       string    `json:"query"`
	IP          string    `json:"ip,omitempty"`
	BGPPrefix   string    `json:"bgp_prefix,omitempty"`
	ASNumber    uint32    `json:"asn"`
	ASName      string    `json:"as_name"`
	CountryCode string    `json:"cc"`
	Registry    string    `json:"registry"`
	Allocated   string    `json:"allocated,omitempty"`
	Expires     time.Time `json:"expires"`
}

// printLookups waits for each lookup in turn and prints its results in the selected format. Errors
// go to stderr. Returns the number of failed lookups.
func printLookups(lookups []*lookup) (failures int) {
	var records []jsonRecord
	printed := 0
	for _, l := range lookups {
		<-l.done
		if l.err != nil {
			failures++
			fmt.Fprintf(stderr, "Error: %s: %s\n", l.arg, l.err)
			continue
		}
		switch {
		case cfg.json:
			records = append(records, toJSON(l)...)
		case cfg.short:
			printShort(stdout, l)
		default:
			if printed > 0 {
				fmt.Fprintln(stdout)
			}
			printLong(stdout, l, time.Now())
			printed++
		}
	}

	if cfg.json {
		if records == nil {
			records = []jsonRecord{} // "[]" rather than "null"
		}
		enc := jsonAPI.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintln(stderr, "Error: JSON encode:", err)
			failures++
		}
	}

	return
}

func toJSON(l *lookup) []jsonRecord {
	var records []jsonRecord
	for _, r := range l.results {
		records = append(records, jsonRecord{
			Query:       l.arg,
			IP:          r.IPAddr.String(),
			BGPPrefix:   r.BGPPrefix,
			ASNumber:    uint32(r.ASNumber),
			ASName:      r.ASName,
			CountryCode: r.CountryCode,
			Registry:    r.Registry,
			Allocated:   r.AllocatedString(),
			Expires:     r.Expires.UTC(),
		})
	}
	for _, r := range l.infos {
		records = append(records, jsonRecord{
			Query:       l.arg,
			ASNumber:    uint32(r.ASNumber),
			ASName:      r.ASName,
			CountryCode: r.CountryCode,
			Registry:    r.Registry,
			Allocated:   r.AllocatedString(),
			Expires:     r.Expires.UTC(),
		})
	}

	return records
}

// printShort produces the same column layout as the Team Cymru whois bulk interface:
//
//	AS      | IP               | BGP Prefix          | CC | Registry | Allocated  | AS Name
//	AS      | CC | Registry | Allocated  | AS Name
func printShort(out io.Writer, l *lookup) {
	for _, r := range l.results {
		fmt.Fprintf(out, "%-7d | %-16s | %-19s | %-2s | %-8s | %-10s | %s\n",
			r.ASNumber, r.IPAddr, r.BGPPrefix, r.CountryCode, r.Registry, r.AllocatedString(), r.ASName)
	}
	for _, r := range l.infos {
		fmt.Fprintf(out, "%-7d | %-2s | %-8s | %-10s | %s\n",
			r.ASNumber, r.CountryCode, r.Registry, r.AllocatedString(), r.ASName)
	}
}

func printLong(out io.Writer, l *lookup, now time.Time) {
	for ix, r := range l.results {
		if ix > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "IP Address:  %s\n", r.IPAddr)
		fmt.Fprintf(out, "BGP Prefix:  %s\n", r.BGPPrefix)
		printLongAS(out, r.ASNumber, r.ASName, r.CountryCode, r.Registry, r.AllocatedString(), r.Expires, now)
	}
	for ix, r := range l.infos {
		if ix > 0 {
			fmt.Fprintln(out)
		}
		printLongAS(out, r.ASNumber, r.ASName, r.CountryCode, r.Registry, r.AllocatedString(), r.Expires, now)
	}
}

func printLongAS(out io.Writer, asn cymru.AsNumber, name, cc, registry, allocated string, expires, now time.Time) {
	if len(allocated) == 0 {
		allocated = "-"
	}
	fmt.Fprintf(out, "AS Number:   %s\n", asn)
	fmt.Fprintf(out, "AS Name:     %s\n", name)
	fmt.Fprintf(out, "Country:     %s\n", cc)
	fmt.Fprintf(out, "Registry:    %s\n", registry)
	fmt.Fprintf(out, "Allocated:   %s\n", allocated)
	fmt.Fprintf(out, "Expires:     %s (%s)\n",
		humanize.RelTime(expires, now, "ago", "from now"), expires.UTC().Format(time.RFC3339))
}
