package main

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"

	"github.com/markdingo/cymrudns/internal/concurrencytracker"
	"github.com/markdingo/cymrudns/internal/cymru"
)

// lookup is one command line argument and, once done is closed, its outcome.
type lookup struct {
	arg  string
	addr netip.Addr // Valid for IP lookups, otherwise asn applies
	asn  cymru.AsNumber

	done    chan struct{}
	results []cymru.Result       // From an IP lookup
	infos   []cymru.ASInfoRecord // From an AS lookup
	err     error
}

func newLookup(arg string) (*lookup, error) {
	l := &lookup{arg: arg, done: make(chan struct{})}
	if addr, err := netip.ParseAddr(arg); err == nil {
		l.addr = addr
		return l, nil
	}
	asn, err := cymru.ParseAsNumber(arg)
	if err != nil {
		return nil, fmt.Errorf("'%s' is neither an IP address nor an AS number", arg)
	}
	l.asn = asn

	return l, nil
}

func (t *lookup) isIP() bool {
	return t.addr.IsValid()
}

func (t *lookup) run(client *cymru.Client) {
	if t.isIP() {
		t.results, t.err = client.IP2ASN(t.addr)
	} else {
		t.infos, t.err = client.ASInfo(t.asn)
	}
}

// gatherLookups converts the command line arguments followed by the contents of each argument file
// into lookups. Any invalid argument is an error.
func gatherLookups(args []string, files []string) ([]*lookup, error) {
	for _, f := range files {
		more, err := readArgFile(f)
		if err != nil {
			return nil, err
		}
		args = append(args, more...)
	}

	lookups := make([]*lookup, 0, len(args))
	for _, arg := range args {
		l, err := newLookup(arg)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}

	return lookups, nil
}

// readArgFile returns the non-empty, non-comment lines of path. A path of "-" reads Stdin.
func readArgFile(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var args []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if ix := strings.IndexByte(line, '#'); ix >= 0 {
			line = line[:ix]
		}
		line = strings.TrimSpace(line)
		if len(line) > 0 {
			args = append(args, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return args, nil
}

// runLookups starts every lookup in order with at most parallel running at once. It returns
// immediately; callers wait on each lookup's done channel.
func runLookups(client *cymru.Client, lookups []*lookup, parallel int, cct *concurrencytracker.Counter) {
	sem := make(chan struct{}, parallel)
	go func() {
		for _, l := range lookups {
			sem <- struct{}{}
			go func(l *lookup) {
				cct.Add()
				l.run(client)
				cct.Done()
				<-sem
				close(l.done)
			}(l)
		}
	}()
}
