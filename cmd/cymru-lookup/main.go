// Look up origin AS numbers and AS details via the Team Cymru DNS service
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"

	"github.com/markdingo/cymrudns/internal/concurrencytracker"
	"github.com/markdingo/cymrudns/internal/constants"
	"github.com/markdingo/cymrudns/internal/cymru"
	"github.com/markdingo/cymrudns/internal/log"
	"github.com/markdingo/cymrudns/internal/osutil"
	"github.com/markdingo/cymrudns/internal/reporter"
	"github.com/markdingo/cymrudns/internal/resolver"
	"github.com/markdingo/cymrudns/internal/resolver/doh"
	"github.com/markdingo/cymrudns/internal/resolver/local"
	"github.com/markdingo/cymrudns/internal/tlsutil"
	"github.com/markdingo/cymrudns/internal/txt"

	"github.com/google/gops/agent"
	"golang.org/x/net/http2"
)

// Program-wide variables
var (
	consts = constants.Get()
	cfg    *config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flagSet *flag.FlagSet
)

// reportingResolver is what both resolver implementations offer
type reportingResolver interface {
	resolver.Resolver
	reporter.Reporter
}

//////////////////////////////////////////////////////////////////////

func fatal(args ...interface{}) int {
	fmt.Fprint(stderr, "Fatal: ", consts.LookupProgramName, ": ")
	fmt.Fprintln(stderr, args...)

	return 1
}

//////////////////////////////////////////////////////////////////////
// main is a wrapper for mainExecute() so tests can call mainExecute()
//////////////////////////////////////////////////////////////////////

func mainInit(out io.Writer, err io.Writer) {
	cfg = &config{}
	stdin = os.Stdin
	stdout = out
	stderr = err
}

func main() {
	mainInit(os.Stdout, os.Stderr)
	os.Exit(mainExecute(os.Args))
}

func mainExecute(args []string) int {
	flagSet = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	err := parseCommandLine(args)
	if err != nil {
		return 1 // Error already printed by the flag package
	}
	if cfg.help {
		usage(stdout)
		return 0
	}
	if cfg.version {
		fmt.Fprintln(stdout, consts.LookupProgramName, "Version:", consts.Version)
		return 0
	}

	set := make(map[string]bool) // Flags explicitly present on the command line
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if len(cfg.configFile) > 0 {
		fc, err := loadFileConfig(cfg.configFile)
		if err != nil {
			return fatal("--config", err)
		}
		if err := fc.apply(cfg, set); err != nil {
			return fatal(err)
		}
	}

	level, err := log.ParseLevel(cfg.logLevel)
	if err != nil {
		return fatal("--log-level", err)
	}
	log.Init(log.Config{Level: level, JSONOutput: cfg.logJSON, Output: stderr})

	if cfg.short && cfg.json {
		return fatal("Cannot have both --short and --json")
	}
	if cfg.parallel < 1 {
		return fatal("Parallel count (-p) must be GT zero, not", cfg.parallel)
	}
	if cfg.requestTimeout <= 0 {
		return fatal("Request timeout (-t) must be GT zero, not", cfg.requestTimeout)
	}
	if cfg.dohURLs.NArg() > 0 && cfg.servers.NArg() > 0 {
		return fatal("Cannot have both --doh and -s")
	}

	// Gather and validate every argument before issuing any queries

	lookups, err := gatherLookups(flagSet.Args(), cfg.argFiles.Args())
	if err != nil {
		return fatal(err)
	}
	if len(lookups) == 0 {
		return fatal("Require at least one IP address or AS number. Consider -h")
	}

	if cfg.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fatal("--gops", err)
		}
		defer agent.Close()
	}

	var res reportingResolver
	if cfg.dohURLs.NArg() > 0 {
		res, err = newDoHResolver()
	} else {
		lc := local.Config{ResolvConfPath: cfg.resolvConf, Servers: cfg.servers.Args()}
		if set["t"] {
			lc.Timeout = cfg.requestTimeout
		}
		res, err = local.New(lc)
	}
	if err != nil {
		return fatal(err)
	}

	client, err := cymru.New(cymru.Config{Resolver: txt.New(res), Domain: cfg.domain})
	if err != nil {
		return fatal(err)
	}
	log.Logger.Debug().Str("domain", client.Domain()).Int("lookups", len(lookups)).
		Int("parallel", cfg.parallel).Msg("start")

	var cct concurrencytracker.Counter
	reporters := []reporter.Reporter{client, res, &cct}

	// SIGUSR1 prints interim statistics, useful for long -f runs

	sigChan := make(chan os.Signal, 1)
	osutil.ReportSignalNotify(sigChan)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		for s := range sigChan {
			if osutil.IsReportSignal(s) {
				printReports(stderr, "Interim ", reporters)
			}
		}
	}()

	runLookups(client, lookups, cfg.parallel, &cct)
	failures := printLookups(lookups)

	if cfg.verbose {
		printReports(stdout, "", reporters)
	}

	if failures > 0 {
		return 1
	}

	return 0
}

func printReports(out io.Writer, prefix string, reporters []reporter.Reporter) {
	for _, r := range reporters {
		for _, line := range reporter.Lines(r, false) {
			fmt.Fprintf(out, "%s%s: %s\n", prefix, r.Name(), line)
		}
	}
}

// newDoHResolver validates the --doh URLs and constructs a DoH resolver with an HTTP/2 capable
// client configured from the --tls-* options.
func newDoHResolver() (reportingResolver, error) {
	for _, s := range cfg.dohURLs.Args() {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return nil, errors.New("DoH URL must be http or https: " + s)
		}
		if len(u.Host) == 0 {
			return nil, errors.New("DoH URL does not contain a hostname: " + s)
		}
		cfg.dohConfig.ServerURLs = append(cfg.dohConfig.ServerURLs, u.String())
	}

	tlsConfig, err := tlsutil.NewClientTLSConfig(tlsutil.ClientConfig{
		UseSystemCAs: cfg.tlsUseSystemRootCAs,
		CAFiles:      cfg.tlsCAFiles.Args(),
		CertFile:     cfg.tlsClientCertFile,
		KeyFile:      cfg.tlsClientKeyFile,
	})
	if err != nil {
		return nil, err
	}

	tr := &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.requestTimeout, Transport: tr}

	return doh.New(cfg.dohConfig, client)
}
