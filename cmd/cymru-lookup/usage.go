package main

import (
	"fmt"
	"io"
	"text/template"
)

// The "flag" package is not tty aware so we've arbitrarily picked 100 columns as a conservative tty
// width for the usage output.

const usageMessageTemplate = `
NAME
          {{.LookupProgramName}} -- map IP addresses to origin AS numbers via DNS

SYNOPSIS
          {{.LookupProgramName}} [options] (IP-address | AS-number)...

DESCRIPTION
          {{.LookupProgramName}} queries the Team Cymru IP-to-ASN mapping service using DNS TXT
          lookups under {{.CymruDomain}}. For each IP address argument it finds every origin AS
          announcing a covering BGP prefix and the registration details of each AS. For each AS
          number argument (23028 or AS23028) it returns the AS registration details alone.

          Queries are sent to the nameservers in resolv.conf unless one or more --doh server URLs
          are supplied, in which case queries are sent over DNS-over-HTTPS ({{.RFC}}).

          Results are printed in argument order. The exit code is zero if every lookup succeeded.
          Sending SIGUSR1 prints interim statistics to Stderr.

          Please read {{.ServiceURL}} before making heavy use of this service.

EXAMPLES
            $ {{.LookupProgramName}} 216.90.108.31 2001:db8::1 AS23028
            $ {{.LookupProgramName}} --short -p 8 -f addresses.txt
            $ {{.LookupProgramName}} --doh https://mozilla.cloudflare-dns.com/dns-query --json 8.8.8.8

CONFIG FILE
          --config names a YAML file of defaults. Command line options always win.

            domain: asn.cymru.com
            parallel: 4
            output: short            # long, short or json
            resolv_conf: /etc/resolv.conf
            servers: [ 9.9.9.9, "[2620:fe::fe]:53" ]
            doh: [ https://dns.quad9.net/dns-query ]
            timeout: 10s
            get: false
            padding: true
            log: { level: warn, json: false }
            tls: { cert: "", key: "", other_roots: [], use_system_roots: true }

OPTIONS
          [-ghv] [--json | --short] [--version]

          [-d domain] [-f file] [-p parallel]

          [-c resolv.conf] [-s server]

          [--doh URL] [-t request timeout] [--padding]
          [--tls-cert TLS Client Certificate file]
          [--tls-key TLS Client Key file]
          [--tls-other-roots TLS Root Certificate file...]
          [--tls-use-system-roots]

          [--config file] [--gops] [--log-level level] [--log-json]
`

//////////////////////////////////////////////////////////////////////

func usage(out io.Writer) {
	tmpl, err := template.New("usage").Parse(usageMessageTemplate)
	if err != nil {
		panic(err) // We've messed up our template
	}
	err = tmpl.Execute(out, consts)
	if err != nil {
		panic(err) // We've messed up our template
	}
	flagSet.SetOutput(out)
	flagSet.PrintDefaults()
	fmt.Fprintln(out, "\nVersion:", consts.Version)
}

// parseCommandLine sets up the flags-to-config mapping and parses the supplied command line
// arguments. It starts from scratch each time to make it easier for test wrappers to use.
func parseCommandLine(args []string) error {
	flagSet.StringVar(&cfg.resolvConf, "c", consts.DefaultResolvConf, "resolv.conf `file` supplying nameservers and options")
	flagSet.StringVar(&cfg.domain, "d", consts.CymruDomain, "Service `domain`")
	flagSet.Var(&cfg.argFiles, "f", "Read more arguments from `file`, one per line. '-' is Stdin")
	flagSet.BoolVar(&cfg.dohConfig.UseGetMethod, "g", false, "Use HTTP GET with the 'dns' query parameter (instead of POST)")
	flagSet.BoolVar(&cfg.help, "h", false, "Print usage message to Stdout then exit(0)")
	flagSet.IntVar(&cfg.parallel, "p", consts.DefaultParallelism, "`Number` of lookups to run in parallel")
	flagSet.Var(&cfg.servers, "s", "Nameserver `host[:port]` replacing those in resolv.conf")
	flagSet.DurationVar(&cfg.requestTimeout, "t", consts.DefaultTimeout, "Request `timeout`")
	flagSet.BoolVar(&cfg.verbose, "v", false, "Print resolver and lookup statistics on exit")

	flagSet.StringVar(&cfg.configFile, "config", "", "YAML `file` of default settings")
	flagSet.BoolVar(&cfg.gops, "gops", false, "Start github.com/google/gops agent")
	flagSet.BoolVar(&cfg.json, "json", false, "Print results as a JSON array")
	flagSet.BoolVar(&cfg.short, "short", false, "Print one pipe-delimited line per result")

	flagSet.StringVar(&cfg.logLevel, "log-level", "error", "Log `level`: trace, debug, info, warn, error or disabled")
	flagSet.BoolVar(&cfg.logJSON, "log-json", false, "Log as JSON rather than console text")

	flagSet.Var(&cfg.dohURLs, "doh", "DoH server `URL`. Replaces resolv.conf")
	flagSet.BoolVar(&cfg.dohConfig.GeneratePadding, "padding", true, "Add RFC8467 recommended padding to DoH queries")

	flagSet.StringVar(&cfg.tlsClientCertFile, "tls-cert", "", "TLS Client Certificate `file`")
	flagSet.StringVar(&cfg.tlsClientKeyFile, "tls-key", "", "TLS Client Key `file`")
	flagSet.Var(&cfg.tlsCAFiles, "tls-other-roots", "Non-system Root CA `file` used to validate HTTPS endpoint")
	flagSet.BoolVar(&cfg.tlsUseSystemRootCAs, "tls-use-system-roots", true,
		"Validate HTTPS endpoints with root CAs")

	flagSet.BoolVar(&cfg.version, "version", false, "Print version and exit")

	return flagSet.Parse(args[1:])
}
