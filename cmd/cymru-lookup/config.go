package main

import (
	"fmt"
	"os"
	"time"

	"github.com/markdingo/cymrudns/internal/flagutil"
	"github.com/markdingo/cymrudns/internal/resolver/doh"

	"gopkg.in/yaml.v3"
)

type config struct {
	help    bool
	gops    bool
	json    bool
	short   bool
	verbose bool
	version bool

	configFile string
	argFiles   flagutil.StringValue // -f files containing more arguments
	domain     string
	parallel   int

	logLevel string
	logJSON  bool

	resolvConf     string
	servers        flagutil.StringValue // Override resolv.conf nameservers
	dohURLs        flagutil.StringValue // Use DoH instead of resolv.conf
	requestTimeout time.Duration

	tlsClientCertFile   string
	tlsClientKeyFile    string
	tlsCAFiles          flagutil.StringValue // Non-system root CAs
	tlsUseSystemRootCAs bool                 // Do/Do not use system root CAs

	dohConfig doh.Config
}

// fileConfig is the layout of the --config YAML file. Every setting is optional and only applies
// if the corresponding flag was not present on the command line.
type fileConfig struct {
	Domain     string        `yaml:"domain"`
	Parallel   int           `yaml:"parallel"`
	Output     string        `yaml:"output"` // long, short or json
	ResolvConf string        `yaml:"resolv_conf"`
	Servers    []string      `yaml:"servers"`
	DoH        []string      `yaml:"doh"`
	Timeout    time.Duration `yaml:"timeout"`
	Get        *bool         `yaml:"get"`
	Padding    *bool         `yaml:"padding"`

	Log struct {
		Level string `yaml:"level"`
		JSON  *bool  `yaml:"json"`
	} `yaml:"log"`

	TLS struct {
		Cert           string   `yaml:"cert"`
		Key            string   `yaml:"key"`
		OtherRoots     []string `yaml:"other_roots"`
		UseSystemRoots *bool    `yaml:"use_system_roots"`
	} `yaml:"tls"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc := &fileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return fc, nil
}

// apply copies file settings into cfg for every flag not named in set.
func (fc *fileConfig) apply(cfg *config, set map[string]bool) error {
	setString := func(flag string, dst *string, v string) {
		if !set[flag] && len(v) > 0 {
			*dst = v
		}
	}
	setBool := func(flag string, dst *bool, v *bool) {
		if !set[flag] && v != nil {
			*dst = *v
		}
	}
	setList := func(flag string, dst *flagutil.StringValue, v []string) {
		if !set[flag] {
			for _, s := range v {
				dst.Set(s)
			}
		}
	}

	setString("d", &cfg.domain, fc.Domain)
	setString("c", &cfg.resolvConf, fc.ResolvConf)
	setString("log-level", &cfg.logLevel, fc.Log.Level)
	setBool("log-json", &cfg.logJSON, fc.Log.JSON)
	setList("s", &cfg.servers, fc.Servers)
	setList("doh", &cfg.dohURLs, fc.DoH)
	setBool("g", &cfg.dohConfig.UseGetMethod, fc.Get)
	setBool("padding", &cfg.dohConfig.GeneratePadding, fc.Padding)
	setString("tls-cert", &cfg.tlsClientCertFile, fc.TLS.Cert)
	setString("tls-key", &cfg.tlsClientKeyFile, fc.TLS.Key)
	setList("tls-other-roots", &cfg.tlsCAFiles, fc.TLS.OtherRoots)
	setBool("tls-use-system-roots", &cfg.tlsUseSystemRootCAs, fc.TLS.UseSystemRoots)

	if !set["p"] && fc.Parallel != 0 {
		cfg.parallel = fc.Parallel
	}
	if !set["t"] && fc.Timeout != 0 {
		cfg.requestTimeout = fc.Timeout
		set["t"] = true // So the local resolver honours it too
	}

	if !set["short"] && !set["json"] {
		switch fc.Output {
		case "", "long":
		case "short":
			cfg.short = true
		case "json":
			cfg.json = true
		default:
			return fmt.Errorf("Unknown output '%s' in %s. Expect long, short or json", fc.Output, cfg.configFile)
		}
	}

	return nil
}
