// Package tlsutil builds the client-side tls.Config used by the DoH transport.
package tlsutil

import (
	"crypto/tls"
	"errors"
)

const me = "tlsutil"

// ClientConfig is passed to NewClientTLSConfig.
type ClientConfig struct {
	UseSystemCAs bool     // Start the root pool with the system roots
	CAFiles      []string // Additional PEM root CA files
	CertFile     string   // Client certificate presented to the server. Needs KeyFile
	KeyFile      string
}

// NewClientTLSConfig creates a tls.Config for a client-side HTTPS connection. If either system roots
// are requested or other CAs are supplied, server verification is enabled, otherwise the server
// certificate is accepted as-is. Both CertFile and KeyFile must be present or both absent.
func NewClientTLSConfig(config ClientConfig) (*tls.Config, error) {
	verifyServer := config.UseSystemCAs || len(config.CAFiles) > 0
	cfg := &tls.Config{InsecureSkipVerify: !verifyServer, MinVersion: tls.VersionTLS12}
	if verifyServer {
		pool, err := loadroots(config.UseSystemCAs, config.CAFiles)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	// Both or neither
	if len(config.CertFile) > 0 && len(config.KeyFile) == 0 {
		return nil, errors.New(me + ": Client key file missing when cert file present")
	}
	if len(config.CertFile) == 0 && len(config.KeyFile) > 0 {
		return nil, errors.New(me + ": Client cert file missing when key file present")
	}

	if len(config.CertFile) == 0 {
		return cfg, nil
	}

	cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	if err != nil {
		return nil, errors.New(me + ": Client certificate: " + err.Error())
	}
	cfg.Certificates = []tls.Certificate{cert}

	return cfg, nil
}
