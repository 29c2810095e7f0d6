package tlsutil

import (
	"crypto/x509"
	"fmt"
	"os"
)

// loadroots loads all the indicated root CA files into an x509.CertPool which starts out either
// empty or as a copy of the system pool.
func loadroots(useSystemRoots bool, otherCAFiles []string) (*x509.CertPool, error) {
	var pool *x509.CertPool
	if useSystemRoots {
		var err error
		pool, err = x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("%s: System roots failed: %w", me, err)
		}
	} else {
		pool = x509.NewCertPool()
	}

	for _, caFile := range otherCAFiles {
		pemData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("%s: CA file: %w", me, err)
		}

		if !pool.AppendCertsFromPEM(pemData) {
			return nil, fmt.Errorf("%s: No certificates found in %s", me, caFile)
		}
	}

	return pool, nil
}
