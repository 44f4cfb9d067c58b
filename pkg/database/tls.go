package database

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// TLSOptions points at the PEM files used for mutual TLS.
type TLSOptions struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// Enabled reports whether any TLS file has been configured.
func (o TLSOptions) Enabled() bool {
	return o.CAFile != "" || o.CertFile != "" || o.KeyFile != ""
}

// Config builds a *tls.Config for connecting over mTLS.
//
// Example usage:
//
//	cfg, err := opts.TLS.Config()
//	if err != nil {
//		return err
//	}
func (o TLSOptions) Config() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(o.CertFile, o.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load certfile/keyfile")
	}

	caCert, err := os.ReadFile(o.CAFile)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load CAfile")
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("no certificates found in CAfile: %s", o.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
