package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds the server-side TLS settings of the launch API.
type TLSConfig struct {
	// CertFile is the path to the server certificate PEM file.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// KeyFile is the path to the server private key PEM file.
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`

	// ClientCAFile, when set, requires and verifies client certificates
	// signed by the CAs in this PEM file.
	ClientCAFile string `yaml:"client_ca_file" mapstructure:"client_ca_file"`

	// MinVersion is the minimum TLS version (e.g., tls.VersionTLS13).
	// Defaults to TLS 1.2 if not set.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Build creates a *tls.Config from the configuration.
// Returns nil if TLS is not enabled.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("security/tls: failed to load server certificate: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}
	if err := c.loadClientCA(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("security/tls: both cert_file and key_file must be provided together")
	}
	if c.ClientCAFile != "" && c.CertFile == "" {
		return fmt.Errorf("security/tls: client_ca_file requires cert_file and key_file")
	}
	if c.MinVersion != 0 && c.MinVersion < tls.VersionTLS12 {
		return fmt.Errorf("security/tls: min_version below TLS 1.2 is not accepted (got: %#x)", c.MinVersion)
	}
	return nil
}

// IsEnabled reports whether the server should terminate TLS.
func (c *TLSConfig) IsEnabled() bool {
	return c != nil && (c.CertFile != "" || c.KeyFile != "")
}

// MutualTLS reports whether client certificates are required.
func (c *TLSConfig) MutualTLS() bool {
	return c.IsEnabled() && c.ClientCAFile != ""
}

// loadClientCA installs the client CA pool and requires client certs.
func (c *TLSConfig) loadClientCA(cfg *tls.Config) error {
	if c.ClientCAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.ClientCAFile)
	if err != nil {
		return fmt.Errorf("security/tls: failed to read client CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return fmt.Errorf("security/tls: failed to parse client CA certificate")
	}
	cfg.ClientCAs = pool
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	return nil
}
