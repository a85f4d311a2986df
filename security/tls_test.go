package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/bg/security/tlstest"
)

func TestTLSConfig_Build_Disabled(t *testing.T) {
	for _, cfg := range []*TLSConfig{nil, {}} {
		result, err := cfg.Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != nil {
			t.Fatal("expected nil tls.Config when TLS is off")
		}
	}
}

func TestTLSConfig_Build_ServerCert(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 certificate, got %d", len(result.Certificates))
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
	if result.ClientAuth != tls.NoClientCert {
		t.Errorf("expected no client auth, got %v", result.ClientAuth)
	}
}

func TestTLSConfig_Build_MutualTLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{
		CertFile:     certs.CertFile,
		KeyFile:      certs.KeyFile,
		ClientCAFile: certs.CAFile,
		MinVersion:   tls.VersionTLS13,
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClientCAs == nil {
		t.Error("expected ClientCAs to be set")
	}
	if result.ClientAuth != tls.RequireAndVerifyClientCert {
		t.Errorf("expected RequireAndVerifyClientCert, got %v", result.ClientAuth)
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
	if !cfg.MutualTLS() {
		t.Error("expected MutualTLS to be true")
	}
}

func TestTLSConfig_Build_InvalidCertFiles(t *testing.T) {
	cfg := &TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected error for nonexistent cert files")
	}
}

func TestTLSConfig_Build_InvalidClientCA(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	tests := []struct {
		name string
		ca   string
	}{
		{"missing file", "/nonexistent/ca.pem"},
		{"bad PEM", tlstest.WriteInvalidPEM(t, "bad-ca.pem")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile, ClientCAFile: tc.ca}
			if _, err := cfg.Build(); err == nil {
				t.Fatal("expected error for unusable client CA")
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantErr bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"cert and key", &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}, false},
		{"cert without key", &TLSConfig{CertFile: "cert.pem"}, true},
		{"key without cert", &TLSConfig{KeyFile: "key.pem"}, true},
		{"client CA alone", &TLSConfig{ClientCAFile: "ca.pem"}, true},
		{"TLS 1.1", &TLSConfig{CertFile: "c", KeyFile: "k", MinVersion: tls.VersionTLS11}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"client CA only", &TLSConfig{ClientCAFile: "ca.pem"}, false},
		{"cert_file", &TLSConfig{CertFile: "cert.pem"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}
