// Package tlstest issues throwaway certificates for testing the launch
// API over TLS. Everything is signed by one ephemeral CA and written under
// t.TempDir().
//
//	certs := tlstest.GenerateTLSCerts(t)
//	cfg := security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile, ClientCAFile: certs.CAFile}
//	client := &tls.Config{RootCAs: certs.CertPool, Certificates: []tls.Certificate{certs.Client}}
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TLSCerts is a CA, a server leaf on disk and a client leaf in memory.
type TLSCerts struct {
	CAFile   string
	CertFile string
	KeyFile  string

	// Client is a client-auth certificate signed by the same CA.
	Client tls.Certificate
	// CertPool trusts the CA.
	CertPool *x509.CertPool
}

type issuer struct {
	t      testing.TB
	cert   *x509.Certificate
	key    *ecdsa.PrivateKey
	serial int64
}

// GenerateTLSCerts issues a CA, a server certificate for localhost,
// 127.0.0.1 and ::1, and a client certificate.
func GenerateTLSCerts(t testing.TB) *TLSCerts {
	t.Helper()
	dir := t.TempDir()
	ca := newIssuer(t)

	caFile := filepath.Join(dir, "ca.pem")
	writePEM(t, caFile, "CERTIFICATE", ca.cert.Raw)

	serverDER, serverKey := ca.issue(&x509.Certificate{
		Subject:     pkix.Name{CommonName: "localhost", Organization: []string{"bg serve"}},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	certFile := filepath.Join(dir, "server.pem")
	keyFile := filepath.Join(dir, "server-key.pem")
	writePEM(t, certFile, "CERTIFICATE", serverDER)
	writeKey(t, keyFile, serverKey)

	clientDER, clientKey := ca.issue(&x509.Certificate{
		Subject:     pkix.Name{CommonName: "bg-client", Organization: []string{"bg caller"}},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})

	pool := x509.NewCertPool()
	pool.AddCert(ca.cert)

	return &TLSCerts{
		CAFile:   caFile,
		CertFile: certFile,
		KeyFile:  keyFile,
		Client:   tls.Certificate{Certificate: [][]byte{clientDER}, PrivateKey: clientKey},
		CertPool: pool,
	}
}

// WriteInvalidPEM writes a PEM-framed file whose body is not a certificate
// and returns its path.
func WriteInvalidPEM(t testing.TB, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	content := []byte("-----BEGIN CERTIFICATE-----\nbm90IGEgY2VydA==\n-----END CERTIFICATE-----\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("tlstest: write %s: %v", path, err)
	}
	return path
}

func newIssuer(t testing.TB) *issuer {
	t.Helper()
	key := generateKey(t)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "bg test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("tlstest: create CA: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("tlstest: parse CA: %v", err)
	}
	return &issuer{t: t, cert: cert, key: key, serial: 1}
}

// issue signs tmpl with a fresh key and returns the DER certificate.
func (i *issuer) issue(tmpl *x509.Certificate) ([]byte, *ecdsa.PrivateKey) {
	i.t.Helper()
	i.serial++
	tmpl.SerialNumber = big.NewInt(i.serial)
	tmpl.NotBefore = time.Now().Add(-time.Hour)
	tmpl.NotAfter = time.Now().Add(24 * time.Hour)
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature

	key := generateKey(i.t)
	der, err := x509.CreateCertificate(rand.Reader, tmpl, i.cert, &key.PublicKey, i.key)
	if err != nil {
		i.t.Fatalf("tlstest: issue %s: %v", tmpl.Subject.CommonName, err)
	}
	return der, key
}

func generateKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("tlstest: generate key: %v", err)
	}
	return key
}

func writeKey(t testing.TB, path string, key *ecdsa.PrivateKey) {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("tlstest: marshal key: %v", err)
	}
	writePEM(t, path, "EC PRIVATE KEY", der)
}

func writePEM(t testing.TB, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("tlstest: write %s: %v", path, err)
	}
}
