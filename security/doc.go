// Package security builds the TLS configuration of the launch API.
//
// A certificate and key turn TLS on; a client CA file additionally requires
// callers to present a certificate signed by that CA (mutual TLS).
//
//	cfg := security.TLSConfig{
//	    CertFile:     "/etc/bg/tls/cert.pem",
//	    KeyFile:      "/etc/bg/tls/key.pem",
//	    ClientCAFile: "/etc/bg/tls/clients.pem",
//	}
//
//	tlsConfig, err := cfg.Build()
package security
