package security

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/kbukum/gonogo/security/tlstest"
)

func TestTLSConfig_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"ca_file", &TLSConfig{CAFile: "ca.pem"}, true},
		{"key_file only", &TLSConfig{KeyFile: "key.pem"}, true},
		{"server_name", &TLSConfig{ServerName: "db.internal"}, true},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Enabled(); got != tc.enabled {
				t.Errorf("Enabled() = %v, want %v", got, tc.enabled)
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate("store.tls"); err != nil {
		t.Errorf("nil config should validate, got %v", err)
	}
	if err := (&TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}).Validate("store.tls"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := (&TLSConfig{CertFile: "c.pem"}).Validate("store.tls")
	if err == nil || !strings.Contains(err.Error(), "store.tls.key_file") {
		t.Errorf("expected store.tls.key_file error, got %v", err)
	}
}

func TestTLSConfig_BuildDisabled(t *testing.T) {
	got, err := (&TLSConfig{}).Build()
	if err != nil || got != nil {
		t.Errorf("expected nil config and no error, got %v %v", got, err)
	}
}

func TestTLSConfig_BuildFull(t *testing.T) {
	certs := tlstest.Generate(t)
	got, err := (&TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
	}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.RootCAs == nil {
		t.Error("expected RootCAs")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("expected one client certificate, got %d", len(got.Certificates))
	}
	if got.ServerName != "localhost" || got.MinVersion != tls.VersionTLS12 || got.InsecureSkipVerify {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestTLSConfig_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  TLSConfig
	}{
		{"missing ca", TLSConfig{CAFile: "/nonexistent/ca.pem"}},
		{"bad ca", TLSConfig{CAFile: tlstest.WriteFile(t, "ca.pem", "-----BEGIN CERTIFICATE-----\nnope\n-----END CERTIFICATE-----\n")}},
		{"missing key pair", TLSConfig{CertFile: "/nonexistent/c.pem", KeyFile: "/nonexistent/k.pem"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.cfg.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
