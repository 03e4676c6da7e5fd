package tlsprobe

import (
	"crypto/x509"
	"testing"
	"time"
)

func TestSanMatchesWildcard(t *testing.T) {
	cases := []struct {
		pattern, vhost string
		want           bool
	}{
		{"*.example.com", "a.example.com", true},
		{"*.example.com", "example.com", false},
		{"*.example.com", "a.b.example.com", false},
		{"example.com", "EXAMPLE.COM", true},
	}
	for _, c := range cases {
		if got := sanMatches(c.pattern, c.vhost); got != c.want {
			t.Errorf("sanMatches(%q, %q) = %v, want %v", c.pattern, c.vhost, got, c.want)
		}
	}
}

func TestParseCertInfoExpired(t *testing.T) {
	cert := &x509.Certificate{
		NotAfter: time.Now().UTC().Add(-24 * time.Hour),
	}
	info := parseCertInfo(cert)
	if !info.IsExpired {
		t.Error("expected IsExpired = true for a cert that expired yesterday")
	}
	if info.KeySize != defaultKeySize {
		t.Errorf("KeySize = %d, want default %d for a cert with no RSA key", info.KeySize, defaultKeySize)
	}
}

func TestParseCertInfoNotExpired(t *testing.T) {
	cert := &x509.Certificate{
		NotAfter: time.Now().UTC().Add(24 * time.Hour),
	}
	info := parseCertInfo(cert)
	if info.IsExpired {
		t.Error("expected IsExpired = false for a cert valid for another day")
	}
}

func TestCheckTLSUnreachableReturnsEmptyResult(t *testing.T) {
	res := CheckTLS("127.0.0.1", 1, "")
	if len(res.WeakProtocols) != 0 || res.CertInfo != nil || len(res.Vulnerabilities) != 0 {
		t.Fatalf("expected empty Result for unreachable host, got %+v", res)
	}
}
