// Package tlsprobe implements the weak-protocol negotiation and
// certificate inspection described in spec.md §4.D. Certificate parsing
// reuses the teacher's crypto/x509 + crypto/x509/pkix idiom from
// internal/ca/ca.go, but runs it in the opposite direction: the teacher
// issues certificates for its own CA, this package inspects whatever
// certificate a remote peer presents.
package tlsprobe

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	handshakeTimeout = 2 * time.Second
	defaultKeySize   = 2048
)

// weakProtocolVersions are the TLS versions spec.md calls "weak" and wants
// an active negotiation attempt against.
var weakProtocolVersions = []struct {
	label   string
	version uint16
}{
	{"TLSv1.0", tls.VersionTLS10},
	{"TLSv1.1", tls.VersionTLS11},
}

// CertInfo is the parsed, display-ready form of the peer certificate.
type CertInfo struct {
	Subject   string `json:"subject"`
	Expiry    string `json:"expiry"` // YYYY-MM-DD
	KeySize   int    `json:"key_size"`
	IsExpired bool   `json:"is_expired"`
}

// Result is the full record produced by CheckTLS.
type Result struct {
	WeakProtocols   []string  `json:"weak_protocols"`
	CertInfo        *CertInfo `json:"cert_info,omitempty"`
	Vulnerabilities []string  `json:"vulnerabilities"`
}

// CheckTLS attempts a handshake at each weak TLS version, then fetches and
// parses the server's certificate at its natural (best) version. All
// probe failures are swallowed — a partial Result is always valid.
func CheckTLS(host string, port int, vhost string) Result {
	sni := vhost
	if sni == "" {
		sni = host
	}

	var res Result
	for _, wp := range weakProtocolVersions {
		if handshakeAt(host, port, sni, wp.version) {
			res.WeakProtocols = append(res.WeakProtocols, wp.label)
		}
	}

	cert := fetchCertificate(host, port, sni)
	if cert != nil {
		info := parseCertInfo(cert)
		res.CertInfo = &info
		if info.IsExpired {
			res.Vulnerabilities = append(res.Vulnerabilities, "CERT_EXPIRED")
		}
		if info.KeySize < defaultKeySize {
			res.Vulnerabilities = append(res.Vulnerabilities, "WEAK_KEY_SIZE")
		}
	}

	return res
}

func handshakeAt(host string, port int, sni string, version uint16) bool {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, handshakeTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         sni,
		InsecureSkipVerify: true,
		MinVersion:         version,
		MaxVersion:         version,
	})
	defer tlsConn.Close()

	return tlsConn.Handshake() == nil
}

func fetchCertificate(host string, port int, sni string) *x509.Certificate {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, handshakeTimeout)
	if err != nil {
		return nil
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         sni,
		InsecureSkipVerify: true,
	})
	defer tlsConn.Close()

	if err := tlsConn.Handshake(); err != nil {
		return nil
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil
	}
	return certs[0]
}

func parseCertInfo(cert *x509.Certificate) CertInfo {
	return CertInfo{
		Subject:   cert.Subject.String(), // RFC4514 via pkix.Name.String()
		Expiry:    cert.NotAfter.Format("2006-01-02"),
		KeySize:   keySize(cert),
		IsExpired: time.Now().UTC().After(cert.NotAfter),
	}
}

func keySize(cert *x509.Certificate) int {
	if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
		return pub.N.BitLen()
	}
	return defaultKeySize
}

// VerifyVhostTLS is the TLS half of the verify_vhost utility (spec.md
// §4.C): complete a handshake with SNI=vhost and check the peer cert's
// SAN (DNS wildcards expanded to "one-or-more label chars", matched
// case-insensitively) or, absent a SAN list, its CN.
func VerifyVhostTLS(host string, port int, vhost string) bool {
	cert := fetchCertificate(host, port, vhost)
	if cert == nil {
		return false
	}

	if len(cert.DNSNames) > 0 {
		for _, san := range cert.DNSNames {
			if sanMatches(san, vhost) {
				return true
			}
		}
		return false
	}

	return strings.EqualFold(cert.Subject.CommonName, vhost)
}

func sanMatches(pattern, vhost string) bool {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `[^.]+`)
	re, err := regexp.Compile("(?i)^" + escaped + "$")
	if err != nil {
		return false
	}
	return re.MatchString(vhost)
}
