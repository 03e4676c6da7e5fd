// Package sshprobe implements the SSH banner grab and optional credential
// brute-force audit described in spec.md §4.B. It is grounded on the
// teacher's internal/sshexec executor — both build an *ssh.ClientConfig per
// attempt and classify errors the same way — but this package never runs a
// command on the target; it only fingerprints and, optionally, tries to log
// in.
package sshprobe

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	bannerReadTimeout = 3 * time.Second
	bannerBufSize     = 1024
)

// GenericBanner is returned when the target accepted a connection but sent
// no (or only whitespace) banner bytes.
const GenericBanner = "SSH-2.0-Generic"

// RefusedBanner is returned when the connection itself could not be made.
const RefusedBanner = "SSH Connection Refused"

// BannerGrab opens a raw TCP connection and reads up to 1 KiB looking for
// the SSH identification string. It never returns an error: every failure
// mode degrades to RefusedBanner or GenericBanner.
func BannerGrab(host string, port int) string {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, bannerReadTimeout)
	if err != nil {
		return RefusedBanner
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(bannerReadTimeout))
	buf := make([]byte, bannerBufSize)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		return RefusedBanner
	}

	banner := strings.TrimSpace(strings.ToValidUTF8(string(buf[:n]), ""))
	if banner == "" {
		return GenericBanner
	}
	return banner
}
