package analyzer

import (
	"github.com/vigilcore/netaudit/internal/dnsprobe"
	"github.com/vigilcore/netaudit/internal/sshprobe"
	"github.com/vigilcore/netaudit/internal/tlsprobe"
	"github.com/vigilcore/netaudit/internal/webprobe"
)

// Extra is a tagged union of the per-protocol probe output the Analyzer
// dispatches on (spec.md §9 "Dynamic dict-typed extra_data"). Only the
// fields relevant to the protocol passed to AnalyzeService are read; an
// HTTPS call carries both Web and TLS.
type Extra struct {
	SSH *SSHExtra
	TLS *TLSExtra
	Web *WebExtra
	DNS *DNSExtra
}

// SSHExtra carries the outcome of an optional credential brute-force.
type SSHExtra struct {
	WeakCreds []sshprobe.Credential
}

// TLSExtra carries the TLS prober's result.
type TLSExtra struct {
	TLSResults tlsprobe.Result
}

// WebExtra carries the web prober's deep-scan result.
type WebExtra struct {
	WebResults webprobe.Result
}

// DNSExtra carries the DNS prober's zone-transfer result, plus the domain
// it was checked against. The Analyzer does not read Domain: the finding
// text comes from DNSResults.Detail, and the orchestrator tags findings
// with their domain itself.
type DNSExtra struct {
	Domain     string
	DNSResults dnsprobe.Result
}
