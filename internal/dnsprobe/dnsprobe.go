// Package dnsprobe implements the AXFR zone-transfer probe described in
// spec.md §4.E. It uses github.com/miekg/dns, grounded on
// cuemby-warren/pkg/dns/resolver.go's dns.Msg/dns.Client idiom — the only
// first-party DNS library user in the example pack — extended here with
// dns.Transfer for the actual zone-transfer exchange.
package dnsprobe

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

const axfrTimeout = 5 * time.Second

// Result is the outcome of one zone-transfer attempt.
type Result struct {
	Vulnerable   bool     `json:"vulnerable"`
	RecordsCount int      `json:"records_count,omitempty"`
	Detail       string   `json:"detail"`
	Records      []string `json:"records,omitempty"`
}

// CheckZoneTransfer attempts an AXFR against nameserver:port for domain.
// Any error, or an empty transfer, yields Vulnerable: false — this probe
// never raises to its caller.
func CheckZoneTransfer(domain, nameserver string, port int) Result {
	if port == 0 {
		port = 53
	}
	addr := net.JoinHostPort(nameserver, strconv.Itoa(port))

	msg := new(dns.Msg)
	msg.SetAxfr(dns.Fqdn(domain))

	tx := &dns.Transfer{
		DialTimeout:  axfrTimeout,
		ReadTimeout:  axfrTimeout,
		WriteTimeout: axfrTimeout,
	}

	envelopes, err := tx.In(msg, addr)
	if err != nil {
		return Result{Vulnerable: false, Detail: err.Error()}
	}

	var names []string
	total := 0
	for env := range envelopes {
		if env.Error != nil {
			return Result{Vulnerable: false, Detail: env.Error.Error()}
		}
		for _, rr := range env.RR {
			total++
			if len(names) < 10 {
				names = append(names, rr.Header().Name)
			}
		}
	}

	if total == 0 {
		return Result{Vulnerable: false, Detail: "Connection Refused or No Data"}
	}

	return Result{
		Vulnerable:   true,
		RecordsCount: total,
		Detail:       fmt.Sprintf("探测到敏感域: %s。成功获取到 %d 条解析记录。", domain, total),
		Records:      names,
	}
}
