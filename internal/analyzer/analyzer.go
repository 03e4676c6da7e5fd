// Package analyzer implements the rule-driven decision table that turns
// raw per-protocol probe output into normalized Findings, plus the score
// computation (spec.md §4.F). It is deterministic and pure aside from the
// Rule Catalog lookup — no I/O of its own.
package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vigilcore/netaudit/internal/auditmodel"
	"github.com/vigilcore/netaudit/internal/rules"
)

// Analyzer converts probe records into Findings using a Rule Catalog.
type Analyzer struct {
	catalog *rules.Catalog
}

// New creates an Analyzer backed by catalog (nil is fine: every lookup
// then degrades to the generic-check default).
func New(catalog *rules.Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// AnalyzeService runs the decision table in spec.md §4.F against one
// protocol/port/banner/extra combination and returns zero or more
// Findings. Rules apply in order; an empty result from any branch adds
// nothing. The protocol-specific fallback (§4.F rule 5) fires iff no
// finding was produced by rules 1-4 — see TestFallbackExclusivity.
func (a *Analyzer) AnalyzeService(protocol string, port int, banner string, extra Extra) []auditmodel.Finding {
	var findings []auditmodel.Finding

	// Rule 1: SSH weak credentials — always emitted when present, takes
	// priority over everything else for this protocol/port.
	if protocol == "SSH" && extra.SSH != nil && len(extra.SSH.WeakCreds) > 0 {
		cred := extra.SSH.WeakCreds[0]
		rule := a.catalog.Get(rules.KeySSHWeakPass)
		findings = append(findings, a.format(rule, auditmodel.Finding{
			ID:          fmt.Sprintf("SSH-PWD-%d", port),
			Protocol:    protocol,
			CheckItem:   "系统权限已失陷 (SSH 弱口令)",
			RiskLevel:   auditmodel.RiskHigh.Localized(),
			Description: fmt.Sprintf("检测到可用的 SSH 弱口令凭据: %s / %s", cred.User, cred.Pass),
			MLPSClause:  "G3-安全计算环境-身份鉴别",
			Metadata:    map[string]interface{}{"is_compromised": true},
		}))
	}

	// Rule 2: HTTPS TLS findings.
	if protocol == "HTTPS" && extra.TLS != nil {
		tr := extra.TLS.TLSResults
		if len(tr.WeakProtocols) > 0 {
			rule := a.catalog.Get(rules.KeyTLSOldProto)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("TLS-PROTO-%d", port),
				Protocol:    protocol,
				DetailValue: "支持不安全协议: " + strings.Join(tr.WeakProtocols, ", "),
			}))
		}
		if tr.CertInfo != nil && tr.CertInfo.IsExpired {
			findings = append(findings, auditmodel.Finding{
				ID:          fmt.Sprintf("TLS-CERT-EXP-%d", port),
				Protocol:    protocol,
				CheckItem:   "数字证书已过期",
				RiskLevel:   auditmodel.RiskHigh.Localized(),
				Description: "数字证书已过期",
				DetailValue: "过期时间: " + tr.CertInfo.Expiry,
				Suggestion:  "请核查此服务的必要性。",
				MLPSClause:  "G3-安全通信网络",
			})
		}
		if tr.CertInfo != nil && tr.CertInfo.KeySize < 2048 {
			rule := a.catalog.Get(rules.KeyTLSWeakCert)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("TLS-CERT-SIZE-%d", port),
				Protocol:    protocol,
				DetailValue: "当前 RSA 密钥长度: " + strconv.Itoa(tr.CertInfo.KeySize) + " bit",
			}))
		}
	}

	// Rule 3: HTTP/HTTPS web findings.
	if (protocol == "HTTP" || protocol == "HTTPS") && extra.Web != nil {
		ds := extra.Web.WebResults.DeepScan
		if len(ds.ExposedPaths) > 0 {
			parts := make([]string, len(ds.ExposedPaths))
			for i, p := range ds.ExposedPaths {
				parts[i] = fmt.Sprintf("%s (HTTP %d)", p.Path, p.Status)
			}
			rule := a.catalog.Get(rules.KeyWebSensitiveExpose)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("WEB-EXPOSED-%d", port),
				Protocol:    protocol,
				DetailValue: "发现敏感暴露路径: " + strings.Join(parts, ", "),
			}))
		}
		if len(ds.MissingHeaders) > 0 {
			rule := a.catalog.Get(rules.KeyWebMissingHeaders)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("WEB-HEADERS-%d", port),
				Protocol:    protocol,
				DetailValue: "缺失安全响应头: " + strings.Join(ds.MissingHeaders, ", "),
			}))
		}
		if containsAnyFold(banner, "nginx", "apache", "iis") {
			rule := a.catalog.Get(rules.KeyHTTPBannerLeak)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("WEB-BANNER-%d", port),
				Protocol:    protocol,
				DetailValue: banner,
			}))
		}
	}

	// Rule 4: DNS zone transfer.
	if protocol == "DNS" && extra.DNS != nil && extra.DNS.DNSResults.Vulnerable {
		rule := a.catalog.Get(rules.KeyDNSZoneTransfer)
		findings = append(findings, a.format(rule, auditmodel.Finding{
			ID:          fmt.Sprintf("DNS-AXFR-%d", port),
			Protocol:    protocol,
			DetailValue: extra.DNS.DNSResults.Detail,
		}))
	}

	// Rule 5: fallback, fires iff nothing above produced a finding.
	if len(findings) == 0 {
		if protocol == "SSH" && strings.Contains(strings.ToLower(banner), "openssh") {
			rule := a.catalog.Get(rules.KeySSHBannerLeak)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("SSH-BANNER-%d", port),
				Protocol:    protocol,
				DetailValue: banner,
			}))
		} else {
			rule := a.catalog.Get(rules.KeyTCPPortOpen)
			findings = append(findings, a.format(rule, auditmodel.Finding{
				ID:          fmt.Sprintf("PORT-%d", port),
				Protocol:    protocol,
				DetailValue: fmt.Sprintf("开放端口: %d", port),
			}))
		}
	}

	return findings
}

// format fills a Finding's name/description/suggestion/clause/risk-level
// fields from a Rule, matching _format_finding's default-fallback logic
// (spec.md §4.F). Fields the caller already set (CheckItem, RiskLevel,
// etc.) are preserved.
func (a *Analyzer) format(rule auditmodel.Rule, f auditmodel.Finding) auditmodel.Finding {
	if f.CheckItem == "" {
		f.CheckItem = rule.Name
	}
	if f.Description == "" {
		f.Description = rule.Description
	}
	if f.Suggestion == "" {
		f.Suggestion = rule.Suggestion
	}
	if f.MLPSClause == "" {
		f.MLPSClause = rule.ClauseID
	}
	if f.RiskLevel == "" {
		f.RiskLevel = rule.RiskLevel.Localized()
	}
	return f
}

func containsAnyFold(haystack string, needles ...string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// CalculateScore starts at 100 and subtracts per-finding penalties: 25 for
// 高危, 10 for 中危, 2 for 低危; 安全 findings are ignored. Clamped at 0.
func CalculateScore(defects []auditmodel.Finding) int {
	score := 100
	for _, f := range defects {
		switch f.RiskLevel {
		case "高危":
			score -= 25
		case "中危":
			score -= 10
		case "低危":
			score -= 2
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
