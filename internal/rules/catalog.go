// Package rules implements the immutable rule catalog described in
// spec.md §4.H / §6: a rule-key -> Rule record map loaded once from a JSON
// document at startup. It is grounded on the teacher's
// internal/healing.Rule (internal/healing/l1_engine.go), trimmed down from
// that package's full condition/action rule-matching engine to the static
// lookup table this spec calls for — the Analyzer, not the catalog, owns
// the decision logic here.
package rules

import (
	"encoding/json"
	"log"
	"os"

	"github.com/vigilcore/netaudit/internal/auditmodel"
)

// Recognized rule keys, per spec.md §6.
const (
	KeySSHWeakPass         = "SSH_WEAK_PASS"
	KeySSHBannerLeak       = "SSH_BANNER_LEAK"
	KeyTLSOldProto         = "TLS_OLD_PROTO"
	KeyTLSWeakCert         = "TLS_WEAK_CERT"
	KeyWebSensitiveExpose  = "WEB_SENSITIVE_EXPOSURE"
	KeyWebMissingHeaders   = "WEB_MISSING_HEADERS"
	KeyHTTPBannerLeak      = "HTTP_BANNER_LEAK"
	KeyDNSZoneTransfer     = "DNS_ZONE_TRANSFER"
	KeyTCPPortOpen         = "TCP_PORT_OPEN"
)

// defaultRule is substituted whenever a lookup misses: a generic-check
// placeholder per spec.md §3 ("missing keys degrade to a generic-check
// default") and §4.F's _format_finding defaults.
var defaultRule = auditmodel.Rule{
	Name:        "通用安全检查",
	RiskLevel:   auditmodel.RiskLow,
	Description: "检测到潜在安全风险。",
	Suggestion:  "请核查此服务的必要性。",
	ClauseID:    "G3-访问控制",
}

// Catalog is an immutable, read-only-after-load rule-key -> Rule map.
type Catalog struct {
	rules map[string]auditmodel.Rule
}

// Empty returns a Catalog with no rules loaded — every lookup falls back
// to defaultRule. Used when the rule file is missing or unparseable.
func Empty() *Catalog {
	return &Catalog{rules: map[string]auditmodel.Rule{}}
}

// Load reads a JSON document (object of rule_key -> {name, risk_level,
// description, suggestion, clause_id}) from path and builds a Catalog. If
// the file is missing or unparseable, Load logs and returns an Empty
// catalog rather than failing the caller — rule-catalog load errors are
// never fatal per spec.md §4.H.
func Load(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[rules] rule file %s not found, catalog empty: %v", path, err)
		return Empty()
	}

	var raw map[string]auditmodel.Rule
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[rules] rule file %s unparseable, catalog empty: %v", path, err)
		return Empty()
	}

	for key, r := range raw {
		r.Key = key
		raw[key] = r
	}

	log.Printf("[rules] loaded %d rules from %s", len(raw), path)
	return &Catalog{rules: raw}
}

// Get returns the Rule for key, or defaultRule (with Key set) if absent.
func (c *Catalog) Get(key string) auditmodel.Rule {
	if c == nil {
		r := defaultRule
		r.Key = key
		return r
	}
	if r, ok := c.rules[key]; ok {
		return r
	}
	r := defaultRule
	r.Key = key
	return r
}

// Len reports how many rules are loaded.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}
