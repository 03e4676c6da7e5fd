// Package orchestrator implements the Task Orchestrator described in
// spec.md §4.G: it schedules the liveness sweep, dispatches per-protocol
// probers by role, runs the Analyzer over every probe record, and writes
// progress/result back to the Task Store. It is grounded on the teacher's
// internal/orders/processor.go handler-registration/Process/complete
// pattern, adapted from "order type -> handler" dispatch to "active port +
// role set -> prober invocation", with the teacher's CompletionCallback
// replaced by a direct Task Store write-back.
package orchestrator

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/vigilcore/netaudit/internal/analyzer"
	"github.com/vigilcore/netaudit/internal/auditmodel"
	"github.com/vigilcore/netaudit/internal/dnsprobe"
	"github.com/vigilcore/netaudit/internal/portscan"
	"github.com/vigilcore/netaudit/internal/rules"
	"github.com/vigilcore/netaudit/internal/sshprobe"
	"github.com/vigilcore/netaudit/internal/taskstore"
	"github.com/vigilcore/netaudit/internal/tlsprobe"
	"github.com/vigilcore/netaudit/internal/webprobe"
)

const (
	defaultUsername = "admin"
	defaultPassword = "123456"
)

// Orchestrator runs scans end to end and writes progress/results to a
// Store. Stateless aside from its Store and Catalog references, so one
// instance can be shared across concurrently running scans.
type Orchestrator struct {
	store   *taskstore.Store
	catalog *rules.Catalog
	persist auditmodel.Persister
	az      *analyzer.Analyzer
}

// New builds an Orchestrator wired to the given Task Store, Rule Catalog,
// and report persister.
func New(store *taskstore.Store, catalog *rules.Catalog, persist auditmodel.Persister) *Orchestrator {
	return &Orchestrator{
		store:   store,
		catalog: catalog,
		persist: persist,
		az:      analyzer.New(catalog),
	}
}

// RunScan executes one audit for taskID against req. Intended to be run on
// its own goroutine by the caller (mirroring the teacher's background
// `go func(){ ... }()` pattern) — RunScan itself blocks until the scan is
// complete or fails. Probers swallow their own internal errors; a panic
// anywhere inside the scan is recovered here and marks the task failed.
func (o *Orchestrator) RunScan(taskID string, req auditmodel.ScanRequest) {
	defer func() {
		if r := recover(); r != nil {
			o.store.Fail(taskID, fmt.Errorf("scan panicked: %v", r))
			log.Printf("[orchestrator] task %s panicked: %v", taskID, r)
		}
	}()

	o.store.UpdateProgress(taskID, 10, "正在执行存活节点探测...")

	roles := auditmodel.ResolveRolePorts(req.PortsConfig)
	candidatePorts := auditmodel.ParsePortRange(req.PortRange)
	activePorts := portscan.Sweep(req.Target, candidatePorts)

	var defects []auditmodel.Finding
	var portStatuses []auditmodel.PortStatusRow

	n := len(activePorts)
	for k, port := range activePorts {
		percent := 20 + int(math.Floor(float64(k)/float64(max(n, 1))*60))
		o.store.UpdateProgress(taskID, percent, fmt.Sprintf("正在审计端口 %d (%d/%d)...", port, k+1, n))

		matchedRole := false

		if auditmodel.ContainsPort(roles.SSH, port) {
			matchedRole = true
			f, ps := o.auditSSH(taskID, req, port, percent)
			defects = append(defects, f...)
			portStatuses = append(portStatuses, ps)
		}

		isHTTP := auditmodel.ContainsPort(roles.HTTP, port)
		isHTTPS := auditmodel.ContainsPort(roles.HTTPS, port)
		if isHTTP || isHTTPS {
			matchedRole = true
			f, ps := o.auditWeb(req, port, isHTTPS)
			defects = append(defects, f...)
			portStatuses = append(portStatuses, ps)
		}

		if auditmodel.ContainsPort(roles.DNS, port) {
			matchedRole = true
			f, ps := o.auditDNS(req, port)
			defects = append(defects, f...)
			portStatuses = append(portStatuses, ps)
		}

		if !matchedRole {
			defects = append(defects, auditmodel.Finding{
				ID:          fmt.Sprintf("PORT-%d", port),
				Protocol:    "TCP",
				RiskLevel:   auditmodel.RiskInfo.Localized(),
				CheckItem:   "通用端口开放",
				Description: fmt.Sprintf("检测到非预设业务端口 %d 开放。", port),
				DetailValue: fmt.Sprintf("Port: %d", port),
				Suggestion:  "请核查此端口是否为业务必需。",
				MLPSClause:  "G3-访问控制",
			})
			portStatuses = append(portStatuses, auditmodel.PortStatusRow{
				Port: port, Protocol: "TCP", Status: "OPEN", Detail: "Active",
			})
		}
	}

	o.store.UpdateProgress(taskID, 95, "正在执行风险建模与评分...")

	score := analyzer.CalculateScore(defects)
	report := &auditmodel.Report{
		Target:       req.Target,
		Score:        score,
		Timestamp:    auditmodel.NowTimestamp(),
		Defects:      defects,
		PortStatuses: portStatuses,
		Summary:      summarize(defects),
	}

	if o.persist != nil {
		id, err := o.persist.Save(report)
		if err != nil {
			o.store.Fail(taskID, err)
			log.Printf("[orchestrator] task %s failed to persist report: %v", taskID, err)
			return
		}
		report.ID = id
	}

	o.store.Complete(taskID, report)
}

// auditSSH performs the banner grab, optional brute-force, and analysis
// for a single SSH-role port.
func (o *Orchestrator) auditSSH(taskID string, req auditmodel.ScanRequest, port int, percent int) ([]auditmodel.Finding, auditmodel.PortStatusRow) {
	banner := sshprobe.BannerGrab(req.Target, port)

	var extra analyzer.Extra
	if req.BruteForceEnabled() {
		usernames := splitDict(req.Dictionaries.Usernames, defaultUsername)
		passwords := splitDict(req.Dictionaries.Passwords, defaultPassword)
		o.store.UpdateProgress(taskID, percent, fmt.Sprintf("正在执行 SSH 弱口令爆破 (测试 %d 组密码)...", len(passwords)))
		creds := sshprobe.BruteForce(req.Target, port, usernames, passwords)
		if len(creds) > 0 {
			extra.SSH = &analyzer.SSHExtra{WeakCreds: creds}
		}
	}

	findings := o.az.AnalyzeService("SSH", port, banner, extra)
	row := auditmodel.PortStatusRow{
		Port: port, Protocol: "SSH", Status: "OPEN",
		Detail: "Banner: " + banner,
	}
	return findings, row
}

// auditWeb performs the HTTP(S) probe, optional TLS probe, and analysis
// for a single web-role port, across every requested domain (or a single
// no-vhost pass if none were supplied).
func (o *Orchestrator) auditWeb(req auditmodel.ScanRequest, port int, isHTTPS bool) ([]auditmodel.Finding, auditmodel.PortStatusRow) {
	protocol := "HTTP"
	if isHTTPS {
		protocol = "HTTPS"
	}

	domains := req.Domains
	if len(domains) == 0 {
		domains = []string{""}
	}

	var findings []auditmodel.Finding
	for _, domain := range domains {
		webResult := webprobe.ScanHTTP(req.Target, port, domain)
		extra := analyzer.Extra{Web: &analyzer.WebExtra{WebResults: webResult}}

		if isHTTPS {
			tlsResult := tlsprobe.CheckTLS(req.Target, port, domain)
			extra.TLS = &analyzer.TLSExtra{TLSResults: tlsResult}
		}

		f := o.az.AnalyzeService(protocol, port, webResult.Banner, extra)
		if domain != "" {
			for i := range f {
				f[i].Domain = domain
			}
		}
		findings = append(findings, f...)
	}

	row := auditmodel.PortStatusRow{Port: port, Protocol: "WEB", Status: "OPEN", Detail: "Web Service Detected"}
	return findings, row
}

// auditDNS runs the AXFR zone-transfer probe for every non-empty domain
// against the given nameserver port, and analyzes (and tags) only the
// vulnerable results, per spec.md §4.G. The PortStatusRow is appended
// unconditionally for every DNS-role-matched port, independent of whether
// any domain actually turned out to be AXFR-vulnerable.
func (o *Orchestrator) auditDNS(req auditmodel.ScanRequest, port int) ([]auditmodel.Finding, auditmodel.PortStatusRow) {
	var findings []auditmodel.Finding

	for _, domain := range req.Domains {
		if domain == "" {
			continue
		}
		result := dnsprobe.CheckZoneTransfer(domain, req.Target, port)
		if !result.Vulnerable {
			continue
		}
		extra := analyzer.Extra{DNS: &analyzer.DNSExtra{Domain: domain, DNSResults: result}}
		f := o.az.AnalyzeService("DNS", port, "", extra)
		for i := range f {
			f[i].Domain = domain
		}
		findings = append(findings, f...)
	}

	row := auditmodel.PortStatusRow{Port: port, Protocol: "DNS", Status: "OPEN", Detail: "DNS Service Active"}
	return findings, row
}

// splitDict splits a newline-separated dictionary into trimmed, non-empty
// lines, falling back to a single-entry default when the dictionary is
// empty (spec.md §4.G: defaults "admin"/"123456" when absent).
func splitDict(raw, fallback string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{fallback}
	}
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}

// summarize tallies non-安全 findings by localized risk level.
func summarize(defects []auditmodel.Finding) auditmodel.Summary {
	var s auditmodel.Summary
	for _, f := range defects {
		switch f.RiskLevel {
		case "高危":
			s.High++
		case "中危":
			s.Medium++
		case "低危":
			s.Low++
		}
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
