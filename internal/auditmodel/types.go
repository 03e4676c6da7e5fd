// Package auditmodel holds the wire and domain types shared across the
// scan orchestration pipeline: requests, rules, findings, and reports.
package auditmodel

import "time"

// RiskLevel is the English severity a Rule carries.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
	RiskInfo   RiskLevel = "Info"
)

// Localized returns the Chinese label a Finding displays for a RiskLevel.
// Unrecognized levels degrade to 低危 (Low), matching the risk-map totality
// property: every rule maps to a localized level, no rule is ever dropped
// just because its risk_level field is missing or unknown.
func (r RiskLevel) Localized() string {
	switch r {
	case RiskHigh:
		return "高危"
	case RiskMedium:
		return "中危"
	case RiskInfo:
		return "安全"
	default:
		return "低危"
	}
}

// Rule is an immutable compliance-rule record, keyed by rule key.
type Rule struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion"`
	ClauseID    string    `json:"clause_id"`
}

// Finding is a single normalized security observation produced by the
// Analyzer. ID is unique within a report and encodes rule-class + port.
type Finding struct {
	ID           string                 `json:"id"`
	Protocol     string                 `json:"protocol"`
	CheckItem    string                 `json:"check_item"`
	RiskLevel    string                 `json:"risk_level"` // localized: 高危/中危/低危/安全
	Description  string                 `json:"description"`
	DetailValue  string                 `json:"detail_value"`
	Suggestion   string                 `json:"suggestion"`
	MLPSClause   string                 `json:"mlps_clause"`
	Domain       string                 `json:"domain,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// PortStatusRow records that a port was found open and which protocol
// role it was probed under.
type PortStatusRow struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"` // SSH, WEB, DNS, TCP
	Status   string `json:"status"`   // always "OPEN"
	Detail   string `json:"detail"`
}

// Summary tallies non-安全 findings by localized risk level.
type Summary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Report is the final assembled scan output.
type Report struct {
	ID           int64           `json:"id,omitempty"`
	Target       string          `json:"target"`
	Score        int             `json:"score"`
	Timestamp    string          `json:"timestamp"` // local time, "YYYY-MM-DD HH:MM:SS"
	Defects      []Finding       `json:"defects"`
	PortStatuses []PortStatusRow `json:"port_statuses"`
	Summary      Summary         `json:"summary"`
}

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Progress is a task's current percent-complete and human-readable log line.
type Progress struct {
	Percent int    `json:"percent"`
	Log     string `json:"log"`
}

// Task is the process-wide tracked state of one in-flight or finished scan.
// Owned exclusively by its worker while running; the Task Store exposes a
// read-only, internally-consistent snapshot to queriers.
type Task struct {
	Status   TaskStatus `json:"status"`
	Progress Progress   `json:"progress"`
	Result   *Report    `json:"result,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Snapshot returns a deep-enough copy of the task safe to hand to a reader
// without risking a later in-place mutation being observed mid-read.
func (t Task) Snapshot() Task {
	cp := t
	if t.Result != nil {
		r := *t.Result
		r.Defects = append([]Finding(nil), t.Result.Defects...)
		r.PortStatuses = append([]PortStatusRow(nil), t.Result.PortStatuses...)
		cp.Result = &r
	}
	return cp
}

// PortsConfig maps protocol roles to the port-range expression that selects
// which active ports are probed under that role.
type PortsConfig struct {
	SSH   string `json:"ssh"`
	HTTP  string `json:"http"`
	HTTPS string `json:"https"`
	DNS   string `json:"dns"`
}

// DefaultPortsConfig returns the role->port defaults from spec.md §6.
func DefaultPortsConfig() PortsConfig {
	return PortsConfig{SSH: "22", HTTP: "80", HTTPS: "443", DNS: "53"}
}

// Dictionaries holds newline-separated username/password wordlists.
type Dictionaries struct {
	Usernames string `json:"usernames"`
	Passwords string `json:"passwords"`
}

// ScanMode selects probe depth.
type ScanMode string

const (
	ModeQuick ScanMode = "quick"
	ModeDeep  ScanMode = "deep"
)

// ScanRequest is the input to a single audit run.
type ScanRequest struct {
	Target       string       `json:"target"`
	Domains      []string     `json:"domains,omitempty"`
	PortRange    string       `json:"port_range"`
	PortsConfig  PortsConfig  `json:"ports_config"`
	Dictionaries Dictionaries `json:"dictionaries"`
	Mode         ScanMode     `json:"mode"`
	EnableBrute  bool         `json:"enable_brute"`

	// ProbeAllVhosts is accepted on the request but not read by the
	// orchestrator: every supplied domain is probed whatever its value, and
	// no verify_vhost pre-filtering is done. Its zero value is false.
	ProbeAllVhosts bool `json:"probe_all_vhosts"`
}

// BruteForceEnabled reports whether SSH credential auditing should run for
// this request: deep mode AND the caller opted in.
func (r ScanRequest) BruteForceEnabled() bool {
	return r.Mode == ModeDeep && r.EnableBrute
}

// NowTimestamp formats the current local time per the Report.Timestamp
// contract ("YYYY-MM-DD HH:MM:SS").
func NowTimestamp() string {
	return time.Now().Local().Format("2006-01-02 15:04:05")
}

// Persister is the external collaborator that stores completed reports.
// Implementations (e.g. the SQLite-backed history store) live outside this
// module; the core only depends on this interface.
type Persister interface {
	Save(report *Report) (int64, error)
	List() ([]Report, error)
	Delete(id int64) error
	Purge() error
}
