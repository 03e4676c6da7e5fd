// Package config loads netauditd's daemon configuration. It is grounded
// on the teacher's internal/daemon.Config / LoadConfig: a YAML file read
// via gopkg.in/yaml.v3, merged over defaults, with environment-variable
// overrides and validation of required fields.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vigilcore/netaudit/internal/auditmodel"
)

// Config holds netauditd's startup configuration: the ambient paths the
// daemon needs, plus default scan parameters that are loaded but not
// applied to submitted scans.
type Config struct {
	// RuleFile is the JSON rule catalog path (spec.md §4.H).
	RuleFile string `yaml:"rule_file"`

	// ListenAddr is the address the status/submission HTTP API binds to.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is carried for parity with the teacher's Config even
	// though this module's plain log.Printf output doesn't filter by
	// level; kept so a future structured logger has somewhere to read it
	// from without another config-schema change.
	LogLevel string `yaml:"log_level"`

	// DefaultPorts is read from the config file but not applied to scans:
	// roles a request leaves blank fall back to
	// auditmodel.DefaultPortsConfig regardless of this value.
	DefaultPorts auditmodel.PortsConfig `yaml:"default_ports"`

	// DefaultPortRange is read from the config file but not applied to
	// scans: the API fills an empty port_range with a fixed "1-1024"
	// regardless of this value.
	DefaultPortRange string `yaml:"default_port_range"`
}

// DefaultConfig returns a Config with sane defaults, matching the
// teacher's DefaultConfig pattern.
func DefaultConfig() Config {
	return Config{
		RuleFile:         "/etc/netauditd/rules.json",
		ListenAddr:       "0.0.0.0:8099",
		LogLevel:         "INFO",
		DefaultPorts:     auditmodel.DefaultPortsConfig(),
		DefaultPortRange: "1-1024",
	}
}

// Load reads a YAML config file, merging it over DefaultConfig, then
// applies environment-variable overrides the way the teacher's
// LoadConfig does.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("NETAUDITD_RULE_FILE"); v != "" {
		cfg.RuleFile = v
	}
	if v := os.Getenv("NETAUDITD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("NETAUDITD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToUpper(v)
	}

	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen_addr is required")
	}

	return &cfg, nil
}
