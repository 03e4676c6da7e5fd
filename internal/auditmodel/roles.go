package auditmodel

// RolePorts resolves a PortsConfig into per-role port sets, applying the
// defaults from spec.md §6 for any role left blank.
type RolePorts struct {
	SSH   []int
	HTTP  []int
	HTTPS []int
	DNS   []int
}

// ResolveRolePorts parses each role's port-range expression, falling back
// to the documented default when a role's expression is empty.
func ResolveRolePorts(cfg PortsConfig) RolePorts {
	def := DefaultPortsConfig()
	pick := func(expr, fallback string) []int {
		if expr == "" {
			expr = fallback
		}
		return ParsePortRange(expr)
	}
	return RolePorts{
		SSH:   pick(cfg.SSH, def.SSH),
		HTTP:  pick(cfg.HTTP, def.HTTP),
		HTTPS: pick(cfg.HTTPS, def.HTTPS),
		DNS:   pick(cfg.DNS, def.DNS),
	}
}
