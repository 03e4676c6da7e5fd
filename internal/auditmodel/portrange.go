package auditmodel

import (
	"sort"
	"strconv"
	"strings"
)

const (
	minPort         = 1
	maxPort         = 65535
	maxPortsPerToken = 1000 // inclusive range [s,e] capped at s+999
)

// ParsePortRange parses an expression like "22,80-100" into a sorted,
// de-duplicated list of ports. Tokens are separated by half- or full-width
// comma ("," or "，"). Each token is either a bare integer or an "s-e"
// inclusive range, capped at 1000 ports. Malformed tokens are silently
// skipped (spec.md §7: configuration errors are skipped token by token).
func ParsePortRange(expr string) []int {
	seen := make(map[int]bool)
	var out []int

	add := func(p int) {
		if p < minPort || p > maxPort {
			return
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	expr = strings.ReplaceAll(expr, "，", ",")
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if dash := strings.IndexByte(tok, '-'); dash > 0 {
			sStr := strings.TrimSpace(tok[:dash])
			eStr := strings.TrimSpace(tok[dash+1:])
			s, errS := strconv.Atoi(sStr)
			e, errE := strconv.Atoi(eStr)
			if errS != nil || errE != nil || s > e {
				continue
			}
			if e > s+maxPortsPerToken-1 {
				e = s + maxPortsPerToken - 1
			}
			for p := s; p <= e; p++ {
				add(p)
			}
			continue
		}

		p, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		add(p)
	}

	sort.Ints(out)
	return out
}

// ContainsPort reports whether port is present in a parsed list.
func ContainsPort(ports []int, port int) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}
