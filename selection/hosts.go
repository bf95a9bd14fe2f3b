// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
)

// HostMatcher matches page hosts against a disallowed list.
type HostMatcher struct {
	domains  []string
	patterns []glob.Glob
}

// NewHostMatcher compiles list. Invalid glob entries are skipped.
func NewHostMatcher(list []string) *HostMatcher {
	m := &HostMatcher{}
	for _, entry := range list {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.ContainsAny(entry, "*?[{") {
			g, err := glob.Compile(entry, '.')
			if err != nil {
				slog.Warn("invalid disallowed pattern", "pattern", entry, "error", err)
				continue
			}
			m.patterns = append(m.patterns, g)
			continue
		}
		m.domains = append(m.domains, entry)
	}
	return m
}

// Match reports whether host is disallowed.
func (m *HostMatcher) Match(host string) bool {
	if m == nil {
		return false
	}
	host = strings.ToLower(host)
	for _, d := range m.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, g := range m.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}
