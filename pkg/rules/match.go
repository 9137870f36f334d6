package rules

import (
	"path"
	"regexp"
	"strings"
	"sync"
)

// Match reports whether a compiled ruleset mirrors the given path. The path
// is slash-separated and relative to the submodule root.
//
// Disposition is decided by the matching rule with the longest literal
// prefix, with earlier rules winning ties. This lets a more specific
// exclusion carve a subtree out of a broader inclusion (`lib/secret/***`
// under `lib/***`) while the catch-all exclusion, whose literal prefix is
// empty, only ever applies to otherwise unmatched paths. Paths matched by no
// rule are not mirrored.
func Match(compiled []Rule, p string) bool {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	if p == "." || p == "" {
		// The submodule root itself is always a mirroring source.
		return true
	}

	winner := CatchAll
	winnerPrefix := -1
	for _, rule := range compiled {
		if !patternMatches(rule.Pattern, p) {
			continue
		}
		if prefix := len(literalPrefix(rule.Pattern)); prefix > winnerPrefix {
			winner = rule
			winnerPrefix = prefix
		}
	}

	if winnerPrefix == -1 {
		return false
	}
	return winner.Kind == Include
}

// patternCache avoids recompiling the same pattern for every path checked
// during a run.
var (
	patternCacheMu sync.Mutex
	patternCache   = map[string]*regexp.Regexp{}
)

func patternMatches(pattern, p string) bool {
	patternCacheMu.Lock()
	re, ok := patternCache[pattern]
	if !ok {
		re = compilePattern(pattern)
		patternCache[pattern] = re
	}
	patternCacheMu.Unlock()
	return re.MatchString(p)
}

// compilePattern translates a mirroring glob into an anchored regexp.
// `dir/***` matches the directory itself and everything beneath it, `**`
// crosses path separators, and `*`/`?` stay within one component.
func compilePattern(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("^")

	rest := pattern
	if strings.HasSuffix(rest, "/***") {
		base := strings.TrimSuffix(rest, "/***")
		sb.WriteString(globToRegexp(base))
		sb.WriteString("(/.*)?$")
		return regexp.MustCompile(sb.String())
	}

	sb.WriteString(globToRegexp(rest))
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

func globToRegexp(glob string) string {
	var sb strings.Builder
	for i := 0; i < len(glob); i++ {
		switch {
		case strings.HasPrefix(glob[i:], "***"):
			sb.WriteString(".*")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			sb.WriteString(".*")
			i++
		case glob[i] == '*':
			sb.WriteString("[^/]*")
		case glob[i] == '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(glob[i])))
		}
	}
	return sb.String()
}

// literalPrefix returns the leading part of a pattern before its first
// wildcard. It's the measure of how specific the pattern is.
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, "*?["); i != -1 {
		return pattern[:i]
	}
	return pattern
}
