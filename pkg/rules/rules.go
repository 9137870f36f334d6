package rules

import (
	"fmt"
	"sort"

	"github.com/vendroo/repomirror/pkg/errors"
)

// Kind says whether a rule selects paths for mirroring or shields them from
// it.
type Kind string

const (
	// Include marks paths that should be mirrored.
	Include Kind = "include"

	// Exclude marks paths that should not be mirrored.
	Exclude Kind = "exclude"
)

// Rule is one ordered entry in a submodule's mirroring policy. Patterns are
// slash-separated globs relative to the submodule root, using the mirroring
// tool's wildcard syntax (`*` within a path component, `**` across
// components, and `dir/***` for a directory and everything under it).
type Rule struct {
	Pattern string `json:"pattern"`
	Kind    Kind   `json:"kind"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Pattern)
}

// CatchAll is the implicit trailing rule appended by Compile so that paths
// outside the explicit includes are never mirrored.
var CatchAll = Rule{Pattern: "*", Kind: Exclude}

// Compile validates an ordered ruleset and produces the canonical rule list
// handed to the mirroring tool. The input order is preserved, and CatchAll is
// appended unless it's already the final rule.
//
// An empty ruleset is legal and compiles to just the catch-all exclusion: a
// submodule with no rules mirrors nothing until paths are explicitly opted
// in. A non-empty ruleset without a single Include is rejected, since nothing
// could ever match it.
func Compile(ruleset []Rule) ([]Rule, error) {
	hasInclude := false
	for i, rule := range ruleset {
		if rule.Pattern == "" {
			return nil, errors.InvalidRule{Index: i, Reason: "empty pattern"}
		}

		switch rule.Kind {
		case Include:
			hasInclude = true
		case Exclude:
		default:
			return nil, errors.InvalidRule{
				Index:  i,
				Reason: fmt.Sprintf("unknown kind %q", rule.Kind),
			}
		}
	}

	if len(ruleset) != 0 && !hasInclude {
		return nil, errors.VacuousRuleSet{}
	}

	compiled := make([]Rule, 0, len(ruleset)+1)
	compiled = append(compiled, ruleset...)
	if len(compiled) == 0 || compiled[len(compiled)-1] != CatchAll {
		compiled = append(compiled, CatchAll)
	}
	return compiled, nil
}

// RsyncArgs translates a compiled rule list into rsync filter arguments.
// rsync resolves filters first-match-wins in argument order, so rules are
// emitted most-specific first (descending literal-prefix length, written
// order breaking ties) to agree with Match. The catch-all exclusion has an
// empty literal prefix and always sorts last.
func RsyncArgs(compiled []Rule) []string {
	ordered := append([]Rule{}, compiled...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(literalPrefix(ordered[i].Pattern)) > len(literalPrefix(ordered[j].Pattern))
	})

	args := make([]string, 0, len(ordered))
	for _, rule := range ordered {
		switch rule.Kind {
		case Include:
			args = append(args, fmt.Sprintf("--include=%s", rule.Pattern))
		case Exclude:
			args = append(args, fmt.Sprintf("--exclude=%s", rule.Pattern))
		}
	}
	return args
}
