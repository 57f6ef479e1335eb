package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wincross-dev/wincross/internal/model"
)

// tokenRe matches a single {name} token. Names follow identifier rules so
// that literal braces in CMake generator expressions and shell snippets
// pass through untouched.
var tokenRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Tokens returns the placeholder names referenced by s, in order of first
// appearance, without duplicates.
func Tokens(s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range tokenRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Resolve expands every known {name} token in s against vars, following
// transitive references until a fixed point is reached. Unknown tokens are
// left as-is; callers that require full resolution use ResolveStrict.
//
// The pass count is bounded by the number of variables plus one: an acyclic
// reference chain can be at most len(vars) deep, so a string that is still
// changing after that many passes must contain a cycle, reported as
// ErrPlaceholderCycle naming the tokens involved.
func Resolve(s string, vars map[string]string) (string, error) {
	if !strings.Contains(s, "{") {
		return s, nil
	}

	current := s
	for pass := 0; pass <= len(vars); pass++ {
		next := expandOnce(current, vars)
		if next == current {
			return current, nil
		}
		current = next
	}

	// Still changing after the bound: some subset of vars references
	// itself. Name the tokens still present for the error message.
	cyclic := knownTokens(current, vars)
	sort.Strings(cyclic)
	return "", fmt.Errorf("%w: {%s} in %q", model.ErrPlaceholderCycle,
		strings.Join(cyclic, "}, {"), s)
}

// ResolveStrict behaves like Resolve but fails with ErrUnresolvedPlaceholder
// if any {...} token survives all resolution passes. It is used after the
// merge has seeded every well-known directory, when an unknown token can
// only be a typo.
func ResolveStrict(s string, vars map[string]string) (string, error) {
	resolved, err := Resolve(s, vars)
	if err != nil {
		return "", err
	}
	if remaining := Tokens(resolved); len(remaining) > 0 {
		return "", fmt.Errorf("%w: unknown placeholder {%s} in %q",
			model.ErrUnresolvedPlaceholder, remaining[0], s)
	}
	return resolved, nil
}

// ResolveSlice strictly resolves each element of vals, returning a new
// slice. A nil or empty input yields nil.
func ResolveSlice(vals []string, vars map[string]string) ([]string, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		resolved, err := ResolveStrict(v, vars)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// ResolveMap strictly resolves the values (not the keys) of vals, returning
// a new map. A nil or empty input yields nil.
func ResolveMap(vals map[string]string, vars map[string]string) (map[string]string, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		resolved, err := ResolveStrict(v, vars)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// expandOnce performs a single substitution pass: every token with a known
// value is replaced once, unknown tokens are preserved verbatim.
func expandOnce(s string, vars map[string]string) string {
	return tokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return tok
	})
}

// knownTokens returns the tokens in s that have a mapping in vars. During
// cycle reporting these are the interesting ones — unknown tokens cannot
// participate in a cycle.
func knownTokens(s string, vars map[string]string) []string {
	var names []string
	for _, name := range Tokens(s) {
		if _, ok := vars[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
