// Package version implements the version algebra: parsing mod version
// strings into comparable triples and evaluating the several disjoint
// range grammars mod manifests use to declare dependency constraints.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed (major, minor, patch) triple. The original string is
// kept for display only; comparisons never use it.
type Version struct {
	Major, Minor, Patch int
	Raw                 string
}

// Parse normalizes a version string by taking the substring before the
// first '+', discarding any character outside [0-9.], splitting on '.',
// and interpreting each segment as a non-negative integer (missing or
// non-numeric segments default to 0). Extra segments beyond the third are
// discarded.
func Parse(raw string) Version {
	s := raw
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}

	var cleaned strings.Builder
	for _, r := range s {
		if r == '.' || (r >= '0' && r <= '9') {
			cleaned.WriteRune(r)
		}
	}

	parts := strings.Split(cleaned.String(), ".")
	segs := [3]int{}
	for i := 0; i < 3 && i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			n = 0
		}
		segs[i] = n
	}

	return Version{Major: segs[0], Minor: segs[1], Patch: segs[2], Raw: raw}
}

// Compare returns the sign of the first non-zero difference between a and
// b's (major, minor, patch) triples: negative if a < b, positive if a > b,
// zero if equal.
func Compare(a, b Version) int {
	d := a.Major - b.Major
	if d == 0 {
		d = a.Minor - b.Minor
	}
	if d == 0 {
		d = a.Patch - b.Patch
	}
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

// NextMinor returns (major, minor+1, 0), used by the '~' range prefix.
func NextMinor(v Version) Version {
	return Version{Major: v.Major, Minor: v.Minor + 1, Patch: 0}
}

var wildcardEscape = regexp.MustCompile(`[.+*()|\[\]{}^$?\\]`)

// Satisfies evaluates range against version per the first matching rule
// among the grammars documented in the core spec's Version Algebra
// section: empty/*/any; space-separated AND; x/* wildcard glob; operator
// prefix with x/* substituted by 0; the '~' tilde-minor prefix;
// >=, >, <=, < comparators; bracketed intervals; exact equality fallback.
func Satisfies(versionStr string, rangeStr string) bool {
	r := strings.TrimSpace(rangeStr)

	// Rule 1: empty / * / any
	if r == "" || r == "*" || strings.EqualFold(r, "any") {
		return true
	}

	// Rule 2: space-separated range (AND), but not a bracketed interval.
	if !strings.HasPrefix(r, "[") && !strings.HasPrefix(r, "(") {
		if parts := strings.Fields(r); len(parts) > 1 {
			for _, p := range parts {
				if !Satisfies(versionStr, p) {
					return false
				}
			}
			return true
		}
	}

	hasWildcard := strings.ContainsAny(r, "x*") && !strings.HasPrefix(r, "[") && !strings.HasPrefix(r, "(")
	beginsWithOperator := strings.HasPrefix(r, ">=") || strings.HasPrefix(r, "<=") ||
		strings.HasPrefix(r, ">") || strings.HasPrefix(r, "<") || strings.HasPrefix(r, "~")

	// Rule 3: x/* wildcard, no leading comparator -> glob-style regex match.
	if hasWildcard && !beginsWithOperator {
		return matchWildcard(versionStr, r)
	}

	// Rule 4: x/* wildcard with a leading operator -> substitute 0, fall through.
	if hasWildcard && beginsWithOperator {
		r = strings.ReplaceAll(strings.ReplaceAll(r, "x", "0"), "*", "0")
	}

	// Rule 5: '~' tilde-minor prefix.
	if strings.HasPrefix(r, "~") {
		base := Parse(strings.TrimSpace(r[1:]))
		v := Parse(versionStr)
		upper := NextMinor(base)
		return Compare(v, base) >= 0 && Compare(v, upper) < 0
	}

	// Rule 6: comparator prefixes.
	if op, rest, ok := splitComparator(r); ok {
		target := Parse(strings.TrimSpace(rest))
		v := Parse(versionStr)
		cmp := Compare(v, target)
		switch op {
		case ">=":
			return cmp >= 0
		case ">":
			return cmp > 0
		case "<=":
			return cmp <= 0
		case "<":
			return cmp < 0
		}
	}

	// Rule 7: bracketed interval with a single comma.
	if low, high, lowIncl, highIncl, ok := parseInterval(r); ok {
		v := Parse(versionStr)
		if low != "" {
			cmp := Compare(v, Parse(low))
			if lowIncl && cmp < 0 {
				return false
			}
			if !lowIncl && cmp <= 0 {
				return false
			}
		}
		if high != "" {
			cmp := Compare(v, Parse(high))
			if highIncl && cmp > 0 {
				return false
			}
			if !highIncl && cmp >= 0 {
				return false
			}
		}
		return true
	}

	// Rule 8: exact equality fallback.
	return Compare(Parse(versionStr), Parse(r)) == 0
}

func splitComparator(r string) (op, rest string, ok bool) {
	for _, candidate := range []string{">=", "<=", ">", "<"} {
		if strings.HasPrefix(r, candidate) {
			return candidate, r[len(candidate):], true
		}
	}
	return "", "", false
}

func parseInterval(r string) (low, high string, lowIncl, highIncl bool, ok bool) {
	if len(r) < 3 {
		return "", "", false, false, false
	}
	openCh := r[0]
	closeCh := r[len(r)-1]
	if (openCh != '[' && openCh != '(') || (closeCh != ']' && closeCh != ')') {
		return "", "", false, false, false
	}
	body := r[1 : len(r)-1]
	commaParts := strings.Split(body, ",")
	if len(commaParts) != 2 {
		return "", "", false, false, false
	}
	low = strings.TrimSpace(commaParts[0])
	high = strings.TrimSpace(commaParts[1])
	lowIncl = openCh == '['
	highIncl = closeCh == ']'
	return low, high, lowIncl, highIncl, true
}

func matchWildcard(versionStr, pattern string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case 'x', 'X', '*':
			b.WriteString(".*")
		default:
			b.WriteString(wildcardEscape.ReplaceAllString(string(r), `\$0`))
		}
	}
	b.WriteString(`(\+.*)?$`)
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(versionStr)
}
