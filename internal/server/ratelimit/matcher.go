package ratelimit

import "strings"

// healthRule exempts the health check from every limit.
var healthRule = Rule{Method: "GET", Pattern: "/health"}

// Match returns the first rule whose method and pattern fit the request, or
// nil when the default limit applies. Patterns use the server's route syntax:
// "{name}" matches one path segment and a trailing "{name...}" matches the
// rest of the path, so "/pipelines/{id}/{action...}" covers
// "/pipelines/<id>/pause" and "/pipelines/<id>/steps/<step>/skip".
func Match(method, path string, rules []Rule) *Rule {
	if method == healthRule.Method && path == healthRule.Pattern {
		r := healthRule
		return &r
	}
	segs := segments(path)
	for i := range rules {
		if rules[i].Method == method && matches(segments(rules[i].Pattern), segs) {
			return &rules[i]
		}
	}
	return nil
}

func segments(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func matches(pattern, segs []string) bool {
	for i, part := range pattern {
		wildcard := strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}")
		if wildcard && strings.HasSuffix(part, "...}") {
			return i < len(segs) && segs[i] != ""
		}
		if i >= len(segs) {
			return false
		}
		if wildcard {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if part != segs[i] {
			return false
		}
	}
	return len(pattern) == len(segs)
}
