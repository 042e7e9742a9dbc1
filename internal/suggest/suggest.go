// Package suggest provides "did you mean" matching for config keys, settings
// and flags using Levenshtein distance.
package suggest

import (
	"fmt"
	"sort"
	"strings"
)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func normalize(s string) string {
	s = strings.TrimLeft(s, "-")
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s))
}

// Closest returns up to three candidates close to word, best first. Leading
// dashes, case, dashes and underscores are ignored when comparing.
func Closest(word string, candidates []string) []string {
	w := normalize(word)
	if w == "" {
		return nil
	}

	type scored struct {
		value string
		score int
	}
	var found []scored
	maxDist := max(2, len(w)/3)
	for _, c := range candidates {
		n := normalize(c)
		dist := levenshtein(w, n)
		if strings.HasPrefix(n, w) && len(w) >= 3 {
			dist = 0
		}
		if dist <= maxDist {
			found = append(found, scored{c, dist})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score < found[j].score })

	var out []string
	for i := 0; i < len(found) && i < 3; i++ {
		out = append(out, found[i].value)
	}
	return out
}

// flagHints maps flags people commonly try onto the ones rsv has
var flagHints = map[string]string{
	"nombre":   "--name",
	"telefono": "--phone",
	"personas": "--people",
	"guests":   "--people",
	"pax":      "--people",
	"fecha":    "--date",
	"hora":     "--time",
	"hour":     "--time",
	"estado":   "--status",
	"state":    "--status",
	"notas":    "--notes",
	"comment":  "--notes",
	"zona":     "--zone",
	"force":    "--yes",
	"confirm":  "--yes",
}

// FlagHint returns the rsv flag for a commonly misused one, or ""
func FlagHint(flag string) string {
	return flagHints[normalize(flag)]
}

// Message formats a hint line for an unknown value, or "" when nothing is close
func Message(word string, candidates []string) string {
	matches := Closest(word, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf("did you mean %s?", strings.Join(matches, " or "))
}
