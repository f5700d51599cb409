package registry

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultThreshold is the minimum Similarity for Match to accept a name.
const DefaultThreshold = 0.82

// Similarity is 2*LCS/(len(a)+len(b)) over runes, in [0,1]. Two empty
// strings are not similar.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return float64(2*prev[len(rb)]) / float64(total)
}

// Match resolves a spoken name to an entry: exact key or alias first, then
// the best Similarity at or above threshold. A non-positive threshold uses
// DefaultThreshold.
func (r *AppRegistry) Match(name string, threshold float64) (AppEntry, float64, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AppEntry{}, 0, false
	}
	if e, ok := r.Lookup(name); ok {
		return e, 1, true
	}

	var (
		best      AppEntry
		bestScore float64
	)
	for _, e := range r.Apps {
		for _, n := range e.Names() {
			if score := Similarity(name, n); score > bestScore {
				best, bestScore = e, score
			}
		}
	}
	if bestScore < threshold {
		return AppEntry{}, 0, false
	}
	return best, bestScore, true
}

// Suggest lists keys that contain name's letters in order, best first. It
// backs "did you mean" replies when Match fails.
func (r *AppRegistry) Suggest(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, r.Keys())
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
