package resolve

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/types"
)

// Category matcher cutoffs.
const (
	CategoryCutoff = 0.8
	ScopedCutoff   = 0.7
)

// containmentOrder puts the broad equipment taxonomy last so a specific
// subcategory of equal length wins.
var containmentOrder = []types.CategoryKind{
	types.KindWeapon,
	types.KindArmor,
	types.KindGear,
	types.KindTool,
	types.KindTreasure,
	types.KindEquipment,
}

// Similarity is the difflib ratio between two strings, compared rune by rune.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// MatchCategory resolves text to one name: exact (plural tolerant), then
// the nearest fuzzy neighbour at or above CategoryCutoff.
func MatchCategory(names []string, text string) (string, bool) {
	norm := normalize.Normalize(text)
	if norm == "" {
		return "", false
	}
	if name, ok := exactName(names, norm); ok {
		return name, true
	}
	return nearest(names, norm, CategoryCutoff)
}

// MatchScoped resolves text against a sub-taxonomy: exact, then the longest
// name contained in the input, then fuzzy at ScopedCutoff.
func MatchScoped(names []string, text string) (string, bool) {
	norm := normalize.Normalize(text)
	if norm == "" {
		return "", false
	}
	if name, ok := exactName(names, norm); ok {
		return name, true
	}
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, name := range sorted {
		if n := normalize.Normalize(name); n != "" && containsWord(norm, n) {
			return name, true
		}
	}
	return nearest(names, norm, ScopedCutoff)
}

// ContainedCategory finds the longest taxonomy name mentioned in the input.
func ContainedCategory(norm string, v *catalog.View) *types.CategoryHint {
	var best *types.CategoryHint
	bestLen := 0
	for _, kind := range containmentOrder {
		for _, name := range v.Categories(kind) {
			n := normalize.Normalize(name)
			if len(n) <= bestLen || !containsWord(norm, n) {
				continue
			}
			best = &types.CategoryHint{Kind: kind, Name: name}
			bestLen = len(n)
		}
	}
	return best
}

func exactName(names []string, norm string) (string, bool) {
	want := singularPhrase(norm)
	for _, name := range names {
		n := normalize.Normalize(name)
		if n == norm || singularPhrase(n) == want {
			return name, true
		}
	}
	return "", false
}

func nearest(names []string, norm string, cutoff float64) (string, bool) {
	best, bestScore := "", 0.0
	for _, name := range names {
		s := Similarity(norm, normalize.Normalize(name))
		if s >= cutoff && s > bestScore {
			best, bestScore = name, s
		}
	}
	return best, best != ""
}

func singularPhrase(s string) string {
	toks := strings.Fields(s)
	for i, t := range toks {
		toks[i] = normalize.Singular(t)
	}
	return strings.Join(toks, " ")
}

// containsWord reports whether needle occurs in hay starting at a word
// boundary and ending at a word boundary, allowing a plural "s" or "es".
func containsWord(hay, needle string) bool {
	for from := 0; ; {
		i := strings.Index(hay[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if start == 0 || hay[start-1] == ' ' {
			rest := hay[end:]
			for _, suffix := range []string{"", "s", "es"} {
				if strings.HasPrefix(rest, suffix) && (len(rest) == len(suffix) || rest[len(suffix)] == ' ') {
					return true
				}
			}
		}
		from = start + 1
	}
}
