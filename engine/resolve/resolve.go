// Package resolve maps free text onto catalog items and taxonomy values.
// Every function here is total: ambiguity and "not found" are results.
package resolve

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/types"
)

// Stage records which matcher produced a Match.
type Stage int

// Matcher stages, in evaluation order.
const (
	StageNone Stage = iota
	StageID
	StageExact
	StageTokens
	StageCategory
	StageFuzzy
	StagePending
)

// Matching thresholds.
const (
	FuzzyCutoff = 0.55
	FuzzyCap    = 5
	minQueryLen = 4
	minFuzzyTok = 4
)

// Match is the outcome of FindItem. Items holds zero, one or many
// candidates; Category is set only by the category stage; Raw carries a
// pending raw reference returned by the pending stage.
type Match struct {
	Items    []types.Item
	Category *types.CategoryHint
	Raw      string
	Stage    Stage
}

// Single reports whether exactly one item matched.
func (m Match) Single() bool { return len(m.Items) == 1 }

// Found reports whether any item matched.
func (m Match) Found() bool { return len(m.Items) > 0 }

// FindItem runs the matcher stages in order and returns the first success.
// pending is consulted only when every catalog stage fails.
func FindItem(text string, v *catalog.View, pending types.PendingItem) Match {
	norm := normalize.Normalize(text)
	if rejected(norm) {
		return Match{}
	}

	if m, ok := byID(norm, v); ok {
		return m
	}
	if items := exactContainment(norm, v); len(items) > 0 {
		return Match{Items: items, Stage: StageExact}
	}
	query := queryTokens(text)
	if items := tokenSubset(query, v); len(items) > 0 {
		return Match{Items: items, Stage: StageTokens}
	}
	if hint := ContainedCategory(norm, v); hint != nil {
		return Match{Category: hint, Stage: StageCategory}
	}
	// A full item name inside a sentence beats near neighbours sharing a word.
	if items := mentions(norm, v); len(items) > 0 {
		return Match{Items: items, Stage: StageFuzzy}
	}
	if items := fuzzy(query, v); len(items) > 0 {
		return Match{Items: items, Stage: StageFuzzy}
	}
	return fromPending(pending)
}

// rejected filters trivial turns such as "ok" or "no".
func rejected(norm string) bool {
	if norm == "" || parser.IsStopPhrase(norm) {
		return true
	}
	return len(norm) < minQueryLen && !normalize.IsNumeric(norm)
}

func byID(norm string, v *catalog.View) (Match, bool) {
	for _, tok := range strings.Fields(norm) {
		if !normalize.IsNumeric(tok) {
			continue
		}
		id, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if it, ok := v.ItemByID(id); ok {
			return Match{Items: []types.Item{it}, Stage: StageID}, true
		}
	}
	return Match{}, false
}

// exactContainment collects items whose normalized name contains the whole
// input. An item whose name equals the input wins outright.
func exactContainment(norm string, v *catalog.View) []types.Item {
	var hits []types.Item
	for _, it := range v.Items {
		if it.NormalizedName == norm {
			return []types.Item{it}
		}
		if strings.Contains(it.NormalizedName, norm) {
			hits = append(hits, it)
		}
	}
	return byNameLength(hits)
}

// queryTokens strips filler, stopwords and one leading verb, then singularizes.
func queryTokens(text string) []string {
	toks := parser.StripLeadingVerb(normalize.Tokens(normalize.Preprocess(text)))
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, normalize.Singular(t))
	}
	return out
}

func nameTokens(it types.Item) map[string]bool {
	set := map[string]bool{}
	for _, t := range normalize.Tokens(it.NormalizedName) {
		set[normalize.Singular(t)] = true
	}
	return set
}

// tokenSubset accepts items whose name tokens include every query token.
// An item whose token set equals the query wins outright.
func tokenSubset(query []string, v *catalog.View) []types.Item {
	if len(query) == 0 {
		return nil
	}
	want := map[string]bool{}
	for _, t := range query {
		want[t] = true
	}
	var hits []types.Item
	for _, it := range v.Items {
		have := nameTokens(it)
		ok := true
		for t := range want {
			if !have[t] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(have) == len(want) {
			return []types.Item{it}
		}
		hits = append(hits, it)
	}
	return byNameLength(hits)
}

// fuzzy matches each query token against item names and their words,
// skipping command vocabulary so "buy" never lands on "Buckler".
func fuzzy(query []string, v *catalog.View) []types.Item {
	vocab := parser.Vocabulary()
	type scored struct {
		item  types.Item
		score float64
	}
	best := map[int]scored{}
	for _, tok := range query {
		if len(tok) < minFuzzyTok || vocab[tok] || normalize.IsStopword(tok) || normalize.IsNumeric(tok) {
			continue
		}
		for _, it := range v.Items {
			s := Similarity(tok, it.NormalizedName)
			for w := range nameTokens(it) {
				s = max(s, Similarity(tok, w))
			}
			if s < FuzzyCutoff {
				continue
			}
			if prev, ok := best[it.ID]; !ok || s > prev.score {
				best[it.ID] = scored{item: it, score: s}
			}
		}
	}
	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.ID < ranked[j].item.ID
	})
	var out []types.Item
	for i := 0; i < len(ranked) && i < FuzzyCap; i++ {
		out = append(out, ranked[i].item)
	}
	return out
}

func fromPending(p types.PendingItem) Match {
	switch p.Kind {
	case types.PendingSingle:
		if p.Item != nil {
			return Match{Items: []types.Item{*p.Item}, Stage: StagePending}
		}
	case types.PendingList:
		if len(p.Items) > 0 {
			return Match{Items: append([]types.Item(nil), p.Items...), Stage: StagePending}
		}
	case types.PendingRaw:
		if p.Raw != "" {
			return Match{Raw: p.Raw, Stage: StagePending}
		}
	case types.PendingNone, "":
	}
	return Match{}
}

// MentionedItem finds the item whose full name appears inside the input,
// preferring the longest name. Used for bare mentions like "that dagger looks nice".
func MentionedItem(text string, v *catalog.View) (types.Item, bool) {
	items := mentions(normalize.Normalize(text), v)
	if len(items) == 0 {
		return types.Item{}, false
	}
	return items[len(items)-1], true
}

// mentions collects items whose whole normalized name appears as words in
// norm. A name found only as part of a longer mentioned name is dropped, so
// "dagger of venom" does not also yield "dagger". Shortest name first.
func mentions(norm string, v *catalog.View) []types.Item {
	var hits []types.Item
	for _, it := range v.Items {
		if len(it.NormalizedName) >= minQueryLen && containsWord(norm, it.NormalizedName) {
			hits = append(hits, it)
		}
	}
	var out []types.Item
	for _, it := range hits {
		covered := false
		for _, other := range hits {
			if other.ID != it.ID && len(other.NormalizedName) > len(it.NormalizedName) &&
				containsWord(other.NormalizedName, it.NormalizedName) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, it)
		}
	}
	return byNameLength(out)
}

// byNameLength orders candidates by name length, then id.
func byNameLength(items []types.Item) []types.Item {
	sort.SliceStable(items, func(i, j int) bool {
		if len(items[i].NormalizedName) != len(items[j].NormalizedName) {
			return len(items[i].NormalizedName) < len(items[j].NormalizedName)
		}
		return items[i].ID < items[j].ID
	})
	return items
}
