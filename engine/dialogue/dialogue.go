// Package dialogue holds the shopkeeper personalities. The set is closed:
// a personality is picked by key from a Registry built once at startup and
// injected into the engine.
package dialogue

import (
	"fmt"
	"sort"
)

// Line names something the shopkeeper says. Each personality has its own
// variants. Variants may use the {keeper} and {shop} placeholders.
type Line string

// Lines every personality must cover.
const (
	Welcome     Line = "welcome"
	WelcomeBack Line = "welcome_back"
	Farewell    Line = "farewell"
	Thanks      Line = "thanks"
	Confused    Line = "confused"
	Apology     Line = "apology"
	HaggleWin   Line = "haggle_win"
	HaggleLose  Line = "haggle_lose"
	NoMoreDeals Line = "no_more_deals"
	Broke       Line = "broke"
	Purchased   Line = "purchased"
	Bought      Line = "bought"
	SmallTalk   Line = "small_talk"
	Joke        Line = "joke"
	Compliment  Line = "compliment"
	Insult      Line = "insult"
	Weather     Line = "weather"
	BigSpend    Line = "big_spend"
	LowPurse    Line = "low_purse"
)

// AllLines lists every Line.
var AllLines = []Line{
	Welcome, WelcomeBack, Farewell, Thanks, Confused, Apology,
	HaggleWin, HaggleLose, NoMoreDeals, Broke, Purchased, Bought,
	SmallTalk, Joke, Compliment, Insult, Weather, BigSpend, LowPurse,
}

// Personality is one shopkeeper temperament.
type Personality struct {
	Key            string
	Description    string
	HaggleDC       int // d20 target a haggle roll must meet
	MinDiscountPct int
	MaxDiscountPct int
	lines          map[Line][]string
}

// Say returns one variant of l. roll(n) must return a value in [1, n].
func (p Personality) Say(l Line, roll func(sides int) int) string {
	variants := p.lines[l]
	switch len(variants) {
	case 0:
		return ""
	case 1:
		return variants[0]
	}
	i := roll(len(variants)) - 1
	if i < 0 || i >= len(variants) {
		i = 0
	}
	return variants[i]
}

// Variants returns how many variants exist for l.
func (p Personality) Variants(l Line) int { return len(p.lines[l]) }

// DefaultKey is used when no personality is configured.
const DefaultKey = "gruff"

// Registry maps stable keys to personalities.
type Registry struct {
	byKey map[string]Personality
}

// NewRegistry builds the registry from the fixed constructor table.
func NewRegistry() Registry {
	r := Registry{byKey: make(map[string]Personality, len(constructors))}
	for key, build := range constructors {
		p := build()
		p.Key = key
		r.byKey[key] = p
	}
	return r
}

// Lookup returns the personality for key; an empty key selects DefaultKey.
func (r Registry) Lookup(key string) (Personality, error) {
	if key == "" {
		key = DefaultKey
	}
	p, ok := r.byKey[key]
	if !ok {
		return Personality{}, fmt.Errorf("unknown personality %q (have %v)", key, r.Keys())
	}
	return p, nil
}

// Keys returns the registered keys, sorted.
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var constructors = map[string]func() Personality{
	"gruff":    gruff,
	"cheerful": cheerful,
	"shrewd":   shrewd,
}
