// Package parser ranks free text against the static intent keyword tables.
// Intentionally dumb: no NLP, just keyword overlap and a fixed tie-break order.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/types"
)

// DefaultThreshold is the minimum confidence at which a ranked intent is trusted.
const DefaultThreshold = 0.10

// Ranking is the outcome of scoring one line of text.
type Ranking struct {
	Intent     types.Intent
	Score      int
	Confidence float64
}

var preferenceRank = func() map[types.Intent]int {
	m := make(map[types.Intent]int, len(Preference))
	for i, intent := range Preference {
		m[intent] = i
	}
	return m
}()

// Rank scores every intent by the number of its keywords present in the
// normalized text and returns the winner. Ties go to the intent listed first
// in Preference. A zero score yields Unknown.
func Rank(text string) Ranking {
	padded := " " + normalize.Normalize(text) + " "
	best := Ranking{Intent: Unknown}
	for _, intent := range Preference {
		score := Score(padded, Keywords[intent])
		if score == 0 {
			continue
		}
		if score > best.Score || (score == best.Score && preferenceRank[intent] < preferenceRank[best.Intent]) {
			best = Ranking{Intent: intent, Score: score}
		}
	}
	if best.Score > 0 {
		best.Confidence = float64(best.Score) / float64(max(1, len(Keywords[best.Intent])))
	}
	return best
}

// Score counts how many keywords occur as whole words or phrases in padded,
// which must be normalized text surrounded by single spaces.
func Score(padded string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(padded, " "+kw+" ") {
			n++
		}
	}
	return n
}

// containsAny reports whether any phrase occurs in the normalized text.
func containsAny(text string, phrases []string) bool {
	return Score(" "+normalize.Normalize(text)+" ", phrases) > 0
}

var (
	buyVerbs     = []string{"buy", "purchase", "get", "take", "acquire", "grab", "order", "want", "pick up"}
	sellVerbs    = []string{"sell", "pawn", "offload", "trade in", "get rid of"}
	inspectVerbs = []string{"inspect", "examine", "describe", "details", "look at", "tell me about", "what is", "whats", "how much", "price", "cost", "info", "check"}
	haggleVerbs  = []string{"haggle", "discount", "bargain", "negotiate", "cheaper", "better price", "lower the price", "better deal", "a deal on", "cut me a deal"}
	stashVerbs   = []string{"stash", "put away", "keep this", "leave this"}
	unstashVerbs = []string{"unstash", "retrieve", "reclaim", "take back", "get back", "take out"}
	bankingWords = []string{"deposit", "withdraw", "withdrawal", "cash out", "pay in"}

	yesWords       = []string{"yes", "y", "yeah", "yep", "yup", "sure", "ok", "okay", "confirm", "aye", "absolutely", "do it", "of course", "deal", "its a deal"}
	noWords        = []string{"no", "no deal", "n", "nope", "nah", "cancel", "nevermind", "never mind", "forget it", "changed my mind", "stop"}
	gratitudeWords = Keywords[Gratitude]
	goodbyeWords   = Keywords[Goodbye]
	politeFiller   = map[string]bool{"please": true, "thanks": true, "thank": true, "you": true, "then": true}

	// leadingVerbs are stripped from the start of an item query.
	leadingVerbs = map[string]bool{
		"buy": true, "purchase": true, "get": true, "take": true, "acquire": true, "grab": true, "order": true,
		"sell": true, "pawn": true, "offload": true,
		"inspect": true, "examine": true, "describe": true, "check": true,
		"stash": true, "unstash": true, "retrieve": true, "haggle": true,
	}

	stopPhrases = map[string]bool{
		"ok": true, "okay": true, "yes": true, "no": true, "nope": true, "yeah": true, "yep": true, "nah": true,
		"sure": true, "thanks": true, "thank you": true, "cheers": true, "hello": true, "hi": true, "hey": true,
		"bye": true, "goodbye": true, "cancel": true, "nevermind": true, "never mind": true, "next": true,
		"back": true, "more": true, "help": true, "yes please": true, "no thanks": true, "no thank you": true,
		"ok thanks": true, "hello there": true, "good morning": true, "good evening": true, "good afternoon": true,
	}
)

// HasBuyVerb reports whether text contains a buy verb.
func HasBuyVerb(text string) bool { return containsAny(text, buyVerbs) }

// HasSellVerb reports whether text contains a sell verb.
func HasSellVerb(text string) bool { return containsAny(text, sellVerbs) }

// HasInspectVerb reports whether text contains an inspect keyword.
func HasInspectVerb(text string) bool { return containsAny(text, inspectVerbs) }

// HasHaggleVerb reports whether text contains a haggle keyword.
func HasHaggleVerb(text string) bool { return containsAny(text, haggleVerbs) }

// HasStashVerb reports whether text asks to stash something.
func HasStashVerb(text string) bool { return containsAny(text, stashVerbs) }

// HasUnstashVerb reports whether text asks to take something out of the stash.
func HasUnstashVerb(text string) bool { return containsAny(text, unstashVerbs) }

// IsBanking reports whether text talks about depositing or withdrawing coin.
func IsBanking(text string) bool { return containsAny(text, bankingWords) }

// IsConfirm reports whether text contains an affirmative.
func IsConfirm(text string) bool { return containsAny(text, yesWords) }

// IsCancel reports whether text contains a negative or cancellation.
func IsCancel(text string) bool { return containsAny(text, noWords) }

// IsGratitude reports whether text thanks the shopkeeper.
func IsGratitude(text string) bool { return containsAny(text, gratitudeWords) }

// IsGoodbye reports whether text takes leave.
func IsGoodbye(text string) bool { return containsAny(text, goodbyeWords) }

// IsBareYesNo reports whether text is nothing but a yes or no answer,
// optionally padded with politeness ("yes please", "no thanks").
func IsBareYesNo(text string) bool {
	norm := normalize.Normalize(text)
	if norm == "" {
		return false
	}
	if phraseIn(norm, yesWords) || phraseIn(norm, noWords) {
		return true
	}
	answered := false
	for _, tok := range strings.Fields(norm) {
		switch {
		case phraseIn(tok, yesWords), phraseIn(tok, noWords):
			answered = true
		case politeFiller[tok], tok == "its", tok == "a":
		default:
			return false
		}
	}
	return answered
}

func phraseIn(s string, list []string) bool {
	for _, p := range list {
		if s == p {
			return true
		}
	}
	return false
}

// IsStopPhrase reports whether normalized text is a trivial conversational
// turn that must never be matched against the catalog.
func IsStopPhrase(normalized string) bool {
	return stopPhrases[normalized]
}

// StripLeadingVerb removes one leading intent verb from a token list.
func StripLeadingVerb(tokens []string) []string {
	if len(tokens) > 1 && leadingVerbs[tokens[0]] {
		return tokens[1:]
	}
	if len(tokens) > 2 && tokens[0] == "look" && tokens[1] == "at" {
		return tokens[2:]
	}
	return tokens
}

// NumericToken returns the first whitespace-delimited digit string in text.
func NumericToken(text string) (int, bool) {
	for _, tok := range strings.Fields(normalize.Normalize(text)) {
		if !normalize.IsNumeric(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// coinValues gives the copper value of each denomination word.
var coinValues = map[string]int64{
	"pp": 1000, "platinum": 1000,
	"gp": 100, "gold": 100, "g": 100,
	"sp": 10, "silver": 10, "s": 10,
	"cp": 1, "copper": 1, "c": 1,
}

// ParseAmount reads a currency amount such as "50 gold", "12gp 5sp" or "30"
// and returns it in copper. Bare numbers count as gold pieces. An amount
// too large for an int64 is not an amount.
func ParseAmount(text string) (int64, bool) {
	tokens := strings.Fields(normalize.Normalize(text))
	var total int64
	found := false
	for i := 0; i < len(tokens); i++ {
		num, unit := splitNumberUnit(tokens[i])
		if num == "" {
			continue
		}
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			continue
		}
		if unit == "" && i+1 < len(tokens) {
			if _, ok := coinValues[normalize.Singular(tokens[i+1])]; ok {
				unit = normalize.Singular(tokens[i+1])
				i++
			} else if _, ok := coinValues[tokens[i+1]]; ok {
				unit = tokens[i+1]
				i++
			}
		}
		value, ok := coinValues[unit]
		if !ok {
			value = coinValues["gp"]
		}
		if n > math.MaxInt64/value || total > math.MaxInt64-n*value {
			return 0, false
		}
		total += n * value
		found = true
	}
	return total, found && total > 0
}

// splitNumberUnit splits "12gp" into ("12", "gp"). Tokens that do not start
// with a digit return empty strings.
func splitNumberUnit(tok string) (string, string) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", ""
	}
	unit := tok[i:]
	if unit != "" {
		if _, ok := coinValues[unit]; !ok {
			return "", ""
		}
	}
	return tok[:i], unit
}

// Vocabulary returns every single-word keyword and verb known to the ranker.
// Item matching skips these tokens so command words never fuzzy-match items.
func Vocabulary() map[string]bool {
	return vocabulary
}

var vocabulary = func() map[string]bool {
	v := map[string]bool{}
	add := func(list []string) {
		for _, kw := range list {
			for _, w := range strings.Fields(kw) {
				if len(w) > 2 {
					v[w] = true
				}
			}
		}
	}
	for _, list := range Keywords {
		add(list)
	}
	add(buyVerbs)
	add(sellVerbs)
	add(inspectVerbs)
	add(haggleVerbs)
	add(stashVerbs)
	add(unstashVerbs)
	add(bankingWords)
	add(yesWords)
	add(noWords)
	for w := range coinValues {
		v[w] = true
	}
	return v
}()
