package parser

import (
	"testing"

	"github.com/nathoo/shopkeep/types"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / noise
		{name: "empty string", input: "", want: Unknown},
		{name: "punctuation only", input: "?!...", want: Unknown},
		{name: "gibberish", input: "florp zzzt", want: Unknown},

		// Money
		{name: "balance", input: "What's our balance?", want: CheckBalance},
		{name: "how much gold", input: "how much gold do we have", want: CheckBalance},
		{name: "ledger", input: "show me the ledger", want: ViewLedger},
		{name: "deposit", input: "I'd like to deposit 50 gold", want: DepositGold},
		{name: "withdraw", input: "withdraw 10gp", want: WithdrawGold},

		// Trade
		{name: "buy", input: "buy a dagger", want: BuyItem},
		{name: "sell", input: "sell my old boots", want: SellItem},
		{name: "haggle", input: "can we haggle?", want: Haggle},
		{name: "inspect", input: "examine the lute", want: InspectItem},
		{name: "stash", input: "stash the rope", want: StashItem},
		{name: "unstash", input: "unstash the rope", want: UnstashItem},

		// Browsing
		{name: "equipment category", input: "show me weapons", want: ViewEquipmentCategory},
		{name: "armor", input: "armor", want: ViewEquipmentCategory},
		{name: "weapon band", input: "martial weapons please", want: ViewWeaponCategory},
		{name: "wares", input: "what do you have", want: ViewItems},
		{name: "cheapest", input: "what's the cheapest thing", want: ViewCheapest},
		{name: "next page", input: "next", want: NextPage},

		// Chatter
		{name: "greeting", input: "Hello there!", want: Greeting},
		{name: "gratitude", input: "thanks!", want: Gratitude},
		{name: "goodbye", input: "farewell", want: Goodbye},
		{name: "confirm", input: "yes", want: Confirm},
		{name: "cancel", input: "nope", want: Cancel},
		{name: "bare deal", input: "deal", want: Confirm},
		{name: "its a deal", input: "It's a deal!", want: Confirm},
		{name: "no deal", input: "no deal", want: Cancel},
		{name: "better deal is haggling", input: "how about a better deal", want: Haggle},
		{name: "rumours", input: "heard any rumours?", want: Rumours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.input)
			if got.Intent != tt.want {
				t.Errorf("Rank(%q) = %s (score %d), want %s", tt.input, got.Intent, got.Score, tt.want)
			}
		})
	}
}

func TestRankTieBreakUsesPreference(t *testing.T) {
	// "balance" (CheckBalance) and "hello" (Greeting) score one each.
	got := Rank("hello balance")
	if got.Intent != CheckBalance {
		t.Errorf("got %s, want %s", got.Intent, CheckBalance)
	}
}

func TestRankConfidence(t *testing.T) {
	got := Rank("balance")
	want := 1.0 / float64(len(Keywords[CheckBalance]))
	if got.Confidence != want {
		t.Errorf("confidence = %v, want %v", got.Confidence, want)
	}
	if got.Confidence < DefaultThreshold {
		t.Errorf("single keyword hit %v below threshold %v", got.Confidence, DefaultThreshold)
	}
	if Rank("").Confidence != 0 {
		t.Error("empty input should have zero confidence")
	}
}

func TestKeywordTablesCoverPreference(t *testing.T) {
	seen := map[types.Intent]bool{}
	for _, intent := range Preference {
		if seen[intent] {
			t.Errorf("%s listed twice in Preference", intent)
		}
		seen[intent] = true
		kws, ok := Keywords[intent]
		if !ok || len(kws) == 0 {
			t.Errorf("%s has no keywords", intent)
		}
		// A single keyword hit must clear the default threshold.
		if 1.0/float64(len(kws)) < DefaultThreshold {
			t.Errorf("%s has %d keywords; one hit falls below threshold", intent, len(kws))
		}
	}
	for intent := range Keywords {
		if !seen[intent] {
			t.Errorf("%s has keywords but no preference rank", intent)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"buy verb", HasBuyVerb, "I want to buy something", true},
		{"buy verb absent", HasBuyVerb, "sell it", false},
		{"sell verb", HasSellVerb, "pawn this ring", true},
		{"inspect verb", HasInspectVerb, "tell me about the dagger", true},
		{"inspect substring only", HasInspectVerb, "checkmate", false},
		{"haggle verb", HasHaggleVerb, "any discount?", true},
		{"deal alone is not haggling", HasHaggleVerb, "it's a deal", false},
		{"deal on an item", HasHaggleVerb, "a better deal on the dagger", true},
		{"deal confirms", IsConfirm, "deal", true},
		{"stash verb", HasStashVerb, "put away the rope", true},
		{"unstash verb", HasUnstashVerb, "retrieve the rope", true},
		{"banking", IsBanking, "deposit 5 gold", true},
		{"confirm", IsConfirm, "Yes please", true},
		{"cancel", IsCancel, "never mind", true},
		{"gratitude", IsGratitude, "cheers mate", true},
		{"goodbye", IsGoodbye, "see you later", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBareYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes", true},
		{"No.", true},
		{"yes please", true},
		{"no thanks", true},
		{"never mind", true},
		{"It's a deal!", true},
		{"yes, deal", true},
		{"aye, deal", true},
		{"a", false},
		{"", false},
		{"yes but what about 7", false},
		{"inspect 7", false},
	}
	for _, tt := range tests {
		if got := IsBareYesNo(tt.input); got != tt.want {
			t.Errorf("IsBareYesNo(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"50", 5000, true},
		{"deposit 50 gold", 5000, true},
		{"12gp 5sp", 1250, true},
		{"3 silver", 30, true},
		{"2 platinum pieces", 2000, true},
		{"7 coppers", 7, true},
		{"some gold", 0, false},
		{"0", 0, false},
		{"20000000000000000 pp", 0, false},
		{"9223372036854775807 cp", 9223372036854775807, true},
		{"9223372036854775807 cp 1 cp", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAmount(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumericToken(t *testing.T) {
	n, ok := NumericToken("inspect 7 please")
	if !ok || n != 7 {
		t.Errorf("got (%d, %v), want (7, true)", n, ok)
	}
	if _, ok := NumericToken("no numbers here"); ok {
		t.Error("expected no numeric token")
	}
	// Digits glued to letters are not a token.
	if _, ok := NumericToken("12gp"); ok {
		t.Error("12gp should not be a numeric token")
	}
}

func TestStripLeadingVerb(t *testing.T) {
	tests := []struct {
		in   []string
		want int
	}{
		{[]string{"buy", "dagger"}, 1},
		{[]string{"look", "at", "dagger"}, 1},
		{[]string{"dagger"}, 1},
		{[]string{"buy"}, 1},
		{[]string{"long", "sword"}, 2},
	}
	for _, tt := range tests {
		if got := StripLeadingVerb(tt.in); len(got) != tt.want {
			t.Errorf("StripLeadingVerb(%v) = %v", tt.in, got)
		}
	}
}

func TestVocabulary(t *testing.T) {
	v := Vocabulary()
	for _, w := range []string{"buy", "sell", "weapons", "gold", "haggle"} {
		if !v[w] {
			t.Errorf("vocabulary missing %q", w)
		}
	}
	if v["dagger"] {
		t.Error("item names must not be vocabulary")
	}
}
