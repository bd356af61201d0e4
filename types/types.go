// Package types defines the shared data structures for the shopkeep engine.
// This package contains only type definitions: no logic, no methods.
package types

import "time"

// Intent names what the player wants to do. Closed set; see engine/parser.
type Intent string

// State is a conversation state-machine position.
type State string

// Conversation states.
const (
	StateIntroduction             State = "INTRODUCTION"
	StateAwaitingAction           State = "AWAITING_ACTION"
	StateAwaitingItemSelection    State = "AWAITING_ITEM_SELECTION"
	StateAwaitingConfirmation     State = "AWAITING_CONFIRMATION"
	StateViewingCategories        State = "VIEWING_CATEGORIES"
	StateViewingItems             State = "VIEWING_ITEMS"
	StateInTransaction            State = "IN_TRANSACTION"
	StateAwaitingDepositAmount    State = "AWAITING_DEPOSIT_AMOUNT"
	StateAwaitingWithdrawAmount   State = "AWAITING_WITHDRAW_AMOUNT"
	StateAwaitingStashSelection   State = "AWAITING_STASH_ITEM_SELECTION"
	StateAwaitingUnstashSelection State = "AWAITING_UNSTASH_ITEM_SELECTION"
)

// CategoryKind selects one of the catalog taxonomies.
type CategoryKind string

// Taxonomy kinds.
const (
	KindEquipment CategoryKind = "equipment"
	KindWeapon    CategoryKind = "weapon"
	KindArmor     CategoryKind = "armor"
	KindGear      CategoryKind = "gear"
	KindTool      CategoryKind = "tool"
	KindTreasure  CategoryKind = "treasure"
)

// Item is an immutable catalog entry. Prices are in copper pieces.
type Item struct {
	ID               int
	Name             string
	NormalizedName   string
	Category         string // equipment category, e.g. "Weapon"
	WeaponCategory   string // e.g. "Martial Melee"
	ArmorCategory    string // e.g. "Light"
	GearCategory     string // e.g. "Ammunition"
	ToolCategory     string // e.g. "Artisan's Tools"
	TreasureCategory string // e.g. "Gemstone"
	Price            int64
	Weight           float64
	Description      string
}

// CategoryHint is a resolved taxonomy value.
type CategoryHint struct {
	Kind CategoryKind
	Name string
}

// Metadata is the resolved data attached to an intent.
type Metadata struct {
	Items      []Item
	Category   *CategoryHint
	Raw        string // unresolved item reference
	Amount     int64  // copper; zero when absent
	Choice     int    // 1-based numeric choice; zero when absent
	Confidence float64
}

// IntentResult is produced once per request and never persisted.
type IntentResult struct {
	Intent   Intent
	Metadata Metadata
}

// PendingKind tags the PendingItem union.
type PendingKind string

// PendingItem variants.
const (
	PendingNone   PendingKind = "none"
	PendingSingle PendingKind = "single"
	PendingList   PendingKind = "list"
	PendingRaw    PendingKind = "raw"
)

// PendingItem is the item reference awaiting confirmation or disambiguation.
// Exactly one of Item, Items, Raw is meaningful, selected by Kind.
type PendingItem struct {
	Kind  PendingKind `json:"kind"`
	Item  *Item       `json:"item,omitempty"`
	Items []Item      `json:"items,omitempty"`
	Raw   string      `json:"raw,omitempty"`
}

// HaggleHistory tracks haggle attempts inside a rolling 24h window.
type HaggleHistory struct {
	Attempts  int       `json:"attempts"`
	Success   bool      `json:"success"`
	LastReset time.Time `json:"last_reset"`
}

// VisitWindow counts shop visits separated by a period of inactivity.
type VisitWindow struct {
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// ConversationSnapshot is the persisted per-character conversation.
type ConversationSnapshot struct {
	CharacterID         string
	State               State
	PendingIntent       Intent
	PendingItem         PendingItem
	Discount            *int64 // override price in copper
	Haggle              HaggleHistory
	Visit               VisitWindow
	Metadata            map[string]string
	LastRawInput        string
	LastNormalizedInput string
	UpdatedAt           time.Time
}

// Party holds the shared purse and belongings of an adventuring party.
type Party struct {
	ID        string
	Name      string
	Balance   int64 // copper
	Inventory []string
	Stash     []string
}

// LedgerEntry records a single money or item movement.
type LedgerEntry struct {
	ID           string
	PartyID      string
	CharacterID  string
	Action       string // "buy", "sell", "deposit", "withdraw", "stash", "unstash"
	ItemName     string
	Amount       int64
	BalanceAfter int64
	CreatedAt    time.Time
	Note         string
}

// Effect is a single atomic ledger mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Condition is a predicate over an event and the conversation around it.
type Condition struct {
	Type   string
	Params map[string]any
	Inner  *Condition // for "not"
}

// EventHandler is a shopkeeper remark triggered by an event.
// Say may use the {item}, {amount}, {balance}, {keeper} and {shop} placeholders.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Priority   int
	Say        string
}

// Result is the output of a single conversation step.
type Result struct {
	Intent  IntentResult
	State   State
	Route   string // dispatch table that served the turn
	Effects []Effect
	Events  []Event
	Output  []string
}
