// Package save implements JSON serialization and deserialization of
// conversation snapshots.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/shopkeep/types"
)

// Version is the current snapshot format version.
const Version = 1

// ErrBadPending is returned when a pending item's fields disagree with its kind.
var ErrBadPending = errors.New("pending item does not match its kind")

// SaveData is the JSON-serializable snapshot format.
type SaveData struct {
	Version             int                 `json:"version"`
	CharacterID         string              `json:"character_id"`
	State               types.State         `json:"state"`
	PendingIntent       types.Intent        `json:"pending_intent,omitempty"`
	PendingItem         types.PendingItem   `json:"pending_item"`
	Discount            *int64              `json:"discount,omitempty"`
	Haggle              types.HaggleHistory `json:"haggle"`
	Visit               types.VisitWindow   `json:"visit"`
	Metadata            map[string]string   `json:"metadata"`
	LastRawInput        string              `json:"last_raw_input,omitempty"`
	LastNormalizedInput string              `json:"last_normalized_input,omitempty"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Save serializes a snapshot to JSON bytes.
func Save(s types.ConversationSnapshot) ([]byte, error) {
	if err := CheckPending(s.PendingItem); err != nil {
		return nil, err
	}
	data := SaveData{
		Version:             Version,
		CharacterID:         s.CharacterID,
		State:               s.State,
		PendingIntent:       s.PendingIntent,
		PendingItem:         s.PendingItem,
		Discount:            s.Discount,
		Haggle:              s.Haggle,
		Visit:               s.Visit,
		Metadata:            s.Metadata,
		LastRawInput:        s.LastRawInput,
		LastNormalizedInput: s.LastNormalizedInput,
		UpdatedAt:           s.UpdatedAt,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into a snapshot.
func Load(data []byte) (types.ConversationSnapshot, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return types.ConversationSnapshot{}, err
	}
	if sd.Version > Version {
		return types.ConversationSnapshot{}, fmt.Errorf("snapshot version %d is newer than %d", sd.Version, Version)
	}
	// Ensure defaults are never empty after load.
	if sd.State == "" {
		sd.State = types.StateIntroduction
	}
	if sd.PendingItem.Kind == "" {
		sd.PendingItem.Kind = types.PendingNone
	}
	if sd.Metadata == nil {
		sd.Metadata = map[string]string{}
	}
	if err := CheckPending(sd.PendingItem); err != nil {
		return types.ConversationSnapshot{}, err
	}
	return types.ConversationSnapshot{
		CharacterID:         sd.CharacterID,
		State:               sd.State,
		PendingIntent:       sd.PendingIntent,
		PendingItem:         sd.PendingItem,
		Discount:            sd.Discount,
		Haggle:              sd.Haggle,
		Visit:               sd.Visit,
		Metadata:            sd.Metadata,
		LastRawInput:        sd.LastRawInput,
		LastNormalizedInput: sd.LastNormalizedInput,
		UpdatedAt:           sd.UpdatedAt,
	}, nil
}

// CheckPending verifies that exactly the field selected by Kind is set.
func CheckPending(p types.PendingItem) error {
	var ok bool
	switch p.Kind {
	case types.PendingNone, "":
		ok = p.Item == nil && len(p.Items) == 0 && p.Raw == ""
	case types.PendingSingle:
		ok = p.Item != nil && len(p.Items) == 0 && p.Raw == ""
	case types.PendingList:
		ok = p.Item == nil && len(p.Items) > 0 && p.Raw == ""
	case types.PendingRaw:
		ok = p.Item == nil && len(p.Items) == 0 && p.Raw != ""
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadPending, p.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBadPending, p.Kind)
	}
	return nil
}
