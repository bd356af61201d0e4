package save

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/shopkeep/types"
)

func testSnapshot() types.ConversationSnapshot {
	discount := int64(180)
	dagger := types.Item{ID: 7, Name: "Dagger", NormalizedName: "dagger", Category: "Weapon", Price: 200}
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return types.ConversationSnapshot{
		CharacterID:   "char-1",
		State:         types.StateAwaitingConfirmation,
		PendingIntent: "BUY_ITEM",
		PendingItem:   types.PendingItem{Kind: types.PendingSingle, Item: &dagger},
		Discount:      &discount,
		Haggle:        types.HaggleHistory{Attempts: 2, Success: true, LastReset: ts},
		Visit:         types.VisitWindow{Count: 3, LastSeen: ts},
		Metadata:      map[string]string{"page": "1"},
		LastRawInput:  "buy dagger",
		UpdatedAt:     ts,
	}
}

func TestRoundTrip(t *testing.T) {
	snap := testSnapshot()

	data, err := Save(snap)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFormat(t *testing.T) {
	data, err := Save(testSnapshot())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"version", "character_id", "state", "pending_item", "haggle", "visit"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if raw["version"] != float64(Version) {
		t.Errorf("version = %v", raw["version"])
	}
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load([]byte(`{"character_id":"c"}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.State != types.StateIntroduction {
		t.Errorf("State = %q", got.State)
	}
	if got.PendingItem.Kind != types.PendingNone {
		t.Errorf("PendingItem.Kind = %q", got.PendingItem.Kind)
	}
	if got.Metadata == nil {
		t.Error("Metadata should not be nil")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"future version", `{"version": 99}`},
		{"single without item", `{"pending_item":{"kind":"single"}}`},
		{"list without items", `{"pending_item":{"kind":"list"}}`},
		{"raw with item", `{"pending_item":{"kind":"raw","raw":"x","item":{"ID":1}}}`},
		{"unknown kind", `{"pending_item":{"kind":"maybe"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCheckPending(t *testing.T) {
	it := types.Item{ID: 1}
	good := []types.PendingItem{
		{Kind: types.PendingNone},
		{Kind: types.PendingSingle, Item: &it},
		{Kind: types.PendingList, Items: []types.Item{it}},
		{Kind: types.PendingRaw, Raw: "rope"},
	}
	for _, p := range good {
		if err := CheckPending(p); err != nil {
			t.Errorf("%s: %v", p.Kind, err)
		}
	}
	err := CheckPending(types.PendingItem{Kind: types.PendingNone, Raw: "x"})
	if !errors.Is(err, ErrBadPending) {
		t.Errorf("err = %v, want ErrBadPending", err)
	}
}
