package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/engine/events"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/rules"
	"github.com/nathoo/shopkeep/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled catalog for consistency. Warnings are
// returned even when validation passes.
func validate(c *contents) ([]string, error) {
	ve := &ValidationError{}

	validateShop(c.info, ve)
	validateItems(c.items, ve)
	validateTaxonomies(c, ve)
	for i, h := range c.info.Notices {
		validateHandler(i, h, ve)
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateShop(info catalog.Info, ve *ValidationError) {
	if info.Name == "" {
		ve.Errors = append(ve.Errors, "Shop.name is required")
	}
	if info.Keeper == "" {
		ve.Errors = append(ve.Errors, "Shop.keeper is required")
	}
	if info.Personality != "" {
		if _, err := dialogue.NewRegistry().Lookup(info.Personality); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("Shop.personality: %v", err))
		}
	}
	if len(info.Rumours) == 0 {
		ve.Warnings = append(ve.Warnings, "Shop has no rumours")
	}
}

func validateItems(items []types.Item, ve *ValidationError) {
	if len(items) == 0 {
		ve.Errors = append(ve.Errors, "catalog has no items")
	}
	ids := map[int]string{}
	names := map[string]string{}
	for _, it := range items {
		if it.ID <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q: id must be positive, got %d", it.Name, it.ID))
		} else if other, dup := ids[it.ID]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q: id %d already used by %q", it.Name, it.ID, other))
		} else {
			ids[it.ID] = it.Name
		}

		key := normalize.Normalize(it.Name)
		switch other, dup := names[key]; {
		case key == "":
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %d: name is empty", it.ID))
		case dup:
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q: name clashes with %q", it.Name, other))
		default:
			names[key] = it.Name
		}

		if it.Price < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q: price must not be negative", it.Name))
		}
		if it.Weight < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q: weight must not be negative", it.Name))
		}
		if it.Category == "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("item %q has no category", it.Name))
		}
	}
}

func validateTaxonomies(c *contents, ve *ValidationError) {
	for kind := range c.taxonomies {
		if !knownKind(kind) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown taxonomy %q", kind))
		}
	}
	for _, kind := range catalog.Kinds {
		for _, name := range c.taxonomies[kind] {
			if !carried(c.items, kind, name) {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf("taxonomy %q lists %q but no item carries it", kind, name))
			}
		}
	}
}

func knownKind(kind types.CategoryKind) bool {
	for _, k := range catalog.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func carried(items []types.Item, kind types.CategoryKind, name string) bool {
	for _, it := range items {
		if strings.EqualFold(catalog.Field(it, kind), name) {
			return true
		}
	}
	return false
}

func validateHandler(i int, h types.EventHandler, ve *ValidationError) {
	label := fmt.Sprintf("On(%q) #%d", h.EventType, i+1)
	if !events.Known(h.EventType) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown event type", label))
	}
	if h.Say == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: say is required", label))
	}
	for _, c := range h.Conditions {
		validateCondition(label, c, ve)
	}
}

func validateCondition(label string, c types.Condition, ve *ValidationError) {
	if !rules.Known(c.Type) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown condition type %q", label, c.Type))
		return
	}
	if c.Type == "not" {
		if c.Inner == nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: Not() needs a condition", label))
			return
		}
		validateCondition(label, *c.Inner, ve)
	}
}
