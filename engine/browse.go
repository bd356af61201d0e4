package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/resolve"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// viewItems answers "what do you sell": the top-level categories, or the
// named one.
func (s *Service) viewItems(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if hint := req.Result.Metadata.Category; hint != nil {
		return s.browseHint(ctx, req, *hint)
	}
	return s.showCategories(ctx, req.Conv, req.View, types.KindEquipment, "Here's what we carry:")
}

// browse serves the category intents.
func (s *Service) browse(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if hint := req.Result.Metadata.Category; hint != nil {
		return s.browseHint(ctx, req, *hint)
	}
	kind, ok := parser.IntentKinds[req.Result.Intent]
	if !ok {
		kind = types.KindEquipment
	}
	return s.showCategories(ctx, req.Conv, req.View, kind, fmt.Sprintf("Our %s stock:", kind))
}

// browseHint opens a category. Equipment categories with a taxonomy of
// their own list that taxonomy first.
func (s *Service) browseHint(ctx context.Context, req dispatch.Request, hint types.CategoryHint) (dispatch.Reply, error) {
	if hint.Kind == types.KindEquipment {
		if sub, ok := catalog.SubKind(hint.Name); ok && len(req.View.Categories(sub)) > 0 {
			return s.showCategories(ctx, req.Conv, req.View, sub, fmt.Sprintf("What sort of %s?", strings.ToLower(hint.Name)))
		}
	}
	return s.showItems(ctx, req.Conv, req.View, hint.Kind, hint.Name, 0)
}

// showCategories lists one taxonomy, cheapest entry first. Categories with
// nothing in stock go last.
func (s *Service) showCategories(ctx context.Context, conv *state.Conversation, v *catalog.View, kind types.CategoryKind, header string) (dispatch.Reply, error) {
	names := byCheapest(v, kind)
	if len(names) == 0 {
		return dispatch.Say("I've nothing of that sort in stock."), nil
	}
	if err := conv.SetMeta(ctx, metaBrowseKind, string(kind)); err != nil {
		return dispatch.Reply{}, err
	}
	if err := conv.SetMeta(ctx, metaBrowseList, strings.Join(names, "|")); err != nil {
		return dispatch.Reply{}, err
	}
	if err := conv.Transition(ctx, types.StateViewingCategories, parser.CategoryIntents[kind], none); err != nil {
		return dispatch.Reply{}, err
	}
	lines := append([]string{header}, numberedNames(names)...)
	return dispatch.Say(append(lines, "Pick a number.")...), nil
}

func byCheapest(v *catalog.View, kind types.CategoryKind) []string {
	names := append([]string(nil), v.Categories(kind)...)
	cheapest := make(map[string]int64, len(names))
	for _, n := range names {
		cheapest[n] = -1
		if items := v.InCategory(kind, n); len(items) > 0 {
			cheapest[n] = items[0].Price
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := cheapest[names[i]], cheapest[names[j]]
		if (a < 0) != (b < 0) {
			return b < 0
		}
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// selectCategory opens the numbered category from the last listing.
func (s *Service) selectCategory(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	names := strings.Split(req.Conv.Meta(metaBrowseList), "|")
	kind := types.CategoryKind(req.Conv.Meta(metaBrowseKind))
	n := req.Result.Metadata.Choice
	if kind == "" || names[0] == "" {
		return s.viewItems(ctx, req)
	}
	if n < 1 || n > len(names) {
		return dispatch.Say(fmt.Sprintf("Pick a number between 1 and %d.", len(names))), nil
	}
	return s.browseHint(ctx, req, types.CategoryHint{Kind: kind, Name: names[n-1]})
}

// showItems lists one zero-based page of a category.
func (s *Service) showItems(ctx context.Context, conv *state.Conversation, v *catalog.View, kind types.CategoryKind, value string, page int) (dispatch.Reply, error) {
	items := v.InCategory(kind, value)
	if len(items) == 0 {
		return dispatch.Say(fmt.Sprintf("I'm out of %s at the moment.", strings.ToLower(value))), nil
	}
	size := s.cfg.PageSize
	pages := (len(items) + size - 1) / size
	shown := catalog.Page(items, page, size)

	for key, val := range map[string]string{
		metaBrowseKind:  string(kind),
		metaBrowseValue: value,
		metaPage:        strconv.Itoa(page),
	} {
		if err := conv.SetMeta(ctx, key, val); err != nil {
			return dispatch.Reply{}, err
		}
	}
	if err := conv.Transition(ctx, types.StateViewingItems, parser.BuyItem, list(shown)); err != nil {
		return dispatch.Reply{}, err
	}

	lines := []string{fmt.Sprintf("%s (page %d of %d):", value, page+1, pages)}
	lines = append(lines, numbered(shown)...)
	footer := "Pick a number to buy."
	if page+1 < pages {
		footer = "Pick a number to buy, or say 'next' for more."
	}
	return dispatch.Say(append(lines, footer)...), nil
}

func (s *Service) nextPage(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	return s.turnPage(ctx, req, 1)
}

func (s *Service) previousPage(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	return s.turnPage(ctx, req, -1)
}

// turnPage moves through the last category listing. A page number jumps
// straight to it.
func (s *Service) turnPage(ctx context.Context, req dispatch.Request, step int) (dispatch.Reply, error) {
	value := req.Conv.Meta(metaBrowseValue)
	kind := types.CategoryKind(req.Conv.Meta(metaBrowseKind))
	if value == "" || kind == "" {
		return dispatch.Say("We're not looking at anything. Ask to see the wares."), nil
	}
	page, _ := strconv.Atoi(req.Conv.Meta(metaPage))
	if n := req.Result.Metadata.Choice; n > 0 {
		page = n - 1
	} else {
		page += step
	}
	total := len(req.View.InCategory(kind, value))
	pages := (total + s.cfg.PageSize - 1) / s.cfg.PageSize
	switch {
	case page < 0:
		return dispatch.Say("We're already on the first page."), nil
	case page >= pages:
		return dispatch.Say("That's the last of them."), nil
	}
	return s.showItems(ctx, req.Conv, req.View, kind, value, page)
}

// scope returns the items a price query is about: the mentioned category,
// or everything.
func scope(req dispatch.Request) ([]types.Item, string) {
	hint := req.Result.Metadata.Category
	if hint == nil {
		hint = resolve.ContainedCategory(normalize.Normalize(req.Raw), req.View)
	}
	if hint == nil {
		items := append([]types.Item(nil), req.View.Items...)
		catalog.SortByPrice(items)
		return items, "wares"
	}
	return req.View.InCategory(hint.Kind, hint.Name), strings.ToLower(hint.Name)
}

func (s *Service) cheapest(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	items, what := scope(req)
	if len(items) == 0 {
		return dispatch.Say("I've nothing of that sort."), nil
	}
	top := items[:min(s.cfg.PageSize, len(items))]
	return s.choose(ctx, req.Conv, parser.BuyItem, top, fmt.Sprintf("The cheapest %s I have:", what))
}

func (s *Service) mostExpensive(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	items, what := scope(req)
	if len(items) == 0 {
		return dispatch.Say("I've nothing of that sort."), nil
	}
	top := make([]types.Item, 0, s.cfg.PageSize)
	for i := len(items) - 1; i >= 0 && len(top) < s.cfg.PageSize; i-- {
		top = append(top, items[i])
	}
	return s.choose(ctx, req.Conv, parser.BuyItem, top, fmt.Sprintf("The finest %s I have:", what))
}

// affordableItems returns the scoped items the party can pay for, cheapest
// first.
func (s *Service) affordableItems(ctx context.Context, req dispatch.Request) ([]types.Item, int64, error) {
	party, err := s.party(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, _ := scope(req)
	var out []types.Item
	for _, it := range items {
		if it.Price <= party.Balance {
			out = append(out, it)
		}
	}
	return out, party.Balance, nil
}

func (s *Service) affordable(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	items, balance, err := s.affordableItems(ctx, req)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(items) == 0 {
		return dispatch.Say(fmt.Sprintf("Nothing here for %s, I'm afraid.", FormatCoins(balance))), nil
	}
	// The priciest things the purse covers, best first.
	top := make([]types.Item, 0, s.cfg.PageSize)
	for i := len(items) - 1; i >= 0 && len(top) < s.cfg.PageSize; i-- {
		top = append(top, items[i])
	}
	return s.choose(ctx, req.Conv, parser.BuyItem, top, fmt.Sprintf("With %s you could have:", FormatCoins(balance)))
}

// recommend suggests one affordable item, favouring the dearer ones.
func (s *Service) recommend(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	items, balance, err := s.affordableItems(ctx, req)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(items) == 0 {
		return dispatch.Say(fmt.Sprintf("I can't recommend anything for %s.", FormatCoins(balance))), nil
	}
	weights := make([]int, len(items))
	for i := range items {
		weights[i] = i + 1
	}
	pick := items[s.rng.WeightedSelect(weights)]
	reply, err := s.offer(ctx, req.Conv, pick)
	if err != nil {
		return dispatch.Reply{}, err
	}
	reply.Lines = append([]string{fmt.Sprintf("You'd do well with the %s.", pick.Name)}, reply.Lines...)
	return reply, nil
}
