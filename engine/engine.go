// Package engine runs one shop conversation turn: interpret the line the
// player typed, route it to a handler for the current conversation state,
// apply the handler's ledger effects and build the shopkeeper's reply.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/interpret"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// Fallback answers input the engine could not classify. It is optional and
// never needed for the state machine to work.
type Fallback interface {
	Complete(ctx context.Context, system, input string) (string, error)
}

// Config describes one conversation service.
type Config struct {
	CharacterID string
	PartyID     string
	// Shop describes the shop when the catalog accessor does not.
	Shop        catalog.Info
	Personality dialogue.Personality
	Threshold   float64
	VisitWindow time.Duration
	PageSize    int
	LedgerLimit int
	Seed        int64
}

// Deps are the collaborators a Service calls.
type Deps struct {
	Catalog  catalog.Source
	Store    state.Store
	Ledger   effects.Ledger
	Fallback Fallback
	Logger   *zap.Logger
	Now      func() time.Time
	// PartyLock, if set, is held while effects are applied so characters
	// sharing a party purse do not interleave ledger updates.
	PartyLock sync.Locker
}

// Metadata keys kept in the conversation snapshot.
const (
	metaLastReply   = "last_reply"
	metaRNG         = "rng_pos"
	metaBrowseKind  = "browse_kind"
	metaBrowseValue = "browse_value"
	metaBrowseList  = "browse_list"
	metaPage        = "page"
)

// Defaults for zero Config fields.
const (
	DefaultPartyID     = "party"
	DefaultPageSize    = 5
	DefaultLedgerLimit = 5
)

// Service serves one character's conversation. Build one per character;
// calls must not overlap (Shop serialises them).
type Service struct {
	cfg    Config
	deps   Deps
	log    *zap.Logger
	keeper dialogue.Personality
	opts   interpret.Options
	router *dispatch.Router
	seed   int64
	rng    *RNG
}

// New validates cfg and deps and builds the dispatch table.
func New(cfg Config, deps Deps) (*Service, error) {
	if cfg.CharacterID == "" {
		return nil, errors.New("engine: character id is required")
	}
	if deps.Catalog == nil || deps.Store == nil || deps.Ledger == nil {
		return nil, errors.New("engine: catalog, store and ledger are required")
	}
	if cfg.PartyID == "" {
		cfg.PartyID = DefaultPartyID
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = parser.DefaultThreshold
	}
	if cfg.VisitWindow <= 0 {
		cfg.VisitWindow = state.DefaultVisitWindow
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.LedgerLimit <= 0 {
		cfg.LedgerLimit = DefaultLedgerLimit
	}
	if cfg.Personality.Key == "" {
		key := cfg.Shop.Personality
		if src, ok := deps.Catalog.(catalog.InfoSource); ok && src.ShopInfo().Personality != "" {
			key = src.ShopInfo().Personality
		}
		p, err := dialogue.NewRegistry().Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		cfg.Personality = p
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Service{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Logger.With(zap.String("character", cfg.CharacterID)),
		keeper: cfg.Personality,
		opts:   interpret.Options{Threshold: cfg.Threshold},
		seed:   SeedFor(cfg.Seed, cfg.CharacterID),
	}
	s.rng = NewRNG(s.seed)
	s.router = s.routes()
	return s, nil
}

// EnsureParty creates the party with the given name and purse if the
// ledger does not know it yet.
func (s *Service) EnsureParty(ctx context.Context, name string, gold int64) error {
	_, err := s.deps.Ledger.GetParty(ctx, s.cfg.PartyID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, effects.ErrPartyNotFound) {
		return fmt.Errorf("loading party %s: %w", s.cfg.PartyID, err)
	}
	s.log.Info("creating party", zap.String("party", s.cfg.PartyID), zap.Int64("gold", gold))
	return s.deps.Ledger.CreateParty(ctx, types.Party{ID: s.cfg.PartyID, Name: name, Balance: gold})
}

// Handle runs one turn and returns the reply text. Failures become an
// in-character apology; the error is logged.
func (s *Service) Handle(ctx context.Context, raw string) string {
	res, err := s.Step(ctx, raw)
	if err != nil {
		s.log.Error("turn failed", zap.String("input", raw), zap.Error(err))
		return s.say(dialogue.Apology)
	}
	return strings.Join(res.Output, "\n")
}

// Step runs one turn. Persistence errors are returned; catalog and
// fallback failures degrade to an apology or the generic reply.
func (s *Service) Step(ctx context.Context, raw string) (types.Result, error) {
	var result types.Result

	// 1. Rehydrate the conversation.
	conv, err := state.Load(ctx, s.deps.Store, s.cfg.CharacterID, s.deps.Now)
	if err != nil {
		return result, fmt.Errorf("loading conversation: %w", err)
	}
	if conv.State() == types.StateInTransaction {
		s.log.Warn("finishing interrupted transaction")
		if err := conv.Finish(ctx); err != nil {
			return result, err
		}
	}
	s.syncRNG(conv)

	// 2. Per-request catalog view.
	view, err := catalog.Snapshot(ctx, s.deps.Catalog)
	if err != nil {
		s.log.Error("catalog unavailable", zap.Error(err))
		result.State = conv.State()
		result.Output = []string{s.say(dialogue.Apology)}
		return result, nil
	}

	if _, err := conv.TouchVisit(ctx, s.cfg.VisitWindow); err != nil {
		return result, err
	}

	// 3. Interpret and record the input.
	ir := interpret.Interpret(raw, conv.Snapshot(), view, s.opts)
	if err := conv.SetLastInput(ctx, raw, normalize.Normalize(raw)); err != nil {
		return result, err
	}

	// 4. Route.
	h, route := s.router.Route(conv.State(), ir.Intent, raw)
	if route == dispatch.RouteNumeric {
		n, _ := dispatch.LeadingNumber(raw)
		ir.Metadata.Choice = n
		if amount, ok := parser.ParseAmount(raw); ok {
			ir.Metadata.Amount = amount
		}
	}
	s.log.Debug("turn",
		zap.String("state", string(conv.State())),
		zap.String("intent", string(ir.Intent)),
		zap.Float64("confidence", ir.Metadata.Confidence),
		zap.Stringer("route", route),
	)

	// 5. Handle.
	reply, err := h(ctx, dispatch.Request{Raw: raw, Result: ir, Conv: conv, View: view})
	if err != nil {
		return result, fmt.Errorf("handling %s: %w", ir.Intent, err)
	}
	lines := reply.Lines

	// 6. Apply effects. The transaction is over either way.
	if len(reply.Effects) > 0 {
		evts, applyErr := s.apply(ctx, reply.Effects)
		result.Effects = reply.Effects
		result.Events = evts
		if conv.State() == types.StateInTransaction {
			if err := conv.Finish(ctx); err != nil {
				return result, err
			}
		}
		switch {
		case applyErr == nil:
			lines = append(lines, reply.Done...)
			lines = append(lines, s.remarks(ctx, conv, evts)...)
		case errors.Is(applyErr, effects.ErrInsufficientFunds):
			s.log.Info("insufficient funds", zap.Error(applyErr))
			lines = append(lines, s.say(dialogue.Broke))
		case errors.Is(applyErr, effects.ErrPurseOverflow):
			s.log.Info("purse overflow", zap.Error(applyErr))
			lines = append(lines, "That's more coin than any purse can hold. I'll not take it.")
		case errors.Is(applyErr, effects.ErrItemNotHeld):
			s.log.Info("item not held", zap.Error(applyErr))
			lines = append(lines, "You don't seem to have that any more.")
		default:
			return result, fmt.Errorf("applying effects: %w", applyErr)
		}
	}

	// 7. Unclassified input may go to the language model.
	if ir.Intent == parser.Unknown && route == dispatch.RouteDefault && s.deps.Fallback != nil {
		text, err := s.deps.Fallback.Complete(ctx, s.systemPrompt(), raw)
		switch {
		case err != nil:
			s.log.Warn("fallback failed", zap.Error(err))
		case strings.TrimSpace(text) != "":
			lines = []string{strings.TrimSpace(text)}
		}
	}

	// 8. Remember the reply and the dice.
	if err := conv.SetMeta(ctx, metaLastReply, strings.Join(lines, "\n")); err != nil {
		return result, err
	}
	if err := conv.SetMeta(ctx, metaRNG, strconv.FormatInt(s.rng.Position(), 10)); err != nil {
		return result, err
	}
	if err := conv.Audit(ctx); err != nil {
		s.log.Warn("audit log append failed", zap.Error(err))
	}

	result.Intent = ir
	result.State = conv.State()
	result.Route = route.String()
	result.Output = lines
	return result, nil
}

func (s *Service) apply(ctx context.Context, effs []types.Effect) ([]types.Event, error) {
	if s.deps.PartyLock != nil {
		s.deps.PartyLock.Lock()
		defer s.deps.PartyLock.Unlock()
	}
	return effects.Apply(ctx, s.deps.Ledger, effs, effects.Context{
		PartyID:     s.cfg.PartyID,
		CharacterID: s.cfg.CharacterID,
		Now:         s.deps.Now(),
	})
}

// syncRNG continues the dice sequence stored with the conversation.
func (s *Service) syncRNG(conv *state.Conversation) {
	pos, err := strconv.ParseInt(conv.Meta(metaRNG), 10, 64)
	if err != nil || pos < 0 {
		pos = 0
	}
	if pos != s.rng.Position() {
		s.rng = RestoreRNG(s.seed, pos)
	}
}

// info returns the shop description, preferring the live catalog's.
func (s *Service) info() catalog.Info {
	return shopInfo(s.deps.Catalog, s.cfg.Shop)
}

func shopInfo(acc catalog.Source, fallback catalog.Info) catalog.Info {
	if src, ok := acc.(catalog.InfoSource); ok {
		if info := src.ShopInfo(); info.Name != "" {
			return info
		}
	}
	return fallback
}

// say picks a personality line and fills in the shop placeholders.
func (s *Service) say(l dialogue.Line) string {
	return s.fill(s.keeper.Say(l, s.rng.Roll))
}

func (s *Service) fill(text string) string {
	info := s.info()
	keeper, shop := info.Keeper, info.Name
	if keeper == "" {
		keeper = "the shopkeeper"
	}
	if shop == "" {
		shop = "the shop"
	}
	return strings.NewReplacer("{keeper}", keeper, "{shop}", shop).Replace(text)
}

func (s *Service) systemPrompt() string {
	info := s.info()
	return fmt.Sprintf(
		"You are %s, %s, keeper of %s in %s. Stay in character and answer in at most two sentences. "+
			"You cannot change prices or the customer's purse; for trading, tell them to say 'help'.",
		info.Keeper, s.keeper.Description, info.Name, info.Location)
}

func (s *Service) party(ctx context.Context) (types.Party, error) {
	p, err := s.deps.Ledger.GetParty(ctx, s.cfg.PartyID)
	if err != nil {
		return types.Party{}, fmt.Errorf("loading party %s: %w", s.cfg.PartyID, err)
	}
	return p, nil
}

// Snapshot returns the persisted conversation.
func (s *Service) Snapshot(ctx context.Context) (types.ConversationSnapshot, error) {
	conv, err := state.Load(ctx, s.deps.Store, s.cfg.CharacterID, s.deps.Now)
	if err != nil {
		return types.ConversationSnapshot{}, fmt.Errorf("loading conversation: %w", err)
	}
	return conv.Snapshot(), nil
}

// Reset returns the conversation to INTRODUCTION.
func (s *Service) Reset(ctx context.Context) error {
	conv, err := state.Load(ctx, s.deps.Store, s.cfg.CharacterID, s.deps.Now)
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	return conv.Reset(ctx)
}
