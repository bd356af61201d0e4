package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/types"
)

var chatterLines = map[types.Intent]dialogue.Line{
	parser.Weather:    dialogue.Weather,
	parser.SmallTalk:  dialogue.SmallTalk,
	parser.Joke:       dialogue.Joke,
	parser.Compliment: dialogue.Compliment,
	parser.Insult:     dialogue.Insult,
}

// chatter answers questions about the shop and idle talk. None of it
// changes the conversation state.
func (s *Service) chatter(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	info := s.info()
	switch req.Result.Intent {
	case parser.ShopName:
		return dispatch.Say(s.fill("You're standing in {shop}.")), nil
	case parser.ShopkeeperName:
		return dispatch.Say(s.fill("Name's {keeper}.")), nil
	case parser.ShopkeeperInfo:
		return dispatch.Say(s.fill("{keeper}, " + s.keeper.Description + ", at your service.")), nil
	case parser.ShopHours:
		if info.Hours == "" {
			return dispatch.Say("Open whenever the door is."), nil
		}
		return dispatch.Say(fmt.Sprintf("We're open %s.", info.Hours)), nil
	case parser.LocationInfo:
		if info.Location == "" {
			return dispatch.Say(s.fill("You found {shop}, didn't you?")), nil
		}
		return dispatch.Say(s.fill(fmt.Sprintf("{shop} stands in %s.", info.Location))), nil
	case parser.Rumours:
		if len(info.Rumours) == 0 {
			return dispatch.Say("Heard nothing worth repeating."), nil
		}
		return dispatch.Say("Word is: " + info.Rumours[s.rng.Roll(len(info.Rumours))-1]), nil
	}
	if l, ok := chatterLines[req.Result.Intent]; ok {
		return dispatch.Say(s.say(l)), nil
	}
	return s.confused(ctx, req)
}

// greet welcomes the player and opens the counter.
func (s *Service) greet(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	line := dialogue.Welcome
	if req.Conv.Visits() > 1 {
		line = dialogue.WelcomeBack
	}
	if req.Conv.State() == types.StateIntroduction {
		if err := req.Conv.SetState(ctx, types.StateAwaitingAction); err != nil {
			return dispatch.Reply{}, err
		}
	}
	return dispatch.Say(s.say(line)), nil
}

func (s *Service) thanks(_ context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Say(s.say(dialogue.Thanks)), nil
}

func (s *Service) goodbye(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Conv.Reset(ctx); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(s.say(dialogue.Farewell)), nil
}

func (s *Service) reset(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Conv.Reset(ctx); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say("Right, let's start over. What can I do for you?"), nil
}

func (s *Service) repeat(_ context.Context, req dispatch.Request) (dispatch.Reply, error) {
	last := req.Conv.Meta(metaLastReply)
	if last == "" {
		return dispatch.Say("I haven't said anything yet."), nil
	}
	return dispatch.Say(last), nil
}

func (s *Service) confused(_ context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Say(s.say(dialogue.Confused), "Say 'help' to see what I can do."), nil
}

var helpLines = []string{
	"Here's how we do business:",
	"  browse: 'what do you sell', 'show me armor', 'next'",
	"  trade: 'buy a dagger', 'sell my rope', 'haggle', 'yes' or 'no'",
	"  look: 'inspect the lute', 'cheapest weapons', 'what can I afford'",
	"  purse: 'balance', 'deposit 20 gold', 'withdraw 5 gold', 'ledger'",
	"  belongings: 'inventory', 'stash the rope', 'take back the rope', 'stash'",
	"  other: 'repeat', 'start over', 'goodbye'",
}

func (s *Service) help(_ context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Say(helpLines...), nil
}
