package dialogue

func gruff() Personality {
	return Personality{
		Description:    "a weathered dwarf who counts every copper twice",
		HaggleDC:       15,
		MinDiscountPct: 5,
		MaxDiscountPct: 10,
		lines: map[Line][]string{
			Welcome:     {"Welcome to {shop}. I'm {keeper}. Buy something or stop blocking the door.", "{keeper}. {shop}. What do you want?"},
			WelcomeBack: {"You again. What is it this time?", "Back already? Coin first, chatter later."},
			Farewell:    {"Mind the step on your way out.", "Off with you, then."},
			Thanks:      {"Hmph. Don't mention it.", "Aye, aye."},
			Confused:    {"I didn't follow that. Buying, selling, or wasting my time?", "Speak plainly. Say 'help' if you're lost."},
			Apology:     {"Something's gone wrong with my books. Try me again in a moment."},
			HaggleWin:   {"Fine. You drive a hard bargain.", "Bah. Have it your way, just this once."},
			HaggleLose:  {"Ha! Not a chance.", "The price is the price."},
			NoMoreDeals: {"No more deals today. Come back tomorrow.", "I've haggled enough with you for one day."},
			Broke:       {"Your purse says otherwise. Come back when you've the coin."},
			Purchased:   {"Done. Don't come crying if you break it.", "It's yours. No refunds."},
			Bought:      {"I'll take it off your hands.", "Fair enough, it's mine now."},
			SmallTalk:   {"Business is business. Yours better be buying."},
			Joke:        {"A joke? The prices here are the joke, according to you lot."},
			Compliment:  {"Hmph. It'll do."},
			Insult:      {"Say that again and the prices go up."},
			Weather:     {"Wet. Cold. Same as always."},
			BigSpend:    {"Now that's a proper purchase. Don't spend it all in one place. Oh wait."},
			LowPurse:    {"Your purse is nearly empty. I don't run a charity."},
		},
	}
}

func cheerful() Personality {
	return Personality{
		Description:    "a beaming halfling who loves a chat",
		HaggleDC:       10,
		MinDiscountPct: 5,
		MaxDiscountPct: 15,
		lines: map[Line][]string{
			Welcome:     {"Hello and welcome to {shop}! I'm {keeper}, how can I help?", "Oh, a customer! Welcome to {shop}!"},
			WelcomeBack: {"Welcome back, friend! Lovely to see you again.", "You're back! I was hoping you'd come by."},
			Farewell:    {"Safe travels, and come back soon!", "Bye now! Mind the goblins."},
			Thanks:      {"You're very welcome!", "My pleasure, truly!"},
			Confused:    {"Oh dear, I didn't quite catch that. Try 'help' for ideas!", "Sorry, love, could you say that another way?"},
			Apology:     {"Oh no, my ledger's in a muddle. Give me a moment and try again?"},
			HaggleWin:   {"Oh, go on then, for you!", "You've talked me into it!"},
			HaggleLose:  {"I'm sorry, I really can't go lower on that one.", "Oh, I wish I could, but no."},
			NoMoreDeals: {"I've given all the deals I can today, sorry! Tomorrow, maybe?"},
			Broke:       {"Oh, it looks like you're a little short. No rush, come back later!"},
			Purchased:   {"Wonderful choice! Enjoy it!", "It's all yours. Happy adventuring!"},
			Bought:      {"Thank you, I'll find it a good home!"},
			SmallTalk:   {"Business is lovely, thank you for asking! And you?", "Busy, busy, but I love it."},
			Joke:        {"Why did the mimic fail its job interview? It kept trying to be something it wasn't!"},
			Compliment:  {"Aww, you're too kind!"},
			Insult:      {"Well, that's not very nice. I'll pretend I didn't hear it."},
			Weather:     {"Beautiful out, isn't it? Perfect day for an adventure."},
			BigSpend:    {"My goodness, what a splendid purchase!"},
			LowPurse:    {"Careful now, your purse is getting light!"},
		},
	}
}

func shrewd() Personality {
	return Personality{
		Description:    "a sharp-eyed merchant who never misses a margin",
		HaggleDC:       18,
		MinDiscountPct: 10,
		MaxDiscountPct: 20,
		lines: map[Line][]string{
			Welcome:     {"Welcome to {shop}. {keeper}, at your service. Everything here has a price.", "Ah, a customer. {keeper} of {shop}. Let's do business."},
			WelcomeBack: {"A returning customer. I remember your purse, if not your face."},
			Farewell:    {"A pleasure doing business.", "Until next time. Bring more coin."},
			Thanks:      {"Gratitude is free. Everything else isn't."},
			Confused:    {"I deal in goods, not riddles. Say 'help' if you need the list."},
			Apology:     {"My accounts are out of balance for the moment. Try again shortly."},
			HaggleWin:   {"Very well. A small concession, for a valued customer.", "You've earned a little margin. Don't tell anyone."},
			HaggleLose:  {"I know exactly what that's worth. So do you.", "No. But I admire the attempt."},
			NoMoreDeals: {"My generosity has a daily limit, and you've found it."},
			Broke:       {"You can't afford that. I checked."},
			Purchased:   {"An excellent investment.", "Sold. A fine addition to your kit."},
			Bought:      {"I'll take it at that price. Pleasure."},
			SmallTalk:   {"Trade is brisk. Caravans from the south are paying well."},
			Joke:        {"The best joke I know is the price the last merchant charged you."},
			Compliment:  {"Flattery is noted. Prices are unchanged."},
			Insult:      {"Insults don't lower prices. Coin does."},
			Weather:     {"Weather is bad for roads and good for my umbrella sales."},
			BigSpend:    {"A purchase of quality. You have taste."},
			LowPurse:    {"Your purse is thinning. Consider selling something."},
		},
	}
}
