package parser

import "github.com/nathoo/shopkeep/types"

// Intents recognised by the shop.
const (
	Unknown               types.Intent = "UNKNOWN"
	CheckBalance          types.Intent = "CHECK_BALANCE"
	ViewLedger            types.Intent = "VIEW_LEDGER"
	ViewAccount           types.Intent = "VIEW_ACCOUNT"
	DepositGold           types.Intent = "DEPOSIT_GOLD"
	WithdrawGold          types.Intent = "WITHDRAW_GOLD"
	ViewProfile           types.Intent = "VIEW_PROFILE"
	ViewParty             types.Intent = "VIEW_PARTY"
	ViewInventory         types.Intent = "VIEW_INVENTORY"
	ViewStash             types.Intent = "VIEW_STASH"
	StashItem             types.Intent = "STASH_ITEM"
	UnstashItem           types.Intent = "UNSTASH_ITEM"
	SellItem              types.Intent = "SELL_ITEM"
	BuyItem               types.Intent = "BUY_ITEM"
	InspectItem           types.Intent = "INSPECT_ITEM"
	Haggle                types.Intent = "HAGGLE"
	Confirm               types.Intent = "CONFIRM"
	Cancel                types.Intent = "CANCEL"
	ResetConversation     types.Intent = "RESET_CONVERSATION"
	NextPage              types.Intent = "NEXT_PAGE"
	PreviousPage          types.Intent = "PREVIOUS_PAGE"
	ViewCheapest          types.Intent = "VIEW_CHEAPEST"
	ViewMostExpensive     types.Intent = "VIEW_MOST_EXPENSIVE"
	ViewAffordable        types.Intent = "VIEW_AFFORDABLE"
	ViewWeaponCategory    types.Intent = "VIEW_WEAPON_CATEGORY"
	ViewArmorCategory     types.Intent = "VIEW_ARMOR_CATEGORY"
	ViewGearCategory      types.Intent = "VIEW_GEAR_CATEGORY"
	ViewToolCategory      types.Intent = "VIEW_TOOL_CATEGORY"
	ViewTreasureCategory  types.Intent = "VIEW_TREASURE_CATEGORY"
	ViewEquipmentCategory types.Intent = "VIEW_EQUIPMENT_CATEGORY"
	ViewItems             types.Intent = "VIEW_ITEMS"
	RecommendItem         types.Intent = "RECOMMEND_ITEM"
	Help                  types.Intent = "HELP"
	RepeatLast            types.Intent = "REPEAT_LAST"
	ShopName              types.Intent = "SHOP_NAME"
	ShopkeeperName        types.Intent = "SHOPKEEPER_NAME"
	ShopkeeperInfo        types.Intent = "SHOPKEEPER_INFO"
	ShopHours             types.Intent = "SHOP_HOURS"
	LocationInfo          types.Intent = "LOCATION_INFO"
	Rumours               types.Intent = "RUMOURS"
	Weather               types.Intent = "WEATHER"
	SmallTalk             types.Intent = "SMALL_TALK"
	Joke                  types.Intent = "JOKE"
	Compliment            types.Intent = "COMPLIMENT"
	Insult                types.Intent = "INSULT"
	Gratitude             types.Intent = "GRATITUDE"
	Goodbye               types.Intent = "GOODBYE"
	Greeting              types.Intent = "GREETING"
)

// Preference is the total tie-break order, most important first. Ledger and
// account intents outrank transactions, which outrank browsing, which outranks
// social chatter.
var Preference = []types.Intent{
	CheckBalance,
	ViewLedger,
	ViewAccount,
	DepositGold,
	WithdrawGold,
	ViewProfile,
	ViewParty,
	ViewInventory,
	ViewStash,
	StashItem,
	UnstashItem,
	SellItem,
	BuyItem,
	InspectItem,
	Haggle,
	Confirm,
	Cancel,
	ResetConversation,
	NextPage,
	PreviousPage,
	ViewCheapest,
	ViewMostExpensive,
	ViewAffordable,
	ViewWeaponCategory,
	ViewArmorCategory,
	ViewGearCategory,
	ViewToolCategory,
	ViewTreasureCategory,
	ViewEquipmentCategory,
	ViewItems,
	RecommendItem,
	Help,
	RepeatLast,
	ShopName,
	ShopkeeperName,
	ShopkeeperInfo,
	ShopHours,
	LocationInfo,
	Rumours,
	Weather,
	SmallTalk,
	Joke,
	Compliment,
	Insult,
	Gratitude,
	Goodbye,
	Greeting,
}

// Keywords maps every rankable intent to its normalized keywords and phrases.
var Keywords = map[types.Intent][]string{
	CheckBalance:  {"balance", "how much gold", "how much money", "funds", "purse", "coins do we have", "gold do we have", "money do we have", "how rich"},
	ViewLedger:    {"ledger", "transactions", "history", "receipts", "records", "statement", "purchase history"},
	ViewAccount:   {"account", "bank account", "my account", "account details", "savings"},
	DepositGold:   {"deposit", "put in", "pay in", "store gold", "save gold", "add gold", "add money"},
	WithdrawGold:  {"withdraw", "take out gold", "cash out", "withdrawal", "take gold out", "get my gold"},
	ViewProfile:   {"profile", "who am i", "my character", "character sheet", "my stats", "about me"},
	ViewParty:     {"party", "my party", "our party", "party members", "the group"},
	ViewInventory: {"inventory", "what do we own", "what do i own", "our items", "my items", "belongings", "what do we carry", "bag"},
	ViewStash:     {"view stash", "show stash", "my stash", "our stash", "whats in the stash", "stashed", "storage"},
	StashItem:     {"stash", "store", "put away", "keep this", "leave this", "deposit item"},
	UnstashItem:   {"unstash", "retrieve", "take back", "collect", "take out", "get back", "reclaim"},
	SellItem:      {"sell", "trade in", "pawn", "offload", "get rid of", "sell off", "what will you give", "how much will you give"},
	BuyItem:       {"buy", "purchase", "get", "take", "want", "acquire", "grab", "order", "pick up"},
	InspectItem:   {"inspect", "examine", "look at", "describe", "details", "tell me about", "info on", "what is", "how much is", "price of"},
	Haggle:        {"haggle", "discount", "better deal", "bargain", "cheaper", "lower the price", "negotiate", "better price", "too expensive"},
	Confirm:       {"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "aye", "deal", "its a deal"},
	Cancel:        {"no", "no deal", "nope", "cancel", "nevermind", "never mind", "forget it", "changed my mind", "stop"},

	ResetConversation: {"start over", "reset", "restart", "begin again", "from the top"},
	NextPage:          {"next", "more", "next page", "show more", "continue", "keep going"},
	PreviousPage:      {"previous", "back", "prev", "previous page", "go back", "last page"},
	ViewCheapest:      {"cheapest", "least expensive", "lowest price", "budget"},
	ViewMostExpensive: {"most expensive", "priciest", "best item", "finest", "luxury"},
	ViewAffordable:    {"afford", "can we afford", "within budget", "in our price range"},

	ViewWeaponCategory:    {"melee", "ranged", "simple weapons", "martial weapons", "simple", "martial"},
	ViewArmorCategory:     {"light armor", "medium armor", "heavy armor", "shields", "shield", "light", "medium", "heavy"},
	ViewGearCategory:      {"ammunition", "arcane focus", "druidic focus", "holy symbol", "kits", "equipment pack", "adventuring gear"},
	ViewToolCategory:      {"artisans tools", "musical instrument", "musical instruments", "gaming set", "gaming sets", "instruments", "toolkit"},
	ViewTreasureCategory:  {"gems", "gemstones", "art objects", "jewelry", "trinkets", "valuables"},
	ViewEquipmentCategory: {"weapons", "weapon", "armor", "armour", "gear", "tools", "treasure", "equipment", "arms"},
	ViewItems:             {"show", "catalog", "catalogue", "wares", "what do you sell", "what do you have", "browse", "list", "goods", "stock"},

	RecommendItem:  {"recommend", "suggest", "suggestion", "what should i", "advice", "best for"},
	Help:           {"help", "commands", "how does this work", "what can i do", "options", "instructions"},
	RepeatLast:     {"repeat", "say again", "say that again", "pardon", "come again", "what did you say"},
	ShopName:       {"shop name", "name of the shop", "whats this place", "what shop", "store name", "this shop called"},
	ShopkeeperName: {"your name", "whats your name", "who are you", "what are you called", "name"},
	ShopkeeperInfo: {"about yourself", "yourself", "your story", "how long", "background", "where are you from"},
	ShopHours:      {"hours", "open", "close", "closing", "when do you open", "opening"},
	LocationInfo:   {"where are we", "this town", "location", "where is", "directions", "nearby", "around here"},
	Rumours:        {"rumour", "rumours", "rumor", "rumors", "gossip", "news", "heard anything", "whats new"},
	Weather:        {"weather", "rain", "sunny", "cold out", "storm"},
	SmallTalk:      {"how are you", "hows business", "how is business", "whats up", "how goes it", "how have you been", "busy day"},
	Joke:           {"joke", "funny", "make me laugh", "tell me something funny"},
	Compliment:     {"nice shop", "great shop", "love this place", "lovely", "beautiful", "impressive", "well stocked"},
	Insult:         {"rip off", "ripoff", "scam", "thief", "cheat", "swindler", "idiot", "ugly", "terrible shop"},
	Gratitude:      {"thanks", "thank you", "thank", "cheers", "appreciate", "ta", "much obliged"},
	Goodbye:        {"bye", "goodbye", "farewell", "see you", "later", "leaving", "gotta go", "so long"},
	Greeting:       {"hello", "hi", "hey", "greetings", "good morning", "good evening", "good afternoon", "howdy", "hail", "well met"},
}

// CategoryIntents maps a taxonomy kind to the intent that browses it.
var CategoryIntents = map[types.CategoryKind]types.Intent{
	types.KindEquipment: ViewEquipmentCategory,
	types.KindWeapon:    ViewWeaponCategory,
	types.KindArmor:     ViewArmorCategory,
	types.KindGear:      ViewGearCategory,
	types.KindTool:      ViewToolCategory,
	types.KindTreasure:  ViewTreasureCategory,
}

// IntentKinds is the inverse of CategoryIntents.
var IntentKinds = map[types.Intent]types.CategoryKind{
	ViewEquipmentCategory: types.KindEquipment,
	ViewWeaponCategory:    types.KindWeapon,
	ViewArmorCategory:     types.KindArmor,
	ViewGearCategory:      types.KindGear,
	ViewToolCategory:      types.KindTool,
	ViewTreasureCategory:  types.KindTreasure,
}
