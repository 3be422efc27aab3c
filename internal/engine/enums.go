package engine

// String-backed enums throughout so save snapshots and the world package
// round-trip through JSON/YAML without a translation layer.

// Direction is a canonical compass/vertical exit direction.
type Direction string

const (
	DirNorth     Direction = "north"
	DirSouth     Direction = "south"
	DirEast      Direction = "east"
	DirWest      Direction = "west"
	DirNortheast Direction = "northeast"
	DirNorthwest Direction = "northwest"
	DirSoutheast Direction = "southeast"
	DirSouthwest Direction = "southwest"
	DirUp        Direction = "up"
	DirDown      Direction = "down"
	DirIn        Direction = "in"
	DirOut       Direction = "out"
)

var AllDirections = []Direction{
	DirNorth, DirSouth, DirEast, DirWest,
	DirNortheast, DirNorthwest, DirSoutheast, DirSouthwest,
	DirUp, DirDown, DirIn, DirOut,
}

func (d Direction) Valid() bool { return contains(AllDirections, d) }

// Verb is one of the closed set of canonical actions the dispatcher
// understands. Synonyms and aliases are resolved to these by the parser
// before the dispatcher ever sees a command.
type Verb string

const (
	VerbLook      Verb = "look"
	VerbExamine   Verb = "examine"
	VerbTake      Verb = "take"
	VerbDrop      Verb = "drop"
	VerbInventory Verb = "inventory"
	VerbGo        Verb = "go"
	VerbUse       Verb = "use"
	VerbOpen      Verb = "open"
	VerbClose     Verb = "close"
	VerbLock      Verb = "lock"
	VerbUnlock    Verb = "unlock"
	VerbPush      Verb = "push"
	VerbPull      Verb = "pull"
	VerbTurn      Verb = "turn"
	VerbTouch     Verb = "touch"
	VerbSearch    Verb = "search"
	VerbRead      Verb = "read"
	VerbEat       Verb = "eat"
	VerbDrink     Verb = "drink"
	VerbTalk      Verb = "talk"
	VerbAsk       Verb = "ask"
	VerbGive      Verb = "give"
	VerbWear      Verb = "wear"
	VerbRemove    Verb = "remove"
	VerbPut       Verb = "put"
	VerbSave      Verb = "save"
	VerbLoad      Verb = "load"
	VerbHelp      Verb = "help"
	VerbScore     Verb = "score"
	VerbWait      Verb = "wait"
	VerbYell      Verb = "yell"
	VerbRestart   Verb = "restart"
	VerbQuit      Verb = "quit"
	VerbTrade     Verb = "trade"
)

var AllVerbs = []Verb{
	VerbLook, VerbExamine, VerbTake, VerbDrop, VerbInventory, VerbGo, VerbUse,
	VerbOpen, VerbClose, VerbLock, VerbUnlock, VerbPush, VerbPull, VerbTurn,
	VerbTouch, VerbSearch, VerbRead, VerbEat, VerbDrink, VerbTalk, VerbAsk,
	VerbGive, VerbWear, VerbRemove, VerbPut, VerbSave, VerbLoad, VerbHelp,
	VerbScore, VerbWait, VerbYell, VerbRestart, VerbQuit, VerbTrade,
}

func (v Verb) Valid() bool { return contains(AllVerbs, v) }

// NounKind tags what a resolved reference actually points at.
type NounKind string

const (
	KindItem      NounKind = "item"
	KindObject    NounKind = "object"
	KindNPC       NounKind = "npc"
	KindDirection NounKind = "direction"
	KindString    NounKind = "string"
	KindSpecial   NounKind = "special"
	KindUnknown   NounKind = "unknown"
)

// Mood is derived from NPC relationship value; see Relationship.Mood.
type Mood string

const (
	MoodFriendly Mood = "friendly"
	MoodNeutral  Mood = "neutral"
	MoodWary     Mood = "wary"
	MoodHostile  Mood = "hostile"
)

// AchievementKind distinguishes how an achievement is evaluated.
type AchievementKind string

const (
	AchievementInstant     AchievementKind = "instant"
	AchievementProgressive AchievementKind = "progressive"
	AchievementMeta        AchievementKind = "meta"
)

// TouchEffectKind enumerates the sum-typed touchEffects on Object.
type TouchEffectKind string

const (
	TouchDamage      TouchEffectKind = "damage"
	TouchTemperature TouchEffectKind = "temperature"
	TouchElectric    TouchEffectKind = "electric"
	TouchSticky      TouchEffectKind = "sticky"
	TouchSetFlag     TouchEffectKind = "set_flag"
)

// ActionKind enumerates the sum-typed Action vocabulary shared by the
// event arbiter and the interaction matrix.
type ActionKind string

const (
	ActionShowMessage  ActionKind = "show_message"
	ActionGiveItem     ActionKind = "give_item"
	ActionRemoveItem   ActionKind = "remove_item"
	ActionSetFlag      ActionKind = "set_flag"
	ActionUpdateScore  ActionKind = "update_score"
	ActionPlaySound    ActionKind = "play_sound"
	ActionPlayMusic    ActionKind = "play_music"
	ActionTriggerEvent ActionKind = "trigger_event"
	ActionChangeRoom   ActionKind = "change_room"
	ActionEnableExit   ActionKind = "enable_exit"
	ActionRevealItem   ActionKind = "reveal_item"
	ActionEndGame      ActionKind = "end_game"
	ActionCustom       ActionKind = "custom"
)

// Generic helpers shared by every enum above.
func contains[T ~string](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
