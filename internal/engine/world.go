package engine

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// The World Model: an immutable world package (rooms, objects, items, NPCs,
// puzzles, events, vocabulary) loaded once at startup. Nothing in this
// file is mutated after WorldPackage.Validate succeeds; all runtime
// mutation lives in the Overlay (state.go).

// GraphicsRef is an opaque handle into the world package's graphics table.
// The core never interprets or resolves it; it is carried for the host.
type GraphicsRef string

// Exit describes one directed connection out of a Room.
type Exit struct {
	TargetRoomID   string `yaml:"target_room_id" json:"target_room_id"`
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	LockedBy       string `yaml:"locked_by,omitempty" json:"locked_by,omitempty"`
	Condition      string `yaml:"condition,omitempty" json:"condition,omitempty"`
	BlockedMessage string `yaml:"blocked_message,omitempty" json:"blocked_message,omitempty"`
}

func (e Exit) Locked() bool { return e.LockedBy != "" }

// Room is one location in the world.
type Room struct {
	ID              string             `yaml:"id" json:"id"`
	Name            string             `yaml:"name" json:"name"`
	Description     string             `yaml:"description" json:"description"`
	Graphics        GraphicsRef        `yaml:"graphics,omitempty" json:"graphics,omitempty"`
	Exits           map[Direction]Exit `yaml:"exits,omitempty" json:"exits,omitempty"`
	ObjectIDs       []string           `yaml:"objects,omitempty" json:"objects,omitempty"`
	ItemIDs         []string           `yaml:"items,omitempty" json:"items,omitempty"`
	NPCIDs          []string           `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	EntryCondition  string             `yaml:"entry_condition,omitempty" json:"entry_condition,omitempty"`
	EntryBlockedMsg string             `yaml:"entry_blocked_message,omitempty" json:"entry_blocked_message,omitempty"`
	Events          []Event            `yaml:"events,omitempty" json:"events,omitempty"`
	CollisionGrid   [][]bool           `yaml:"collision_grid,omitempty" json:"collision_grid,omitempty"`
}

// PullStage is one step of a multi-stage pull interaction.
type PullStage struct {
	State   int    `yaml:"state" json:"state"`
	Message string `yaml:"message" json:"message"`
	Event   string `yaml:"event,omitempty" json:"event,omitempty"`
}

// TouchEffect is a sum-typed consequence of touching an Object.
type TouchEffect struct {
	Kind        TouchEffectKind `yaml:"kind" json:"kind"`
	Damage      int             `yaml:"damage,omitempty" json:"damage,omitempty"`
	Temperature string          `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Flag        string          `yaml:"flag,omitempty" json:"flag,omitempty"`
	FlagValue   any             `yaml:"flag_value,omitempty" json:"flag_value,omitempty"`
}

// Object is a piece of room furniture: scenery the player can interact
// with but that is not, by default, carried around.
type Object struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	Takeable   bool `yaml:"takeable,omitempty" json:"takeable,omitempty"`
	Openable   bool `yaml:"openable,omitempty" json:"openable,omitempty"`
	Lockable   bool `yaml:"lockable,omitempty" json:"lockable,omitempty"`
	Pushable   bool `yaml:"pushable,omitempty" json:"pushable,omitempty"`
	Pullable   bool `yaml:"pullable,omitempty" json:"pullable,omitempty"`
	Turnable   bool `yaml:"turnable,omitempty" json:"turnable,omitempty"`
	Searchable bool `yaml:"searchable,omitempty" json:"searchable,omitempty"`
	Readable   bool `yaml:"readable,omitempty" json:"readable,omitempty"`
	Container  bool `yaml:"container,omitempty" json:"container,omitempty"`
	Hidden     bool `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Blocking   bool `yaml:"blocking,omitempty" json:"blocking,omitempty"`

	Weight int `yaml:"weight,omitempty" json:"weight,omitempty"`
	Size   int `yaml:"size,omitempty" json:"size,omitempty"`

	OpenMessage       string `yaml:"open_message,omitempty" json:"open_message,omitempty"`
	PushMessage       string `yaml:"push_message,omitempty" json:"push_message,omitempty"`
	PullMessage       string `yaml:"pull_message,omitempty" json:"pull_message,omitempty"`
	ReadText          string `yaml:"read_text,omitempty" json:"read_text,omitempty"`
	SearchMessage     string `yaml:"search_message,omitempty" json:"search_message,omitempty"`
	SearchedMessage   string `yaml:"searched_message,omitempty" json:"searched_message,omitempty"`
	SearchFailMessage string `yaml:"search_fail_message,omitempty" json:"search_fail_message,omitempty"`
	TouchMessage      string `yaml:"touch_message,omitempty" json:"touch_message,omitempty"`
	Temperature       string `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Texture           string `yaml:"texture,omitempty" json:"texture,omitempty"`
	HiddenDetails     string `yaml:"hidden_details,omitempty" json:"hidden_details,omitempty"`

	RequiredItemID string                 `yaml:"required_item_id,omitempty" json:"required_item_id,omitempty"`
	PullStages     []PullStage            `yaml:"pull_stages,omitempty" json:"pull_stages,omitempty"`
	TurnPositions  []string               `yaml:"turn_positions,omitempty" json:"turn_positions,omitempty"`
	TurnMessages   map[string]string      `yaml:"turn_messages,omitempty" json:"turn_messages,omitempty"`
	TouchEffects   []TouchEffect          `yaml:"touch_effects,omitempty" json:"touch_effects,omitempty"`
	MoveToRoom     string                 `yaml:"move_to_room,omitempty" json:"move_to_room,omitempty"`
	HiddenItems    map[string][]string    `yaml:"hidden_items,omitempty" json:"hidden_items,omitempty"`
	PushEvent      string                 `yaml:"push_event,omitempty" json:"push_event,omitempty"`
	PullEvent      string                 `yaml:"pull_event,omitempty" json:"pull_event,omitempty"`
	TurnEvent      string                 `yaml:"turn_event,omitempty" json:"turn_event,omitempty"`
	SearchEvent    string                 `yaml:"search_event,omitempty" json:"search_event,omitempty"`
	Graphics       GraphicsRef            `yaml:"graphics,omitempty" json:"graphics,omitempty"`
}

// Item is a takeable thing.
type Item struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Weight      int    `yaml:"weight" json:"weight"`
	Size        int    `yaml:"size" json:"size"`

	Wearable bool   `yaml:"wearable,omitempty" json:"wearable,omitempty"`
	Slot     string `yaml:"slot,omitempty" json:"slot,omitempty"`

	Edible        bool `yaml:"edible,omitempty" json:"edible,omitempty"`
	EatMessage    string `yaml:"eat_message,omitempty" json:"eat_message,omitempty"`
	HealthRestore int  `yaml:"health_restore,omitempty" json:"health_restore,omitempty"`

	Drinkable   bool   `yaml:"drinkable,omitempty" json:"drinkable,omitempty"`
	DrinkMessage string `yaml:"drink_message,omitempty" json:"drink_message,omitempty"`

	Readable bool   `yaml:"readable,omitempty" json:"readable,omitempty"`
	Text     string `yaml:"text,omitempty" json:"text,omitempty"`

	Container bool `yaml:"container,omitempty" json:"container,omitempty"`
	Capacity  int  `yaml:"capacity,omitempty" json:"capacity,omitempty"`

	Value int `yaml:"value,omitempty" json:"value,omitempty"`
}

// DialogueOption is one branch of a DialogueNode.
type DialogueOption struct {
	ID                string   `yaml:"id" json:"id"`
	Text              string   `yaml:"text" json:"text"`
	Response          string   `yaml:"response,omitempty" json:"response,omitempty"`
	NextNodeID        string   `yaml:"next_node_id,omitempty" json:"next_node_id,omitempty"`
	EndsConversation  bool     `yaml:"ends_conversation,omitempty" json:"ends_conversation,omitempty"`
	Effects           []Action `yaml:"effects,omitempty" json:"effects,omitempty"`
	Condition         string   `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// DialogueNode is one node in an NPC's dialogue graph.
type DialogueNode struct {
	ID      string           `yaml:"id" json:"id"`
	Text    string           `yaml:"text" json:"text"`
	Options []DialogueOption `yaml:"options,omitempty" json:"options,omitempty"`
}

// Reaction is a trigger-keyed NPC response to a player action.
type Reaction struct {
	Trigger   string `yaml:"trigger" json:"trigger"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Message   string `yaml:"message" json:"message"`
	Emotion   string `yaml:"emotion,omitempty" json:"emotion,omitempty"`
	Effects   []Action `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// ScheduleEntry places an NPC in a room for an hour range.
type ScheduleEntry struct {
	StartHour int    `yaml:"start_hour" json:"start_hour"`
	EndHour   int    `yaml:"end_hour" json:"end_hour"`
	RoomID    string `yaml:"room_id" json:"room_id"`
}

// TradeRules gates NPC trading.
type TradeRules struct {
	RequiresItemIDs    []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	RequiresEqualValue bool     `yaml:"requires_equal_value,omitempty" json:"requires_equal_value,omitempty"`
	InsufficientValueMessage string `yaml:"insufficient_value_message,omitempty" json:"insufficient_value_message,omitempty"`
	MissingRequiredMessage   string `yaml:"missing_required_message,omitempty" json:"missing_required_message,omitempty"`
}

// NPC is a non-player character.
type NPC struct {
	ID              string                  `yaml:"id" json:"id"`
	Name            string                  `yaml:"name" json:"name"`
	Description     string                  `yaml:"description" json:"description"`
	HomeRoomID      string                  `yaml:"home_room_id" json:"home_room_id"`
	InventoryItemIDs []string               `yaml:"inventory,omitempty" json:"inventory,omitempty"`
	DialogueRootID  string                  `yaml:"dialogue_root_id,omitempty" json:"dialogue_root_id,omitempty"`
	Dialogue        map[string]DialogueNode `yaml:"dialogue,omitempty" json:"dialogue,omitempty"`
	Reactions       []Reaction              `yaml:"reactions,omitempty" json:"reactions,omitempty"`
	Trade           *TradeRules             `yaml:"trade,omitempty" json:"trade,omitempty"`
	Schedule        []ScheduleEntry         `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	GiveItemResponse map[string]string      `yaml:"give_item_response,omitempty" json:"give_item_response,omitempty"`
	Topics          map[string]string       `yaml:"topics,omitempty" json:"topics,omitempty"`
	ItemValues      map[string]int          `yaml:"item_values,omitempty" json:"item_values,omitempty"`
}

// PuzzleStep is one step of a multi-step puzzle.
type PuzzleStep struct {
	Solution string   `yaml:"solution" json:"solution"`
	Reward   []Action `yaml:"reward,omitempty" json:"reward,omitempty"`
	Message  string   `yaml:"message,omitempty" json:"message,omitempty"`
	Hint     string   `yaml:"hint,omitempty" json:"hint,omitempty"`
	Points   int      `yaml:"points,omitempty" json:"points,omitempty"`
}

// Puzzle is single- or multi-step (Steps non-empty => multi-step).
type Puzzle struct {
	ID                string       `yaml:"id" json:"id"`
	Trigger           *Trigger     `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Solution          string       `yaml:"solution,omitempty" json:"solution,omitempty"`
	Reward            []Action     `yaml:"reward,omitempty" json:"reward,omitempty"`
	Points            int          `yaml:"points,omitempty" json:"points,omitempty"`
	Steps             []PuzzleStep `yaml:"steps,omitempty" json:"steps,omitempty"`
	Hints             []string     `yaml:"hints,omitempty" json:"hints,omitempty"`
	SuccessMessage    string       `yaml:"success_message,omitempty" json:"success_message,omitempty"`
	FailureMessage    string       `yaml:"failure_message,omitempty" json:"failure_message,omitempty"`
	HintCooldownMs    int          `yaml:"hint_cooldown_ms,omitempty" json:"hint_cooldown_ms,omitempty"`
	NoReset           bool         `yaml:"no_reset,omitempty" json:"no_reset,omitempty"`
	ResetActions      []Action     `yaml:"reset_actions,omitempty" json:"reset_actions,omitempty"`
}

func (p Puzzle) IsMultiStep() bool { return len(p.Steps) > 0 }

func (p Puzzle) HintCooldown() int {
	if p.HintCooldownMs > 0 {
		return p.HintCooldownMs
	}
	return 30000
}

// Trigger is a wildcard-field pattern matched against a structured command.
// Unspecified (empty string) fields are wildcards.
type Trigger struct {
	Verb           Verb   `yaml:"verb,omitempty" json:"verb,omitempty"`
	DirectObject   string `yaml:"direct_object,omitempty" json:"direct_object,omitempty"`
	IndirectObject string `yaml:"indirect_object,omitempty" json:"indirect_object,omitempty"`
	Preposition    string `yaml:"preposition,omitempty" json:"preposition,omitempty"`
}

func (t Trigger) Matches(c Command) bool {
	if t.Verb != "" && t.Verb != c.Verb {
		return false
	}
	if t.DirectObject != "" && !sameNoun(t.DirectObject, c.DirectObject) {
		return false
	}
	if t.IndirectObject != "" && !sameNoun(t.IndirectObject, c.IndirectObject) {
		return false
	}
	if t.Preposition != "" && t.Preposition != c.Preposition {
		return false
	}
	return true
}

func sameNoun(want, got string) bool {
	return want != "" && got != "" && want == got
}

// Action is the tagged-variant side-effect vocabulary shared by the event
// arbiter and the interaction matrix. Only the fields that matter for
// Kind are populated; the rest are zero.
type Action struct {
	Kind ActionKind `yaml:"kind" json:"kind"`

	Text           string `yaml:"text,omitempty" json:"text,omitempty"`
	PreventDefault bool   `yaml:"prevent_default,omitempty" json:"prevent_default,omitempty"`
	Audio          string `yaml:"audio,omitempty" json:"audio,omitempty"`

	ItemID string `yaml:"item_id,omitempty" json:"item_id,omitempty"`

	Flag      string `yaml:"flag,omitempty" json:"flag,omitempty"`
	FlagValue any    `yaml:"flag_value,omitempty" json:"flag_value,omitempty"`

	Points int `yaml:"points,omitempty" json:"points,omitempty"`

	SoundID string `yaml:"sound_id,omitempty" json:"sound_id,omitempty"`
	ThemeID string `yaml:"theme_id,omitempty" json:"theme_id,omitempty"`

	EventName string `yaml:"event_name,omitempty" json:"event_name,omitempty"`

	RoomID    string    `yaml:"room_id,omitempty" json:"room_id,omitempty"`
	Direction Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
	ExitState bool      `yaml:"exit_state,omitempty" json:"exit_state,omitempty"`

	EndingID string `yaml:"ending_id,omitempty" json:"ending_id,omitempty"`

	CustomName   string         `yaml:"custom_name,omitempty" json:"custom_name,omitempty"`
	CustomParams map[string]any `yaml:"custom_params,omitempty" json:"custom_params,omitempty"`
}

// Event is a declarative script: trigger + condition + ordered actions.
type Event struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Trigger   *Trigger `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Condition string   `yaml:"condition,omitempty" json:"condition,omitempty"`
	Actions   []Action `yaml:"actions" json:"actions"`
}

// AchievementDef describes one achievement predicate.
type AchievementDef struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Kind        AchievementKind `yaml:"kind" json:"kind"`
	Condition   string          `yaml:"condition,omitempty" json:"condition,omitempty"`
	Target      int             `yaml:"target,omitempty" json:"target,omitempty"`
	ProgressKey string          `yaml:"progress_key,omitempty" json:"progress_key,omitempty"`
	Requires    []string        `yaml:"requires,omitempty" json:"requires,omitempty"` // meta: other achievement ids
	Points      int             `yaml:"points,omitempty" json:"points,omitempty"`
}

// EndingDef describes one possible ending.
type EndingDef struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Priority  int    `yaml:"priority" json:"priority"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	IsFailure bool   `yaml:"is_failure,omitempty" json:"is_failure,omitempty"`
	IsDefault bool   `yaml:"is_default,omitempty" json:"is_default,omitempty"`
	Message   string `yaml:"message" json:"message"`
}

// UseCombination: two input items yield a result item.
type UseCombination struct {
	Inputs       [2]string `yaml:"inputs" json:"inputs"`
	ResultItemID string    `yaml:"result_item_id,omitempty" json:"result_item_id,omitempty"`
	ConsumeInputs bool     `yaml:"consume_inputs,omitempty" json:"consume_inputs,omitempty"`
	SuccessMessage string  `yaml:"success_message,omitempty" json:"success_message,omitempty"`
	Effects      []Action  `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// UseOnRule: `use X on Y`.
type UseOnRule struct {
	ItemID         string   `yaml:"item_id" json:"item_id"`
	TargetID       string   `yaml:"target_id" json:"target_id"`
	Condition      string   `yaml:"condition,omitempty" json:"condition,omitempty"`
	SuccessMessage string   `yaml:"success_message,omitempty" json:"success_message,omitempty"`
	FailureMessage string   `yaml:"failure_message,omitempty" json:"failure_message,omitempty"`
	ConsumeItem    bool     `yaml:"consume_item,omitempty" json:"consume_item,omitempty"`
	Effects        []Action `yaml:"effects,omitempty" json:"effects,omitempty"`
	Hint           string   `yaml:"hint,omitempty" json:"hint,omitempty"`
}

// UnlockRule: key item unlocks a lock id (an Object id or an exit's LockedBy key).
type UnlockRule struct {
	KeyItemID   string `yaml:"key_item_id" json:"key_item_id"`
	LockID      string `yaml:"lock_id" json:"lock_id"`
	ConsumeKey  bool   `yaml:"consume_key,omitempty" json:"consume_key,omitempty"`
	SetFlag     string `yaml:"set_flag,omitempty" json:"set_flag,omitempty"`
	UnlocksExitRoomID string    `yaml:"unlocks_exit_room_id,omitempty" json:"unlocks_exit_room_id,omitempty"`
	UnlocksExitDir    Direction `yaml:"unlocks_exit_direction,omitempty" json:"unlocks_exit_direction,omitempty"`
	SuccessMessage string `yaml:"success_message,omitempty" json:"success_message,omitempty"`
}

// InteractionMatrix groups the use-on, combination, and unlock tables.
type InteractionMatrix struct {
	UseOn        []UseOnRule      `yaml:"use_on,omitempty" json:"use_on,omitempty"`
	Combinations []UseCombination `yaml:"combinations,omitempty" json:"combinations,omitempty"`
	Unlocks      []UnlockRule     `yaml:"unlocks,omitempty" json:"unlocks,omitempty"`
}

// Vocabulary holds the parser's lookup tables, authored per world package
// so different worlds can extend verb synonyms/aliases without touching
// engine code.
type Vocabulary struct {
	Aliases         map[string][]string  `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	VerbSynonyms    map[Verb][]string    `yaml:"verb_synonyms,omitempty" json:"verb_synonyms,omitempty"`
	NounAdjectives  map[string][]string  `yaml:"noun_adjectives,omitempty" json:"noun_adjectives,omitempty"`
}

// WorldPackage is the complete immutable bundle describing one adventure.
type WorldPackage struct {
	ID          string              `yaml:"id" json:"id"`
	Title       string              `yaml:"title" json:"title"`
	StartRoomID string              `yaml:"start_room_id" json:"start_room_id"`
	MaxWeight   int                 `yaml:"max_weight" json:"max_weight"`
	MaxSize     int                 `yaml:"max_size" json:"max_size"`
	MaxItems    int                 `yaml:"max_items" json:"max_items"`
	MaxHealth   int                 `yaml:"max_health" json:"max_health"`
	MaxScore    int                 `yaml:"max_score" json:"max_score"`

	Rooms   map[string]Room   `yaml:"rooms" json:"rooms"`
	Objects map[string]Object `yaml:"objects" json:"objects"`
	Items   map[string]Item   `yaml:"items" json:"items"`
	NPCs    map[string]NPC    `yaml:"npcs" json:"npcs"`
	Puzzles map[string]Puzzle `yaml:"puzzles" json:"puzzles"`

	GlobalEvents []Event            `yaml:"global_events,omitempty" json:"global_events,omitempty"`
	Achievements []AchievementDef   `yaml:"achievements,omitempty" json:"achievements,omitempty"`
	Endings      []EndingDef        `yaml:"endings,omitempty" json:"endings,omitempty"`
	Interactions InteractionMatrix  `yaml:"interactions,omitempty" json:"interactions,omitempty"`
	Vocabulary   Vocabulary         `yaml:"vocabulary,omitempty" json:"vocabulary,omitempty"`

	// LuaScripts maps a custom action name (Action.CustomName) to Lua
	// source implementing it. Optional: worlds with no irregular puzzle
	// logic need not define any.
	LuaScripts map[string]string `yaml:"lua_scripts,omitempty" json:"lua_scripts,omitempty"`

	Digest string `yaml:"-" json:"-"`
}

// Validate checks that every exit target exists, every referenced
// object/item/npc id exists, and that every lockable object is also
// openable. Every failure collected is returned together via
// multierr so a world author sees the whole list in one pass instead of
// one-at-a-time.
func (w *WorldPackage) Validate() error {
	var errs error
	if w.StartRoomID != "" {
		if _, ok := w.Rooms[w.StartRoomID]; !ok {
			errs = multierr.Append(errs, &WorldLoadError{Field: "start_room_id", Detail: fmt.Sprintf("unknown room %q", w.StartRoomID)})
		}
	}
	for id, room := range w.Rooms {
		if room.ID != id {
			errs = multierr.Append(errs, &WorldLoadError{Field: "rooms", Detail: fmt.Sprintf("room key %q does not match id %q", id, room.ID)})
		}
		for dir, exit := range room.Exits {
			if _, ok := w.Rooms[exit.TargetRoomID]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: fmt.Sprintf("room:%s:exit:%s", id, dir), To: exit.TargetRoomID})
			}
		}
		for _, oid := range room.ObjectIDs {
			if _, ok := w.Objects[oid]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: "room:" + id, To: "object:" + oid})
			}
		}
		for _, iid := range room.ItemIDs {
			if _, ok := w.Items[iid]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: "room:" + id, To: "item:" + iid})
			}
		}
		for _, nid := range room.NPCIDs {
			if _, ok := w.NPCs[nid]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: "room:" + id, To: "npc:" + nid})
			}
		}
	}
	for id, obj := range w.Objects {
		if obj.ID != id {
			errs = multierr.Append(errs, &WorldLoadError{Field: "objects", Detail: fmt.Sprintf("object key %q does not match id %q", id, obj.ID)})
		}
		if obj.Openable && obj.OpenMessage == "" {
			// Capability without behavior text is allowed to fall back to a
			// generic default at dispatch time; only flag truly inconsistent
			// states (e.g. a lockable object that isn't openable).
		}
		if obj.Lockable && !obj.Openable {
			errs = multierr.Append(errs, &WorldLoadError{Field: "objects." + id, Detail: "lockable requires openable"})
		}
		for _, items := range obj.HiddenItems {
			for _, refID := range items {
				if _, ok := w.Items[refID]; ok {
					continue
				}
				if _, ok := w.Objects[refID]; ok {
					continue
				}
				errs = multierr.Append(errs, &DanglingReferenceError{From: "object:" + id, To: refID})
			}
		}
	}
	for id, npc := range w.NPCs {
		if npc.ID != id {
			errs = multierr.Append(errs, &WorldLoadError{Field: "npcs", Detail: fmt.Sprintf("npc key %q does not match id %q", id, npc.ID)})
		}
		if npc.HomeRoomID != "" {
			if _, ok := w.Rooms[npc.HomeRoomID]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: "npc:" + id, To: "room:" + npc.HomeRoomID})
			}
		}
		for _, sc := range npc.Schedule {
			if _, ok := w.Rooms[sc.RoomID]; !ok {
				errs = multierr.Append(errs, &DanglingReferenceError{From: "npc:" + id + ":schedule", To: "room:" + sc.RoomID})
			}
		}
	}
	return errs
}

// RoomByID returns the room, or (Room{}, false) if unknown.
func (w *WorldPackage) RoomByID(id string) (Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// NPCOrder returns every NPC id in a stable, sorted order so tick-driven
// bookkeeping (schedule advancement, movement patterns) iterates the same
// way on every run regardless of map iteration order, per the fixed-step
// determinism invariant.
func (w *WorldPackage) NPCOrder() []string {
	ids := make([]string, 0, len(w.NPCs))
	for id := range w.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PuzzleOrder returns every puzzle id in a stable, sorted order so that
// when more than one puzzle's Trigger matches the same command,
// matchingPuzzle always picks the same one on every run.
func (w *WorldPackage) PuzzleOrder() []string {
	ids := make([]string, 0, len(w.Puzzles))
	for id := range w.Puzzles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
