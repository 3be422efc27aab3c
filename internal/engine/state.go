package engine

import "fmt"

// The Overlay is the mutable run state layered on top of an immutable
// WorldPackage: current room, inventory, worn items, container contents,
// flags, score, moves, and the bookkeeping the puzzle/NPC/progression
// engines need. SaveSnapshot is its JSON-serializable projection.

// FlagStore holds boolean/numeric/string world-state flags. Once a flag's
// value is first set, later writes must use the same underlying type; the
// condition-expression evaluator reads a flag as a boolean, or as an
// integer inside a comparison (==, !=, <, ...), and the event Action
// vocabulary can stash arbitrary scalars (counters, strings) under a flag
// name too.
type FlagStore struct {
	values map[string]any
}

func NewFlagStore() *FlagStore { return &FlagStore{values: make(map[string]any)} }

func (f *FlagStore) Get(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *FlagStore) Bool(name string) bool {
	v, ok := f.values[name]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (f *FlagStore) Int(name string) int {
	v, ok := f.values[name]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (f *FlagStore) String(name string) string {
	v, ok := f.values[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set stores a value, erroring if it would change the flag's type.
func (f *FlagStore) Set(name string, value any) error {
	if existing, ok := f.values[name]; ok {
		if fmt.Sprintf("%T", existing) != fmt.Sprintf("%T", value) {
			return fmt.Errorf("flag %q: cannot change type from %T to %T", name, existing, value)
		}
	}
	f.values[name] = value
	return nil
}

// SetForce stores a value unconditionally, used by save restore where the
// snapshot is trusted to already be internally consistent.
func (f *FlagStore) SetForce(name string, value any) { f.values[name] = value }

func (f *FlagStore) Snapshot() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *FlagStore) Restore(values map[string]any) {
	f.values = make(map[string]any, len(values))
	for k, v := range values {
		f.values[k] = v
	}
}

// CarriedItem is one stack entry in inventory or a container.
type CarriedItem struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// ContainerContents maps a container id (an Object or Item id) to the
// items held inside it.
type ContainerContents map[string][]CarriedItem

// Relationship tracks the player's standing with one NPC.
type Relationship struct {
	Value int `json:"value"` // -100..100
}

func (r Relationship) Mood() Mood {
	switch {
	case r.Value >= 50:
		return MoodFriendly
	case r.Value >= 0:
		return MoodNeutral
	case r.Value >= -50:
		return MoodWary
	default:
		return MoodHostile
	}
}

// TradeRecord is one completed NPC trade, appended to Overlay.TradeHistory
// for post-hoc inspection (e.g. an achievement counting trades).
type TradeRecord struct {
	NPCID        string `json:"npc_id"`
	GivenItemID  string `json:"given_item_id"`
	TakenItemID  string `json:"taken_item_id"`
	AtMove       int    `json:"at_move"`
}

// ObjectRuntimeState tracks the mutable state keys a world-package Object
// carries at runtime: open, locked, searched, pushed, pullStage, turnState,
// touched. Items that are containers share this map
// under their own id so "is it open" is one lookup regardless of whether
// the container is an Object or an Item.
type ObjectRuntimeState struct {
	Open      bool `json:"open,omitempty"`
	Locked    bool `json:"locked,omitempty"`
	Searched  bool `json:"searched,omitempty"`
	Pushed    bool `json:"pushed,omitempty"`
	PullStage int  `json:"pull_stage,omitempty"`
	TurnIndex int  `json:"turn_index,omitempty"`
	Touched   bool `json:"touched,omitempty"`
}

// PuzzleState tracks one puzzle's runtime progress.
type PuzzleState struct {
	Solved        bool      `json:"solved"`
	StepIndex     int       `json:"step_index"`
	Attempts      int       `json:"attempts"`
	HintsGiven    int       `json:"hints_given"`
	LastHintAtMs  int64     `json:"last_hint_at_ms"`
}

// NPCState tracks one NPC's runtime position, conversation cursor, and
// mutable inventory. Trade reads and writes InventoryItemIDs here rather
// than the immutable WorldPackage.NPCs[...].InventoryItemIDs so items
// actually move between the player and the NPC instead of being
// conjured or destroyed.
type NPCState struct {
	CurrentRoomID    string   `json:"current_room_id"`
	DialogueNodeID   string   `json:"dialogue_node_id"`
	TimesTalkedTo    int      `json:"times_talked_to"`
	InventoryItemIDs []string `json:"inventory_item_ids,omitempty"`
}

// AchievementState tracks progress toward one achievement.
type AchievementState struct {
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
}

// ProgressionState is the score/achievement/ending bookkeeping.
type ProgressionState struct {
	Score         int                         `json:"score"`
	Achievements  map[string]AchievementState `json:"achievements"`
	EndingID      string                      `json:"ending_id,omitempty"`
	SavePoints    []string                    `json:"save_points,omitempty"`
	CurrentPath   string                      `json:"current_path"`
	EndingFactors map[string]int              `json:"ending_factors,omitempty"`
}

// Overlay is the full mutable run state for one in-progress game.
type Overlay struct {
	World *WorldPackage

	CurrentRoomID string
	Inventory     []CarriedItem
	Worn          []CarriedItem // subset also present conceptually on the body, tracked separately for slot lookups
	WornSlots     map[string]string // slot name -> item id
	Containers    ContainerContents

	Flags *FlagStore

	Health int
	Moves  int

	Relationships map[string]Relationship
	Puzzles       map[string]*PuzzleState
	NPCs          map[string]*NPCState
	VisitedRooms  map[string]bool
	Progression   ProgressionState
	ObjectStates  map[string]*ObjectRuntimeState
	TradeHistory  []TradeRecord

	PronounItemID string // last noun resolved for "it"
	PronounNPCID  string // last noun resolved for "him"/"her"/"them"

	ActiveDialogueNPCID string // non-empty while a dialogue menu is open

	NPCMovement map[string]*NPCMovementState // in-room walk patterns, keyed by npc id

	Scheduled *ScheduledQueue

	started bool
}

// NewOverlay creates the initial run state for a world package.
func NewOverlay(w *WorldPackage) *Overlay {
	o := &Overlay{
		World:         w,
		CurrentRoomID: w.StartRoomID,
		WornSlots:     make(map[string]string),
		Containers:    make(ContainerContents),
		Flags:         NewFlagStore(),
		Health:        w.MaxHealth,
		Relationships: make(map[string]Relationship),
		Puzzles:       make(map[string]*PuzzleState),
		NPCs:          make(map[string]*NPCState),
		VisitedRooms:  map[string]bool{w.StartRoomID: true},
		Progression: ProgressionState{
			Achievements:  make(map[string]AchievementState),
			CurrentPath:   "neutral",
			EndingFactors: make(map[string]int),
		},
		Scheduled:    NewScheduledQueue(),
		ObjectStates: make(map[string]*ObjectRuntimeState),
		NPCMovement:  make(map[string]*NPCMovementState),
	}
	if o.Health == 0 {
		o.Health = 100
	}
	for id, npc := range w.NPCs {
		o.NPCs[id] = &NPCState{
			CurrentRoomID:    npc.HomeRoomID,
			DialogueNodeID:   npc.DialogueRootID,
			InventoryItemIDs: append([]string(nil), npc.InventoryItemIDs...),
		}
	}
	for id := range w.Puzzles {
		o.Puzzles[id] = &PuzzleState{}
	}
	for id, obj := range w.Objects {
		o.ObjectStates[id] = &ObjectRuntimeState{Locked: obj.Lockable}
	}
	for id, it := range w.Items {
		if it.Container {
			o.ObjectStates[id] = &ObjectRuntimeState{}
		}
	}
	return o
}

// ObjectState returns the runtime state for an object/container id,
// creating a zero-value entry on first access so world-authored ids that
// predate a schema change still behave sanely.
func (o *Overlay) ObjectState(id string) *ObjectRuntimeState {
	st, ok := o.ObjectStates[id]
	if !ok {
		st = &ObjectRuntimeState{}
		o.ObjectStates[id] = st
	}
	return st
}

// IsOpen reports whether a container (Object or Item with the container
// bit) is currently open. Non-containers report false.
func (o *Overlay) IsOpen(id string) bool {
	st, ok := o.ObjectStates[id]
	return ok && st.Open
}

// InventoryWeight sums carried item weight, including container contents
// but not the weight of worn containers' own bodies twice.
func (o *Overlay) InventoryWeight() int {
	total := 0
	for _, ci := range o.Inventory {
		total += o.itemWeight(ci.ItemID) * ci.Count
		for _, inner := range o.Containers[ci.ItemID] {
			total += o.itemWeight(inner.ItemID) * inner.Count
		}
	}
	for slot, itemID := range o.WornSlots {
		_ = slot
		total += o.wornWeight(itemID)
	}
	return total
}

// InventorySize sums carried item size the same way InventoryWeight sums
// weight, including container contents and the half-size-for-worn-
// container-body rule.
func (o *Overlay) InventorySize() int {
	total := 0
	for _, ci := range o.Inventory {
		total += o.itemSize(ci.ItemID) * ci.Count
		for _, inner := range o.Containers[ci.ItemID] {
			total += o.itemSize(inner.ItemID) * inner.Count
		}
	}
	for _, itemID := range o.WornSlots {
		total += o.wornSize(itemID)
	}
	return total
}

func (o *Overlay) itemSize(itemID string) int {
	if it, ok := o.World.Items[itemID]; ok {
		return it.Size
	}
	return 0
}

func (o *Overlay) wornSize(itemID string) int {
	base := o.itemSize(itemID)
	it, ok := o.World.Items[itemID]
	if !ok || !it.Container {
		return base
	}
	s := base / 2
	for _, ci := range o.Containers[itemID] {
		s += o.itemSize(ci.ItemID) * ci.Count
	}
	return s
}

// ItemCount sums the number of discrete units carried, loose or worn,
// toward the world's MaxItems cap.
func (o *Overlay) ItemCount() int {
	total := 0
	for _, ci := range o.Inventory {
		total += ci.Count
	}
	total += len(o.WornSlots)
	return total
}

// CanAddItem reports whether count additional units of itemID would fit
// within the world's weight, size, and item-count caps given what is
// already carried. A zero cap on any dimension means that dimension is
// unbounded.
func (o *Overlay) CanAddItem(itemID string, count int) (bool, string) {
	it, ok := o.World.Items[itemID]
	if !ok {
		return true, ""
	}
	if o.World.MaxWeight > 0 && o.InventoryWeight()+it.Weight*count > o.World.MaxWeight {
		return false, "that's too heavy to carry"
	}
	if o.World.MaxSize > 0 && o.InventorySize()+it.Size*count > o.World.MaxSize {
		return false, "you don't have room for that"
	}
	if o.World.MaxItems > 0 && o.ItemCount()+count > o.World.MaxItems {
		return false, "your inventory is full"
	}
	return true, ""
}

func (o *Overlay) itemWeight(itemID string) int {
	if it, ok := o.World.Items[itemID]; ok {
		return it.Weight
	}
	return 0
}

// wornWeight applies the half-weight-for-container-body rule: a worn
// container counts half its own weight plus the full weight of whatever
// it holds.
func (o *Overlay) wornWeight(itemID string) int {
	base := o.itemWeight(itemID)
	it, ok := o.World.Items[itemID]
	if !ok || !it.Container {
		return base
	}
	w := base / 2
	for _, ci := range o.Containers[itemID] {
		w += o.itemWeight(ci.ItemID) * ci.Count
	}
	return w
}

// HasItem reports whether the player carries at least one of itemID,
// either loose in inventory or worn.
func (o *Overlay) HasItem(itemID string) bool {
	for _, ci := range o.Inventory {
		if ci.ItemID == itemID && ci.Count > 0 {
			return true
		}
	}
	for _, id := range o.WornSlots {
		if id == itemID {
			return true
		}
	}
	return false
}

// AddItem adds count units of itemID to loose inventory.
func (o *Overlay) AddItem(itemID string, count int) {
	for i := range o.Inventory {
		if o.Inventory[i].ItemID == itemID {
			o.Inventory[i].Count += count
			return
		}
	}
	o.Inventory = append(o.Inventory, CarriedItem{ItemID: itemID, Count: count})
}

// RemoveItem removes up to count units of itemID from loose inventory,
// returning how many were actually removed.
func (o *Overlay) RemoveItem(itemID string, count int) int {
	for i := range o.Inventory {
		if o.Inventory[i].ItemID != itemID {
			continue
		}
		removed := count
		if removed > o.Inventory[i].Count {
			removed = o.Inventory[i].Count
		}
		o.Inventory[i].Count -= removed
		if o.Inventory[i].Count == 0 {
			o.Inventory = append(o.Inventory[:i], o.Inventory[i+1:]...)
		}
		return removed
	}
	return 0
}

// SaveSnapshot is the JSON-serializable projection of an Overlay, plus the
// identifying metadata persist.Store needs.
type SaveSnapshot struct {
	WorldPackageID     string                      `json:"world_package_id"`
	WorldPackageDigest string                      `json:"world_package_digest"`
	Timestamp          int64                       `json:"timestamp"`

	CurrentRoomID string                      `json:"current_room_id"`
	Inventory     []CarriedItem               `json:"inventory"`
	WornSlots     map[string]string           `json:"worn"`
	Containers    ContainerContents           `json:"containers"`
	Flags         map[string]any              `json:"flags"`
	Health        int                         `json:"health"`
	Score         int                         `json:"score"`
	Moves         int                         `json:"moves"`
	PuzzleStates  map[string]PuzzleState      `json:"puzzle_states"`
	NPCStates     map[string]NPCState         `json:"npc_states"`
	Relationships map[string]Relationship    `json:"relationships"`
	VisitedRooms  []string                    `json:"visited_rooms"`
	Progression   ProgressionState            `json:"progression"`
	ObjectStates  map[string]ObjectRuntimeState `json:"object_states,omitempty"`
	TradeHistory  []TradeRecord               `json:"trade_history,omitempty"`
}

// Snapshot projects the overlay into a serializable SaveSnapshot.
func (o *Overlay) Snapshot(timestampUnix int64) SaveSnapshot {
	visited := make([]string, 0, len(o.VisitedRooms))
	for id, ok := range o.VisitedRooms {
		if ok {
			visited = append(visited, id)
		}
	}
	puzzles := make(map[string]PuzzleState, len(o.Puzzles))
	for id, p := range o.Puzzles {
		puzzles[id] = *p
	}
	npcs := make(map[string]NPCState, len(o.NPCs))
	for id, n := range o.NPCs {
		npcs[id] = *n
	}
	objStates := make(map[string]ObjectRuntimeState, len(o.ObjectStates))
	for id, st := range o.ObjectStates {
		objStates[id] = *st
	}
	return SaveSnapshot{
		WorldPackageID:     o.World.ID,
		WorldPackageDigest: o.World.Digest,
		Timestamp:          timestampUnix,
		CurrentRoomID:      o.CurrentRoomID,
		Inventory:          append([]CarriedItem(nil), o.Inventory...),
		WornSlots:          copyStringMap(o.WornSlots),
		Containers:         o.Containers,
		Flags:              o.Flags.Snapshot(),
		Health:             o.Health,
		Score:              o.Progression.Score,
		Moves:              o.Moves,
		PuzzleStates:       puzzles,
		NPCStates:          npcs,
		Relationships:      o.Relationships,
		VisitedRooms:       visited,
		Progression:        o.Progression,
		ObjectStates:       objStates,
		TradeHistory:       append([]TradeRecord(nil), o.TradeHistory...),
	}
}

// Restore loads a SaveSnapshot back onto the overlay. The caller is
// responsible for verifying WorldPackageDigest before calling this (see
// persist.Load), so here a mismatch is a programmer error, not a runtime
// SaveError.
func (o *Overlay) Restore(s SaveSnapshot) error {
	if s.CurrentRoomID == "" {
		return &SaveError{Kind: SaveMissingIDs, Detail: "current_room_id is empty"}
	}
	o.CurrentRoomID = s.CurrentRoomID
	o.Inventory = append([]CarriedItem(nil), s.Inventory...)
	o.WornSlots = copyStringMap(s.WornSlots)
	o.Containers = s.Containers
	if o.Containers == nil {
		o.Containers = make(ContainerContents)
	}
	o.Flags.Restore(s.Flags)
	o.Health = s.Health
	o.Moves = s.Moves
	o.Progression = s.Progression
	if o.Progression.Achievements == nil {
		o.Progression.Achievements = make(map[string]AchievementState)
	}
	if o.Progression.EndingFactors == nil {
		o.Progression.EndingFactors = make(map[string]int)
	}
	if o.Progression.CurrentPath == "" {
		o.Progression.CurrentPath = "neutral"
	}
	o.Relationships = s.Relationships
	if o.Relationships == nil {
		o.Relationships = make(map[string]Relationship)
	}
	o.VisitedRooms = make(map[string]bool, len(s.VisitedRooms))
	for _, id := range s.VisitedRooms {
		o.VisitedRooms[id] = true
	}
	o.Puzzles = make(map[string]*PuzzleState, len(s.PuzzleStates))
	for id, p := range s.PuzzleStates {
		p := p
		o.Puzzles[id] = &p
	}
	o.NPCs = make(map[string]*NPCState, len(s.NPCStates))
	for id, n := range s.NPCStates {
		n := n
		o.NPCs[id] = &n
	}
	o.ObjectStates = make(map[string]*ObjectRuntimeState, len(s.ObjectStates))
	for id, st := range s.ObjectStates {
		st := st
		o.ObjectStates[id] = &st
	}
	o.ActiveDialogueNPCID = ""
	o.NPCMovement = make(map[string]*NPCMovementState)
	o.TradeHistory = append([]TradeRecord(nil), s.TradeHistory...)
	return nil
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
