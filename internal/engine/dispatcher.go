package engine

import (
	"fmt"
	"strings"
)

// Dispatch runs a parsed Command against current state, routing to one
// handler per canonical verb. A command the scripted tables and built-in
// handlers both decline to handle falls through to the event arbiter's
// oracle fallback (see Engine.Submit).
func (e *Engine) Dispatch(cmd Command) (CommandResult, error) {
	switch cmd.Verb {
	case VerbLook:
		return e.doLook()
	case VerbExamine:
		return e.doExamine(cmd)
	case VerbTake:
		return e.doTake(cmd)
	case VerbDrop:
		return e.doDrop(cmd)
	case VerbInventory:
		return e.doInventory()
	case VerbGo:
		return e.doGo(cmd)
	case VerbUse:
		return e.doUse(cmd)
	case VerbOpen:
		return e.doOpenClose(cmd, true)
	case VerbClose:
		return e.doOpenClose(cmd, false)
	case VerbLock:
		return e.doLockUnlock(cmd, true)
	case VerbUnlock:
		return e.doLockUnlock(cmd, false)
	case VerbPush:
		return e.doPush(cmd)
	case VerbPull:
		return e.doPull(cmd)
	case VerbTurn:
		return e.doTurn(cmd)
	case VerbTouch:
		return e.doTouch(cmd)
	case VerbSearch:
		return e.doSearch(cmd)
	case VerbRead:
		return e.doRead(cmd)
	case VerbEat:
		return e.doEat(cmd)
	case VerbDrink:
		return e.doDrink(cmd)
	case VerbTalk:
		return e.doTalk(cmd)
	case VerbAsk:
		return e.doAsk(cmd)
	case VerbGive:
		return e.doGive(cmd)
	case VerbWear:
		return e.doWear(cmd)
	case VerbRemove:
		return e.doRemove(cmd)
	case VerbPut:
		return e.doPut(cmd)
	case VerbScore:
		return e.doScore()
	case VerbTrade:
		return e.doTrade(cmd)
	case VerbWait:
		return e.doWait()
	case VerbYell:
		return e.doYell(cmd)
	case VerbHelp:
		return e.doHelp()
	case VerbSave, VerbLoad, VerbRestart, VerbQuit:
		// Handled by the host shell, not the engine: it owns persistence
		// and process lifetime. Reaching here means the host didn't
		// intercept it.
		return CommandResult{}, nil
	default:
		return CommandResult{}, &ParseError{Kind: ParseUnknownVerb, Input: cmd.RawInput}
	}
}

func (e *Engine) doLook() (CommandResult, error) {
	room, ok := e.world.RoomByID(e.overlay.CurrentRoomID)
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Detail: "you are nowhere"}
	}
	return CommandResult{Message: e.describeRoom(room)}, nil
}

// describeRoom composes the full text shown for a room: its name, its
// description, the visible objects/items/NPCs currently in it, and its
// exit list. Both a bare `look` and arriving somewhere via `go` show this,
// not just the bare description.
func (e *Engine) describeRoom(room Room) string {
	var b strings.Builder
	b.WriteString(room.Name)
	b.WriteString("\n")
	b.WriteString(room.Description)

	var visible []string
	for _, oid := range room.ObjectIDs {
		if obj, ok := e.world.Objects[oid]; ok && !obj.Hidden {
			visible = append(visible, obj.Name)
		}
	}
	for _, iid := range room.ItemIDs {
		if it, ok := e.world.Items[iid]; ok {
			visible = append(visible, it.Name)
		}
	}
	for _, nid := range room.NPCIDs {
		npc, ok := e.world.NPCs[nid]
		if !ok {
			continue
		}
		state := e.overlay.NPCs[nid]
		if state == nil || state.CurrentRoomID != room.ID {
			continue
		}
		visible = append(visible, npc.Name)
	}
	if len(visible) > 0 {
		b.WriteString("\nYou see: ")
		b.WriteString(strings.Join(visible, ", "))
	}

	var exits []string
	for _, dir := range AllDirections {
		exit, ok := room.Exits[dir]
		if !ok || !exit.Enabled {
			continue
		}
		exits = append(exits, string(dir))
	}
	if len(exits) > 0 {
		b.WriteString("\nExits: ")
		b.WriteString(strings.Join(exits, ", "))
	}
	return b.String()
}

func (e *Engine) doExamine(cmd Command) (CommandResult, error) {
	if cmd.DirectObject == "" {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "examine"}
	}
	switch cmd.DirectObjectKind {
	case KindObject:
		obj := e.world.Objects[cmd.DirectObject]
		msg := obj.Description
		if obj.HiddenDetails != "" {
			msg += " " + obj.HiddenDetails
		}
		return CommandResult{Message: msg}, nil
	case KindItem:
		item := e.world.Items[cmd.DirectObject]
		return CommandResult{Message: item.Description}, nil
	case KindNPC:
		npc := e.world.NPCs[cmd.DirectObject]
		return CommandResult{Message: npc.Description}, nil
	default:
		return CommandResult{}, &ParseError{Kind: ParseNotHere, Input: cmd.RawInput}
	}
}

func (e *Engine) doTake(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind != KindItem {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject, Detail: "you can't take that"}
	}
	item, ok := e.world.Items[cmd.DirectObject]
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	if ok, reason := e.overlay.CanAddItem(cmd.DirectObject, 1); !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchCapacityExceeded, Subject: cmd.DirectObject, Detail: reason}
	}
	room, ok := e.world.Rooms[e.overlay.CurrentRoomID]
	foundInRoom := false
	if ok {
		if idx := indexOf(room.ItemIDs, cmd.DirectObject); idx >= 0 {
			room.ItemIDs = append(room.ItemIDs[:idx], room.ItemIDs[idx+1:]...)
			e.world.Rooms[e.overlay.CurrentRoomID] = room
			foundInRoom = true
		}
	}
	if !foundInRoom {
		if containerID, found := e.findContainerHolding(cmd.DirectObject); found {
			if !e.overlay.IsOpen(containerID) {
				return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: containerID, Detail: "it's closed"}
			}
			e.removeFromContainer(containerID, cmd.DirectObject)
		}
	}
	e.overlay.AddItem(cmd.DirectObject, 1)
	return CommandResult{Message: fmt.Sprintf("you take the %s", item.Name)}, nil
}

// findContainerHolding returns the id of whichever container (if any)
// currently holds itemID, used when take resolves a noun the parser found
// inside an open container rather than loose in the room.
func (e *Engine) findContainerHolding(itemID string) (string, bool) {
	for containerID, contents := range e.overlay.Containers {
		for _, ci := range contents {
			if ci.ItemID == itemID && ci.Count > 0 {
				return containerID, true
			}
		}
	}
	return "", false
}

func (e *Engine) removeFromContainer(containerID, itemID string) {
	contents := e.overlay.Containers[containerID]
	for i, ci := range contents {
		if ci.ItemID != itemID {
			continue
		}
		ci.Count--
		if ci.Count <= 0 {
			contents = append(contents[:i], contents[i+1:]...)
		} else {
			contents[i] = ci
		}
		break
	}
	e.overlay.Containers[containerID] = contents
}

func (e *Engine) doDrop(cmd Command) (CommandResult, error) {
	if !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	if e.overlay.RemoveItem(cmd.DirectObject, 1) == 0 {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	room, ok := e.world.Rooms[e.overlay.CurrentRoomID]
	if ok {
		room.ItemIDs = append(room.ItemIDs, cmd.DirectObject)
		e.world.Rooms[e.overlay.CurrentRoomID] = room
	}
	return CommandResult{Message: "dropped"}, nil
}

func (e *Engine) doInventory() (CommandResult, error) {
	if len(e.overlay.Inventory) == 0 {
		return CommandResult{Message: "you are carrying nothing"}, nil
	}
	msg := "you are carrying: "
	for i, ci := range e.overlay.Inventory {
		if i > 0 {
			msg += ", "
		}
		msg += e.world.Items[ci.ItemID].Name
	}
	return CommandResult{Message: msg}, nil
}

func (e *Engine) doGo(cmd Command) (CommandResult, error) {
	dir := cmd.Direction
	if dir == "" {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "go"}
	}
	target, blocked, err := e.TryExit(dir)
	if err != nil {
		return CommandResult{}, err
	}
	if blocked != "" {
		return CommandResult{Message: blocked}, nil
	}
	e.overlay.CurrentRoomID = target
	e.overlay.VisitedRooms[target] = true
	room, _ := e.world.RoomByID(target)
	return CommandResult{Message: e.describeRoom(room)}, nil
}

func (e *Engine) doUse(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind != KindItem || !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	if cmd.Preposition == "on" && cmd.IndirectObject != "" {
		if result, ok, err := e.useOn(cmd.DirectObject, cmd.IndirectObject); err != nil {
			return CommandResult{}, err
		} else if ok {
			return result, nil
		}
	}
	if cmd.Preposition == "with" && cmd.IndirectObjectKind == KindItem {
		if result, ok, err := e.combine(cmd.DirectObject, cmd.IndirectObject); err != nil {
			return CommandResult{}, err
		} else if ok {
			return result, nil
		}
	}
	return CommandResult{Message: "nothing happens"}, nil
}

func (e *Engine) doOpenClose(cmd Command, opening bool) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	isContainerItem := false
	if !ok {
		it, itemOk := e.world.Items[cmd.DirectObject]
		if !itemOk || !it.Container {
			return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject, Detail: "you can't do that"}
		}
		isContainerItem = true
	} else if !obj.Openable && !obj.Container {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject, Detail: "you can't do that"}
	}
	state := e.overlay.ObjectState(cmd.DirectObject)
	if opening {
		if !isContainerItem && obj.Lockable && state.Locked {
			return CommandResult{}, &DispatchError{Kind: DispatchLocked, Subject: cmd.DirectObject}
		}
		if state.Open {
			return CommandResult{Message: "it's already open"}, nil
		}
		state.Open = true
		msg := obj.OpenMessage
		if msg == "" {
			msg = "opened"
		}
		return CommandResult{Message: msg}, nil
	}
	if !state.Open {
		return CommandResult{Message: "it's already closed"}, nil
	}
	state.Open = false
	return CommandResult{Message: "closed"}, nil
}

func (e *Engine) doLockUnlock(cmd Command, locking bool) (CommandResult, error) {
	if cmd.Preposition != "with" || cmd.IndirectObjectKind != KindItem {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: string(cmd.Verb)}
	}
	result, ok, err := e.setLock(cmd.IndirectObject, cmd.DirectObject, locking)
	if err != nil {
		return CommandResult{}, err
	}
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchWrongSlot, Subject: cmd.IndirectObject, Detail: "that doesn't fit"}
	}
	return result, nil
}

func (e *Engine) doPush(cmd Command) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok || !obj.Pushable {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	if obj.RequiredItemID != "" && !e.overlay.HasItem(obj.RequiredItemID) {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject, Detail: "nothing happens"}
	}
	e.overlay.ObjectState(cmd.DirectObject).Pushed = true
	if obj.PushEvent != "" {
		if err := e.arbiter.Fire(e.overlay, obj.PushEvent); err != nil {
			return CommandResult{}, err
		}
	}
	if obj.MoveToRoom != "" {
		e.overlay.CurrentRoomID = obj.MoveToRoom
		e.overlay.VisitedRooms[obj.MoveToRoom] = true
	}
	return CommandResult{Message: obj.PushMessage}, nil
}

func (e *Engine) doPull(cmd Command) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok || !obj.Pullable {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	if len(obj.PullStages) == 0 {
		if obj.PullEvent != "" {
			if err := e.arbiter.Fire(e.overlay, obj.PullEvent); err != nil {
				return CommandResult{}, err
			}
		}
		return CommandResult{Message: obj.PullMessage}, nil
	}
	state := e.overlay.ObjectState(cmd.DirectObject)
	next := state.PullStage + 1
	for _, stage := range obj.PullStages {
		if stage.State == next {
			state.PullStage = next
			if stage.Event != "" {
				if err := e.arbiter.Fire(e.overlay, stage.Event); err != nil {
					return CommandResult{}, err
				}
			}
			return CommandResult{Message: stage.Message}, nil
		}
	}
	return CommandResult{Message: obj.PullMessage}, nil
}

func (e *Engine) doTurn(cmd Command) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok || !obj.Turnable {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	if len(obj.TurnPositions) == 0 {
		return CommandResult{Message: "it turns, but nothing happens"}, nil
	}
	state := e.overlay.ObjectState(cmd.DirectObject)
	state.TurnIndex = (state.TurnIndex + 1) % len(obj.TurnPositions)
	position := obj.TurnPositions[state.TurnIndex]
	if obj.TurnEvent != "" {
		if err := e.arbiter.Fire(e.overlay, obj.TurnEvent); err != nil {
			return CommandResult{}, err
		}
	}
	if msg, ok := obj.TurnMessages[position]; ok && msg != "" {
		return CommandResult{Message: msg}, nil
	}
	return CommandResult{Message: fmt.Sprintf("you turn %s to position: %s", obj.Name, position)}, nil
}

func (e *Engine) doTouch(cmd Command) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	e.overlay.ObjectState(cmd.DirectObject).Touched = true
	for _, eff := range obj.TouchEffects {
		switch eff.Kind {
		case TouchDamage:
			e.overlay.Health -= eff.Damage
			if e.overlay.Health < 0 {
				e.overlay.Health = 0
			}
		case TouchSetFlag:
			if err := e.overlay.Flags.Set(eff.Flag, eff.FlagValue); err != nil {
				return CommandResult{}, err
			}
		}
	}
	return CommandResult{Message: obj.TouchMessage}, nil
}

func (e *Engine) doSearch(cmd Command) (CommandResult, error) {
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok || !obj.Searchable {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	if obj.RequiredItemID != "" && !e.overlay.HasItem(obj.RequiredItemID) {
		msg := obj.SearchFailMessage
		if msg == "" {
			msg = "you need something to examine it more closely"
		}
		return CommandResult{Message: msg}, nil
	}
	state := e.overlay.ObjectState(cmd.DirectObject)
	if state.Searched {
		if obj.SearchedMessage != "" {
			return CommandResult{Message: obj.SearchedMessage}, nil
		}
		return CommandResult{Message: "you find nothing more"}, nil
	}
	state.Searched = true
	for key, items := range obj.HiddenItems {
		if key != "" {
			ok, err := EvalCondition(key, e.overlay.Flags)
			if err != nil || !ok {
				continue
			}
		}
		for _, id := range items {
			if _, isItem := e.world.Items[id]; isItem {
				e.overlay.AddItem(id, 1)
				continue
			}
			if revealed, isObj := e.world.Objects[id]; isObj {
				revealed.Hidden = false
				e.world.Objects[id] = revealed
			}
		}
	}
	if obj.SearchEvent != "" {
		if err := e.arbiter.Fire(e.overlay, obj.SearchEvent); err != nil {
			return CommandResult{}, err
		}
	}
	return CommandResult{Message: obj.SearchMessage}, nil
}

func (e *Engine) doRead(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind == KindItem {
		item := e.world.Items[cmd.DirectObject]
		if !item.Readable {
			return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
		}
		return CommandResult{Message: item.Text}, nil
	}
	obj, ok := e.world.Objects[cmd.DirectObject]
	if !ok || !obj.Readable {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject}
	}
	return CommandResult{Message: obj.ReadText}, nil
}

func (e *Engine) doEat(cmd Command) (CommandResult, error) {
	item, ok := e.world.Items[cmd.DirectObject]
	if !ok || !item.Edible || !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	e.overlay.RemoveItem(cmd.DirectObject, 1)
	e.overlay.Health += item.HealthRestore
	if e.world.MaxHealth > 0 && e.overlay.Health > e.world.MaxHealth {
		e.overlay.Health = e.world.MaxHealth
	}
	return CommandResult{Message: item.EatMessage}, nil
}

func (e *Engine) doDrink(cmd Command) (CommandResult, error) {
	item, ok := e.world.Items[cmd.DirectObject]
	if !ok || !item.Drinkable || !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	e.overlay.RemoveItem(cmd.DirectObject, 1)
	return CommandResult{Message: item.DrinkMessage}, nil
}

func (e *Engine) doTalk(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind != KindNPC {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: cmd.DirectObject, Detail: "there's no one here by that name"}
	}
	node, err := e.Talk(cmd.DirectObject)
	if err != nil {
		return CommandResult{}, err
	}
	e.overlay.ActiveDialogueNPCID = cmd.DirectObject
	e.events.emit(HostEvent{Kind: HostEventDialogueStarted, NPCID: cmd.DirectObject})
	return CommandResult{Message: e.formatDialogueNode(node)}, nil
}

// formatDialogueNode renders a node's text plus a numbered menu of its
// currently-available options (Condition-gated ones are hidden), the
// same "pick a number" convention the reference host uses to drive
// ChooseDialogueOption from plain typed input.
func (e *Engine) formatDialogueNode(node DialogueNode) string {
	msg := node.Text
	n := 0
	for _, opt := range node.Options {
		if opt.Condition != "" {
			if ok, err := EvalCondition(opt.Condition, e.overlay.Flags); err != nil || !ok {
				continue
			}
		}
		n++
		msg += fmt.Sprintf("\n  %d) %s", n, opt.Text)
	}
	return msg
}

func (e *Engine) doAsk(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind != KindNPC || cmd.Preposition != "about" {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "ask"}
	}
	topic := cmd.IndirectObject
	resp, ok := e.AskAbout(cmd.DirectObject, topic)
	if !ok {
		return CommandResult{Message: "they have nothing to say about that"}, nil
	}
	return CommandResult{Message: resp}, nil
}

func (e *Engine) doGive(cmd Command) (CommandResult, error) {
	if cmd.DirectObjectKind != KindItem || cmd.IndirectObjectKind != KindNPC {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "give"}
	}
	if !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	npc := e.world.NPCs[cmd.IndirectObject]
	if msg, ok := npc.GiveItemResponse[cmd.DirectObject]; ok {
		e.overlay.RemoveItem(cmd.DirectObject, 1)
		return CommandResult{Message: msg}, nil
	}
	return e.React(cmd.IndirectObject, "give_item")
}

func (e *Engine) doWear(cmd Command) (CommandResult, error) {
	item, ok := e.world.Items[cmd.DirectObject]
	if !ok || !item.Wearable || !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	if existing, taken := e.overlay.WornSlots[item.Slot]; taken && existing != "" {
		return CommandResult{}, &DispatchError{Kind: DispatchWrongSlot, Subject: cmd.DirectObject, Detail: "you're already wearing something there"}
	}
	e.overlay.RemoveItem(cmd.DirectObject, 1)
	e.overlay.WornSlots[item.Slot] = cmd.DirectObject
	return CommandResult{Message: "worn"}, nil
}

func (e *Engine) doRemove(cmd Command) (CommandResult, error) {
	for slot, itemID := range e.overlay.WornSlots {
		if itemID == cmd.DirectObject {
			delete(e.overlay.WornSlots, slot)
			e.overlay.AddItem(itemID, 1)
			return CommandResult{Message: "removed"}, nil
		}
	}
	return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
}

func (e *Engine) doPut(cmd Command) (CommandResult, error) {
	if cmd.Preposition != "in" && cmd.Preposition != "on" {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "put"}
	}
	if !e.overlay.HasItem(cmd.DirectObject) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: cmd.DirectObject}
	}
	containerID := cmd.IndirectObject
	isContainer := false
	if obj, ok := e.world.Objects[containerID]; ok && obj.Container {
		isContainer = true
	}
	if it, ok := e.world.Items[containerID]; ok && it.Container {
		isContainer = true
		if it.Capacity > 0 && len(e.overlay.Containers[containerID]) >= it.Capacity {
			return CommandResult{}, &DispatchError{Kind: DispatchCapacityExceeded}
		}
	}
	if !isContainer {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: containerID, Detail: "that's not a container"}
	}
	if !e.overlay.IsOpen(containerID) {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: containerID, Detail: "it's closed"}
	}
	e.overlay.RemoveItem(cmd.DirectObject, 1)
	e.overlay.Containers[containerID] = append(e.overlay.Containers[containerID], CarriedItem{ItemID: cmd.DirectObject, Count: 1})
	return CommandResult{Message: "done"}, nil
}

// doTrade handles "trade X for Y": the trade partner is whichever single
// NPC currently shares the room with the player, since the command itself
// carries no NPC slot.
func (e *Engine) doTrade(cmd Command) (CommandResult, error) {
	if cmd.Preposition != "for" || cmd.DirectObjectKind != KindItem || cmd.IndirectObjectKind != KindItem {
		return CommandResult{}, &ParseError{Kind: ParseMissingTarget, Input: "trade"}
	}
	room, ok := e.world.RoomByID(e.overlay.CurrentRoomID)
	if !ok || len(room.NPCIDs) == 0 {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Detail: "there's no one here to trade with"}
	}
	var partner string
	for _, nid := range room.NPCIDs {
		if state := e.overlay.NPCs[nid]; state != nil && state.CurrentRoomID == e.overlay.CurrentRoomID {
			partner = nid
			break
		}
	}
	if partner == "" {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Detail: "there's no one here to trade with"}
	}
	return e.Trade(partner, cmd.DirectObject, cmd.IndirectObject)
}

func (e *Engine) doScore() (CommandResult, error) {
	unlockedCount := 0
	for _, st := range e.overlay.Progression.Achievements {
		if st.Unlocked {
			unlockedCount++
		}
	}
	return CommandResult{Message: fmt.Sprintf(
		"score: %d/%d, moves: %d, achievements: %d/%d",
		e.overlay.Progression.Score, e.world.MaxScore, e.overlay.Moves, unlockedCount, len(e.world.Achievements),
	)}, nil
}

func (e *Engine) doHelp() (CommandResult, error) {
	return CommandResult{Message: "try: look, examine, take, drop, inventory, go <direction>, use, open, close, talk, ask, give, wear, remove, put, search, save, load, quit"}, nil
}

// doWait advances game time by exactly one fixed-timestep tick and fires
// the world's "wait" event, if one is defined.
func (e *Engine) doWait() (CommandResult, error) {
	e.Tick(e.loop.StepMs())
	if err := e.arbiter.Fire(e.overlay, "wait"); err != nil {
		return CommandResult{Message: "time passes"}, nil
	}
	return CommandResult{}, nil
}

// doYell handles "yell" and "yell WORD": echoes the shout, then fires the
// current room's "yell" event, if one is defined.
func (e *Engine) doYell(cmd Command) (CommandResult, error) {
	msg := "You yell. Your voice echoes."
	if cmd.DirectObject != "" {
		msg = fmt.Sprintf("You yell %q! Your voice echoes.", strings.ToUpper(cmd.DirectObject))
	}
	room, _ := e.world.RoomByID(e.overlay.CurrentRoomID)
	for _, ev := range room.Events {
		if ev.ID == "yell" {
			_, _ = e.arbiter.fire(e.overlay, ev)
			break
		}
	}
	return CommandResult{Message: msg}, nil
}

func indexOf(list []string, id string) int {
	for i, x := range list {
		if x == id {
			return i
		}
	}
	return -1
}
