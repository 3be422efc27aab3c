package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// The NPC engine: dialogue-graph navigation, topic shortcuts,
// relationship/mood tracking, trading, and reaction triggers.

// Talk starts or continues a conversation with npcID, returning the
// current dialogue node's text and options.
func (e *Engine) Talk(npcID string) (DialogueNode, error) {
	npc, ok := e.world.NPCs[npcID]
	if !ok {
		return DialogueNode{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID}
	}
	if state := e.overlay.NPCs[npcID]; state == nil || state.CurrentRoomID != e.overlay.CurrentRoomID {
		return DialogueNode{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: "they're not here"}
	}
	if e.overlay.Relationships[npcID].Value < -50 {
		return DialogueNode{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: npc.Name + " refuses to speak with you"}
	}
	state := e.overlay.NPCs[npcID]
	if state == nil {
		state = &NPCState{CurrentRoomID: npc.HomeRoomID, DialogueNodeID: npc.DialogueRootID}
		e.overlay.NPCs[npcID] = state
	}
	state.TimesTalkedTo++
	if state.DialogueNodeID == "" {
		state.DialogueNodeID = npc.DialogueRootID
	}
	node, ok := npc.Dialogue[state.DialogueNodeID]
	if !ok {
		return DialogueNode{}, &DispatchError{Kind: DispatchBlocked, Detail: "they have nothing to say"}
	}
	return node, nil
}

// ChooseDialogueOption applies a chosen DialogueOption's effects and
// advances the NPC's conversation cursor.
func (e *Engine) ChooseDialogueOption(npcID string, opt DialogueOption) (CommandResult, error) {
	for _, act := range opt.Effects {
		if err := e.arbiter.execute(e.overlay, act); err != nil {
			return CommandResult{}, err
		}
	}
	state := e.overlay.NPCs[npcID]
	ended := opt.EndsConversation || opt.NextNodeID == ""
	if ended {
		if state != nil {
			npc := e.world.NPCs[npcID]
			state.DialogueNodeID = npc.DialogueRootID
		}
		e.overlay.ActiveDialogueNPCID = ""
		e.events.emit(HostEvent{Kind: HostEventDialogueEnded, NPCID: npcID})
		return CommandResult{Message: opt.Response}, nil
	}
	state.DialogueNodeID = opt.NextNodeID
	node, ok := e.world.NPCs[npcID].Dialogue[opt.NextNodeID]
	msg := opt.Response
	if ok {
		msg = joinLines(msg, e.formatDialogueNode(node))
	}
	return CommandResult{Message: msg}, nil
}

// ChooseDialogueOptionByIndex selects the nth currently-visible option (1
// based, matching the menu formatDialogueNode prints) from npcID's current
// dialogue node, skipping Condition-gated options that aren't showing.
func (e *Engine) ChooseDialogueOptionByIndex(npcID string, visibleIndex int) (CommandResult, error) {
	npc, ok := e.world.NPCs[npcID]
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID}
	}
	state := e.overlay.NPCs[npcID]
	if state == nil {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: "no conversation is open"}
	}
	node, ok := npc.Dialogue[state.DialogueNodeID]
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: "they have nothing to say"}
	}
	n := 0
	for _, opt := range node.Options {
		if opt.Condition != "" {
			if ok, err := EvalCondition(opt.Condition, e.overlay.Flags); err != nil || !ok {
				continue
			}
		}
		n++
		if n == visibleIndex {
			return e.ChooseDialogueOption(npcID, opt)
		}
	}
	return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: "that's not one of the options"}
}

// AskAbout answers "ask NPC about TOPIC": the NPC's Topics map wins when
// it has an entry for topic; otherwise the dialogue graph is walked from
// its root node looking for an option whose text contains topic.
func (e *Engine) AskAbout(npcID, topic string) (string, bool) {
	npc, ok := e.world.NPCs[npcID]
	if !ok {
		return "", false
	}
	if resp, ok := npc.Topics[topic]; ok {
		return resp, true
	}
	node, ok := npc.Dialogue[npc.DialogueRootID]
	if !ok {
		return "", false
	}
	for _, opt := range node.Options {
		if containsWord(opt.Text, topic) {
			return opt.Response, true
		}
	}
	return "", false
}

func containsWord(haystack, word string) bool {
	for _, w := range splitWords(haystack) {
		if w == word {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if isLetter {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			words = append(words, toLower(s[start:i]))
			start = -1
		}
	}
	if start != -1 {
		words = append(words, toLower(s[start:]))
	}
	return words
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// AdjustRelationship changes the player's standing with npcID by delta,
// clamped to [-100, 100], and emits the "relationshipChanged" scripted
// event (if the world defines one) plus the host-facing bus event.
func (e *Engine) AdjustRelationship(npcID string, delta int) Relationship {
	r := e.overlay.Relationships[npcID]
	r.Value += delta
	if r.Value > 100 {
		r.Value = 100
	}
	if r.Value < -100 {
		r.Value = -100
	}
	e.overlay.Relationships[npcID] = r
	if err := e.arbiter.Fire(e.overlay, "relationshipChanged"); err != nil {
		e.log.Debug("no relationshipChanged event defined", zap.Error(err))
	}
	e.events.emit(HostEvent{Kind: HostEventRelationshipChanged, NPCID: npcID, Relationship: r.Value})
	return r
}

// Trade attempts to give the player's offeredItemID to npcID in exchange
// for requestedItemID, honoring the NPC's TradeRules if present.
func (e *Engine) Trade(npcID, offeredItemID, requestedItemID string) (CommandResult, error) {
	npc, ok := e.world.NPCs[npcID]
	if !ok {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID}
	}
	if e.overlay.Relationships[npcID].Value < -25 {
		return CommandResult{}, &DispatchError{Kind: DispatchBlocked, Subject: npcID, Detail: npc.Name + " won't trade with you"}
	}
	if !e.overlay.HasItem(offeredItemID) {
		return CommandResult{}, &DispatchError{Kind: DispatchNotInInventory, Subject: offeredItemID}
	}
	state := e.overlay.NPCs[npcID]
	if state == nil {
		state = &NPCState{CurrentRoomID: npc.HomeRoomID, DialogueNodeID: npc.DialogueRootID}
		e.overlay.NPCs[npcID] = state
	}
	if !containsID(state.InventoryItemIDs, requestedItemID) {
		return CommandResult{Message: "they don't have that"}, nil
	}
	if npc.Trade != nil {
		if len(npc.Trade.RequiresItemIDs) > 0 && !containsID(npc.Trade.RequiresItemIDs, offeredItemID) {
			msg := npc.Trade.MissingRequiredMessage
			if msg == "" {
				msg = "they're not interested in that"
			}
			return CommandResult{Message: msg}, nil
		}
		if npc.Trade.RequiresEqualValue && npc.ItemValues[offeredItemID] < npc.ItemValues[requestedItemID] {
			msg := npc.Trade.InsufficientValueMessage
			if msg == "" {
				msg = "that's not worth enough"
			}
			return CommandResult{Message: msg}, nil
		}
	}
	e.overlay.RemoveItem(offeredItemID, 1)
	e.overlay.AddItem(requestedItemID, 1)
	state.InventoryItemIDs = removeID(state.InventoryItemIDs, requestedItemID)
	state.InventoryItemIDs = append(state.InventoryItemIDs, offeredItemID)
	e.overlay.TradeHistory = append(e.overlay.TradeHistory, TradeRecord{
		NPCID: npcID, GivenItemID: offeredItemID, TakenItemID: requestedItemID, AtMove: e.overlay.Moves,
	})
	return CommandResult{Message: "trade complete"}, nil
}

// adjustRelationshipAction is the "adjust_relationship" CUSTOM action a
// DialogueOption or Reaction's Effects list uses to move the player's
// standing with an NPC:
//
//	{kind: custom, custom_name: adjust_relationship, custom_params: {npc_id: merchant, delta: 10}}
func (e *Engine) adjustRelationshipAction(o *Overlay, a Action) error {
	npcID, _ := a.CustomParams["npc_id"].(string)
	if npcID == "" {
		return fmt.Errorf("adjust_relationship: missing %q param", "npc_id")
	}
	delta := 0
	switch d := a.CustomParams["delta"].(type) {
	case int:
		delta = d
	case float64:
		delta = int(d)
	}
	e.AdjustRelationship(npcID, delta)
	return nil
}

func containsID(list []string, id string) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// removeID returns list with the first occurrence of id removed.
func removeID(list []string, id string) []string {
	for i, x := range list {
		if x == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// React finds the first matching Reaction for a trigger name (e.g.
// "give_item", "touch") whose condition currently holds, and applies its
// effects.
func (e *Engine) React(npcID, trigger string) (CommandResult, error) {
	npc, ok := e.world.NPCs[npcID]
	if !ok {
		return CommandResult{}, nil
	}
	for _, r := range npc.Reactions {
		if r.Trigger != trigger {
			continue
		}
		ok, err := EvalCondition(r.Condition, e.overlay.Flags)
		if err != nil {
			return CommandResult{}, err
		}
		if !ok {
			continue
		}
		for _, act := range r.Effects {
			if err := e.arbiter.execute(e.overlay, act); err != nil {
				return CommandResult{}, err
			}
		}
		return CommandResult{Message: r.Message}, nil
	}
	return CommandResult{}, nil
}
