package engine

// The interaction matrix: use-X-on-Y rules, two-item combinations, and
// key-to-lock unlock rules, all authored per world package.

// useOn looks up and applies a UseOnRule for (itemID, targetID). Returns
// ok=false if no rule matches so the dispatcher can fall back to a
// generic "nothing happens" message.
func (e *Engine) useOn(itemID, targetID string) (CommandResult, bool, error) {
	for _, rule := range e.world.Interactions.UseOn {
		if rule.ItemID != itemID || rule.TargetID != targetID {
			continue
		}
		ok, err := EvalCondition(rule.Condition, e.overlay.Flags)
		if err != nil {
			return CommandResult{}, true, err
		}
		if !ok {
			msg := rule.FailureMessage
			if msg == "" {
				msg = rule.Hint
			}
			return CommandResult{Message: msg}, true, nil
		}
		if rule.ConsumeItem {
			e.overlay.RemoveItem(itemID, 1)
		}
		for _, act := range rule.Effects {
			if err := e.arbiter.execute(e.overlay, act); err != nil {
				return CommandResult{}, true, err
			}
		}
		return CommandResult{Message: rule.SuccessMessage}, true, nil
	}
	return CommandResult{}, false, nil
}

// combine looks up a UseCombination for an unordered pair of item ids.
func (e *Engine) combine(a, b string) (CommandResult, bool, error) {
	for _, c := range e.world.Interactions.Combinations {
		if (c.Inputs[0] == a && c.Inputs[1] == b) || (c.Inputs[0] == b && c.Inputs[1] == a) {
			if c.ConsumeInputs {
				e.overlay.RemoveItem(a, 1)
				e.overlay.RemoveItem(b, 1)
			}
			if c.ResultItemID != "" {
				e.overlay.AddItem(c.ResultItemID, 1)
			}
			for _, act := range c.Effects {
				if err := e.arbiter.execute(e.overlay, act); err != nil {
					return CommandResult{}, true, err
				}
			}
			return CommandResult{Message: c.SuccessMessage}, true, nil
		}
	}
	return CommandResult{}, false, nil
}

// setLock looks up an UnlockRule for (keyItemID, lockID) where lockID is
// either an Object id or an exit's LockedBy token, and applies it in
// whichever direction the "lock"/"unlock" verb asked for. Unlocking
// consumes the key when the rule's ConsumeKey is set and sets the rule's
// SetFlag; locking leaves the key and every flag untouched. In both
// directions the lock object's Locked state and, when the rule names an
// exit, that exit's LockedBy are updated to match.
func (e *Engine) setLock(keyItemID, lockID string, locking bool) (CommandResult, bool, error) {
	for _, rule := range e.world.Interactions.Unlocks {
		if rule.KeyItemID != keyItemID || rule.LockID != lockID {
			continue
		}
		if !locking && rule.ConsumeKey {
			e.overlay.RemoveItem(keyItemID, 1)
		}
		if state, ok := e.overlay.ObjectStates[lockID]; ok {
			state.Locked = locking
		}
		if !locking && rule.SetFlag != "" {
			if err := e.overlay.Flags.Set(rule.SetFlag, true); err != nil {
				return CommandResult{}, true, err
			}
		}
		if rule.UnlocksExitRoomID != "" {
			room, ok := e.world.Rooms[rule.UnlocksExitRoomID]
			if ok {
				if exit, ok := room.Exits[rule.UnlocksExitDir]; ok {
					if locking {
						exit.LockedBy = keyItemID
					} else {
						exit.LockedBy = ""
					}
					room.Exits[rule.UnlocksExitDir] = exit
					e.world.Rooms[rule.UnlocksExitRoomID] = room
				}
			}
		}
		msg := rule.SuccessMessage
		if locking {
			msg = "locked"
		}
		return CommandResult{Message: msg}, true, nil
	}
	return CommandResult{}, false, nil
}
