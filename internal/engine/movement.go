package engine

// Movement: exit validation, room-graph pathfinding, and the in-room 2D
// walk used by the renderer's collision grid.

// TryExit validates and (if allowed) follows an exit in dir from the
// player's current room. Returns the blocked message (if any) as the
// second value when the move is refused.
func (e *Engine) TryExit(dir Direction) (roomID string, blockedMsg string, err error) {
	room, ok := e.world.RoomByID(e.overlay.CurrentRoomID)
	if !ok {
		return "", "", &DispatchError{Kind: DispatchBlocked, Detail: "you are nowhere"}
	}
	exit, ok := room.Exits[dir]
	if !ok {
		return "", "you can't go that way", nil
	}
	if !exit.Enabled {
		msg := exit.BlockedMessage
		if msg == "" {
			msg = "you can't go that way"
		}
		return "", msg, nil
	}
	if exit.Locked() {
		return "", "", &DispatchError{Kind: DispatchLocked, Subject: string(dir)}
	}
	if exit.Condition != "" {
		ok, err := EvalCondition(exit.Condition, e.overlay.Flags)
		if err != nil {
			return "", "", err
		}
		if !ok {
			msg := exit.BlockedMessage
			if msg == "" {
				msg = "something stops you"
			}
			return "", msg, nil
		}
	}
	target, ok := e.world.RoomByID(exit.TargetRoomID)
	if !ok {
		return "", "", &DispatchError{Kind: DispatchBlocked, Detail: "that way leads nowhere"}
	}
	if target.EntryCondition != "" {
		ok, err := EvalCondition(target.EntryCondition, e.overlay.Flags)
		if err != nil {
			return "", "", err
		}
		if !ok {
			msg := target.EntryBlockedMsg
			if msg == "" {
				msg = "you can't go in there yet"
			}
			return "", msg, nil
		}
	}
	return exit.TargetRoomID, "", nil
}

// FindPath returns an ordered list of directions leading from fromRoomID
// to toRoomID via a breadth-first search over enabled, unlocked exits.
// Returns nil if no path exists.
func (e *Engine) FindPath(fromRoomID, toRoomID string) []Direction {
	if fromRoomID == toRoomID {
		return []Direction{}
	}
	type frame struct {
		roomID string
		path   []Direction
	}
	visited := map[string]bool{fromRoomID: true}
	queue := []frame{{roomID: fromRoomID}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		room, ok := e.world.RoomByID(cur.roomID)
		if !ok {
			continue
		}
		for _, dir := range AllDirections {
			exit, ok := room.Exits[dir]
			if !ok || !exit.Enabled || exit.Locked() {
				continue
			}
			if visited[exit.TargetRoomID] {
				continue
			}
			path := append(append([]Direction{}, cur.path...), dir)
			if exit.TargetRoomID == toRoomID {
				return path
			}
			visited[exit.TargetRoomID] = true
			queue = append(queue, frame{roomID: exit.TargetRoomID, path: path})
		}
	}
	return nil
}

// WalkStep attempts to move an occupant one cell in a room's 2D collision
// grid (used for fine-grained in-room movement when a room defines one;
// rooms without a CollisionGrid only support exit-based movement).
// Returns false if the target cell is off-grid or blocked.
func WalkStep(grid [][]bool, from Point, dx, dy int) (Point, bool) {
	to := Point{X: from.X + dx, Y: from.Y + dy}
	if to.Y < 0 || to.Y >= len(grid) {
		return from, false
	}
	row := grid[to.Y]
	if to.X < 0 || to.X >= len(row) {
		return from, false
	}
	if row[to.X] { // true marks a blocked cell
		return from, false
	}
	return to, true
}

// npcScheduledRoom resolves which room an NPC should occupy at a given
// in-game hour (0-23) per its schedule, falling back to its home room
// when no schedule entry covers the hour.
func npcScheduledRoom(npc NPC, hour int) string {
	for _, sc := range npc.Schedule {
		if sc.StartHour <= sc.EndHour {
			if hour >= sc.StartHour && hour < sc.EndHour {
				return sc.RoomID
			}
		} else { // wraps past midnight
			if hour >= sc.StartHour || hour < sc.EndHour {
				return sc.RoomID
			}
		}
	}
	return npc.HomeRoomID
}

// AdvanceSchedules updates every NPC's current room for the given
// in-game hour, returning the ids of NPCs whose room actually changed (in
// a stable, world-definition order) so the caller can emit npcMoved.
func (e *Engine) AdvanceSchedules(hour int) []string {
	var moved []string
	for _, id := range e.world.NPCOrder() {
		npc, ok := e.world.NPCs[id]
		if !ok || len(npc.Schedule) == 0 {
			continue
		}
		state, ok := e.overlay.NPCs[id]
		if !ok {
			continue
		}
		next := npcScheduledRoom(npc, hour)
		if next != state.CurrentRoomID {
			state.CurrentRoomID = next
			moved = append(moved, id)
		}
	}
	return moved
}

// MovementStepKind is one instruction in an NPC movement pattern.
type MovementStepKind string

const (
	MovementStepMove MovementStepKind = "move"
	MovementStepWait MovementStepKind = "wait"
	MovementStepLoop MovementStepKind = "loop"
)

// MovementStep is one element of a setNPCMovement pattern: move(x,y),
// wait(durationMs), or loop (jump back to the pattern's first step).
type MovementStep struct {
	Kind       MovementStepKind
	X, Y       int
	DurationMs int64
}

// NPCMovementState is the runtime cursor over an NPC's movement pattern:
// current position in the room's 2D grid, which step is pending, and how
// much wait time remains on a MovementStepWait step.
type NPCMovementState struct {
	Steps           []MovementStep
	Index           int
	WaitRemainingMs int64
	Position        Point
}

// SetNPCMovement installs (or replaces) npcID's in-room walk pattern,
// starting at the first step.
func (e *Engine) SetNPCMovement(npcID string, steps []MovementStep) {
	e.overlay.NPCMovement[npcID] = &NPCMovementState{Steps: steps}
}

// ClearNPCMovement removes any movement pattern for npcID, leaving it
// parked at its last position.
func (e *Engine) ClearNPCMovement(npcID string) {
	delete(e.overlay.NPCMovement, npcID)
}

// AdvanceMovementPatterns executes one fixedUpdate tick's worth of every
// active NPC movement pattern: a pending wait is decremented first; once
// it clears (or there was none), move/loop steps execute immediately and
// advance the cursor, following a "move(x,y), wait(durationMs), loop"
// pattern vocabulary.
func (e *Engine) AdvanceMovementPatterns(stepMs int64) {
	for _, npcID := range e.world.NPCOrder() {
		ms, ok := e.overlay.NPCMovement[npcID]
		if !ok || len(ms.Steps) == 0 {
			continue
		}
		if ms.WaitRemainingMs > 0 {
			ms.WaitRemainingMs -= stepMs
			continue
		}
		step := ms.Steps[ms.Index]
		switch step.Kind {
		case MovementStepMove:
			ms.Position = Point{X: step.X, Y: step.Y}
			ms.Index = (ms.Index + 1) % len(ms.Steps)
		case MovementStepWait:
			ms.WaitRemainingMs = step.DurationMs
			ms.Index = (ms.Index + 1) % len(ms.Steps)
		case MovementStepLoop:
			ms.Index = 0
		default:
			ms.Index = (ms.Index + 1) % len(ms.Steps)
		}
	}
}

// GameHour maps a game-time millisecond count to an hour-of-day (0-23)
// per the configured GameHourMs.
func (e *Engine) GameHour() int {
	if e.gameHourMs <= 0 {
		return 0
	}
	return int((e.loop.GameTimeMs() / e.gameHourMs) % 24)
}
