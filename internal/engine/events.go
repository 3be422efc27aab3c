package engine

import (
	"container/heap"
	"fmt"

	"go.uber.org/zap"
)

// The Event Arbiter resolves a Command (or an engine-internal signal like
// "player_death") against the scripted event tables, falling back to the
// external Oracle only when nothing scripted claims it. Scripted events
// always preempt the oracle: the arbiter never even constructs an oracle
// request once a scripted event has handled the command.

// HostSink is where resolved actions that reach outside the engine land:
// text for the player, and forwarded calls to the audio/renderer
// collaborators. The engine never imports a concrete UI package; the host
// supplies one of these.
type HostSink interface {
	ShowMessage(text string)
	PlaySound(soundID string)
	PlayMusic(themeID string)
}

// EventHistory records, per event id, the move an event last fired on and
// how many times it has fired. It is bookkeeping only: nothing in the
// arbiter consults it to limit how often an event fires.
type EventHistory struct {
	firedAtMove map[string]int
	fireCount   map[string]int
}

func NewEventHistory() *EventHistory {
	return &EventHistory{firedAtMove: make(map[string]int), fireCount: make(map[string]int)}
}

func (h *EventHistory) record(eventID string, move int) {
	h.firedAtMove[eventID] = move
	h.fireCount[eventID]++
}

func (h *EventHistory) Count(eventID string) int { return h.fireCount[eventID] }

// EventArbiter owns scripted-event lookup and dispatches resolved actions.
type EventArbiter struct {
	world    *WorldPackage
	oracle   Oracle
	sink     HostSink
	history  *EventHistory
	log      *zap.Logger
	registry map[string]CustomActionFunc
}

// CustomActionFunc handles an ActionCustom action. Registered by the host
// or by world-package Lua hooks (see LuaActionRegistry).
type CustomActionFunc func(o *Overlay, a Action) error

func NewEventArbiter(w *WorldPackage, oracle Oracle, sink HostSink, log *zap.Logger) *EventArbiter {
	return &EventArbiter{
		world:    w,
		oracle:   oracle,
		sink:     sink,
		history:  NewEventHistory(),
		log:      log,
		registry: make(map[string]CustomActionFunc),
	}
}

func (a *EventArbiter) RegisterCustomAction(name string, fn CustomActionFunc) {
	a.registry[name] = fn
}

// Resolve looks for a scripted event matching cmd, preferring the current
// room's event list over the world's global event list, and executes the
// first one whose condition passes. If none matches, it falls back to the
// Oracle; with no Oracle configured it returns a ParseUnknownVerb error.
func (a *EventArbiter) Resolve(o *Overlay, cmd Command) (CommandResult, error) {
	room, _ := a.world.RoomByID(o.CurrentRoomID)

	if ev, ok := a.firstMatching(room.Events, cmd, o); ok {
		return a.fire(o, ev)
	}
	if ev, ok := a.firstMatching(a.world.GlobalEvents, cmd, o); ok {
		return a.fire(o, ev)
	}

	if a.oracle == nil {
		return CommandResult{}, &ParseError{Kind: ParseUnknownVerb, Input: cmd.RawInput}
	}
	snap := o.Snapshot(0)
	reply, err := a.oracle.ProcessCommand(cmd.RawInput, snap)
	if err != nil {
		return CommandResult{}, &OracleError{Cause: err}
	}
	if a.sink != nil && reply.Text != "" {
		a.sink.ShowMessage(reply.Text)
	}
	for _, act := range reply.StateChanges {
		if err := a.execute(o, act); err != nil {
			return CommandResult{}, err
		}
	}
	return CommandResult{Message: reply.Text}, nil
}

func (a *EventArbiter) firstMatching(events []Event, cmd Command, o *Overlay) (Event, bool) {
	for _, ev := range events {
		if ev.Trigger != nil && !ev.Trigger.Matches(cmd) {
			continue
		}
		ok, err := EvalCondition(ev.Condition, o.Flags)
		if err != nil {
			if a.log != nil {
				a.log.Warn("condition evaluation failed", zap.String("event", ev.ID), zap.Error(err))
			}
			continue
		}
		if ok {
			return ev, true
		}
	}
	return Event{}, false
}

// Fire executes an event's action list directly, used by the scheduled
// queue and by signals like "player_death" that aren't routed through
// Resolve.
func (a *EventArbiter) Fire(o *Overlay, eventID string) error {
	for _, ev := range a.world.GlobalEvents {
		if ev.ID == eventID {
			_, err := a.fire(o, ev)
			return err
		}
	}
	for _, room := range a.world.Rooms {
		for _, ev := range room.Events {
			if ev.ID == eventID {
				_, err := a.fire(o, ev)
				return err
			}
		}
	}
	return fmt.Errorf("event %q not found", eventID)
}

func (a *EventArbiter) fire(o *Overlay, ev Event) (CommandResult, error) {
	a.history.record(ev.ID, o.Moves)
	result := CommandResult{}
	for _, act := range ev.Actions {
		if act.Kind == ActionShowMessage {
			result.Message = joinLines(result.Message, act.Text)
		}
		if err := a.execute(o, act); err != nil {
			return result, &EventError{EventID: ev.ID, Cause: err}
		}
		if act.PreventDefault {
			break
		}
	}
	return result, nil
}

func joinLines(existing, next string) string {
	if existing == "" {
		return next
	}
	if next == "" {
		return existing
	}
	return existing + "\n" + next
}

// execute applies one Action's side effects to the overlay.
func (a *EventArbiter) execute(o *Overlay, act Action) error {
	switch act.Kind {
	case ActionShowMessage:
		if a.sink != nil {
			a.sink.ShowMessage(act.Text)
		}
	case ActionGiveItem:
		o.AddItem(act.ItemID, 1)
	case ActionRemoveItem:
		o.RemoveItem(act.ItemID, 1)
	case ActionSetFlag:
		return o.Flags.Set(act.Flag, act.FlagValue)
	case ActionUpdateScore:
		o.Progression.Score += act.Points
		if o.Progression.Score < 0 {
			o.Progression.Score = 0
		}
		if a.world.MaxScore > 0 && o.Progression.Score > a.world.MaxScore {
			o.Progression.Score = a.world.MaxScore
		}
	case ActionPlaySound:
		if a.sink != nil {
			a.sink.PlaySound(act.SoundID)
		}
	case ActionPlayMusic:
		if a.sink != nil {
			a.sink.PlayMusic(act.ThemeID)
		}
	case ActionTriggerEvent:
		return a.Fire(o, act.EventName)
	case ActionChangeRoom:
		o.CurrentRoomID = act.RoomID
		o.VisitedRooms[act.RoomID] = true
	case ActionEnableExit:
		room, ok := a.world.Rooms[act.RoomID]
		if ok {
			if exit, ok := room.Exits[act.Direction]; ok {
				exit.Enabled = act.ExitState
				room.Exits[act.Direction] = exit
				a.world.Rooms[act.RoomID] = room
			}
		}
	case ActionRevealItem:
		room, ok := a.world.Rooms[o.CurrentRoomID]
		if ok {
			room.ItemIDs = append(room.ItemIDs, act.ItemID)
			a.world.Rooms[o.CurrentRoomID] = room
		}
	case ActionEndGame:
		o.Progression.EndingID = act.EndingID
	case ActionCustom:
		if fn, ok := a.registry[act.CustomName]; ok {
			return fn(o, act)
		}
		if a.log != nil {
			a.log.Warn("no handler registered for custom action", zap.String("name", act.CustomName))
		}
	}
	return nil
}

// CommandResult is what a resolved command produces for the host to
// render: a message and whatever side effects already landed on the
// overlay (the host reads score/room changes off the Overlay directly).
type CommandResult struct {
	Message    string
	EndingID   string
	GameEnded  bool
}

// ScheduledEvent is a one-shot action due at a future game-time tick.
// Repetition is expressed by the fired action re-scheduling itself, there
// is no separate interval/repeat field.
type ScheduledEvent struct {
	ID      string
	DueAtMs int64
	EventID string
	index   int // heap bookkeeping
}

type scheduledHeap []*ScheduledEvent

func (h scheduledHeap) Len() int            { return len(h) }
func (h scheduledHeap) Less(i, j int) bool  { return h[i].DueAtMs < h[j].DueAtMs }
func (h scheduledHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *scheduledHeap) Push(x any) {
	e := x.(*ScheduledEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *scheduledHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// ScheduledQueue is a min-heap of pending scheduled events keyed by due
// time, supporting cancellation by id.
type ScheduledQueue struct {
	h     scheduledHeap
	byID  map[string]*ScheduledEvent
}

func NewScheduledQueue() *ScheduledQueue {
	return &ScheduledQueue{byID: make(map[string]*ScheduledEvent)}
}

func (q *ScheduledQueue) Schedule(id string, dueAtMs int64, eventID string) {
	e := &ScheduledEvent{ID: id, DueAtMs: dueAtMs, EventID: eventID}
	heap.Push(&q.h, e)
	q.byID[id] = e
}

// Cancel removes a scheduled event by id, if still pending.
func (q *ScheduledQueue) Cancel(id string) bool {
	e, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&q.h, e.index)
	delete(q.byID, id)
	return true
}

// DrainDue pops and returns every event due at or before nowMs, in
// ascending due-time order.
func (q *ScheduledQueue) DrainDue(nowMs int64) []*ScheduledEvent {
	var due []*ScheduledEvent
	for q.h.Len() > 0 && q.h[0].DueAtMs <= nowMs {
		e := heap.Pop(&q.h).(*ScheduledEvent)
		delete(q.byID, e.ID)
		due = append(due, e)
	}
	return due
}

func (q *ScheduledQueue) Len() int { return q.h.Len() }
