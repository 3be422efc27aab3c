package engine

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// inventoryFingerprint is a cheap equality check for "did held/worn items
// change", used only to decide whether to emit an inventory-changed host
// event; it is not a hash in any cryptographic sense.
func inventoryFingerprint(o *Overlay) string {
	var b strings.Builder
	for _, ci := range o.Inventory {
		b.WriteString(ci.ItemID)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ci.Count))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for slot, id := range o.WornSlots {
		b.WriteString(slot)
		b.WriteByte('=')
		b.WriteString(id)
		b.WriteByte(',')
	}
	return b.String()
}

// parseDialogueChoice reports whether line is a bare positive integer
// naming a dialogue menu option (the convention formatDialogueNode's
// numbered list expects).
func parseDialogueChoice(line string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Engine composes the immutable world, the mutable overlay, the parser,
// the dispatcher and the event arbiter into the single entrypoint a host
// shell drives: Submit(line) in, a CommandResult and any host-visible
// side effects out.
type Engine struct {
	world   *WorldPackage
	overlay *Overlay
	parser  *Parser
	arbiter *EventArbiter
	loop    *Loop
	log     *zap.Logger
	lua     *LuaActionRegistry
	events  *EventBus

	autoSaveIntervalMs int64
	sinceAutoSaveMs    int64
	onAutoSave         func(*Overlay)
	gameHourMs         int64
}

// Config bundles the collaborators a host supplies at construction time.
type Config struct {
	World      *WorldPackage
	Oracle     Oracle
	Sink       HostSink
	Logger     *zap.Logger
	StepMs     int64 // fixed simulation step; defaults to 16 (~60Hz)
	MaxDeltaMs int64 // defaults to 250
	GameHourMs int64 // game-time ms per in-world hour, for NPC schedules; defaults to 60000
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.World.Validate(); err != nil {
		return nil, err
	}
	stepMs := cfg.StepMs
	if stepMs <= 0 {
		stepMs = 16
	}
	maxDeltaMs := cfg.MaxDeltaMs
	if maxDeltaMs <= 0 {
		maxDeltaMs = 250
	}
	gameHourMs := cfg.GameHourMs
	if gameHourMs <= 0 {
		gameHourMs = 60_000
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = NullOracle{}
	}
	overlay := NewOverlay(cfg.World)
	arbiter := NewEventArbiter(cfg.World, oracle, cfg.Sink, log)
	arbiter.RegisterCustomAction("adjust_ending_factor", adjustEndingFactorAction)
	e := &Engine{
		world:              cfg.World,
		overlay:            overlay,
		parser:             NewParser(cfg.World),
		arbiter:            arbiter,
		loop:               NewLoop(stepMs, maxDeltaMs),
		log:                log,
		events:             NewEventBus(),
		autoSaveIntervalMs: 300_000,
		gameHourMs:         gameHourMs,
	}
	arbiter.RegisterCustomAction("adjust_relationship", e.adjustRelationshipAction)
	if len(cfg.World.LuaScripts) > 0 {
		registry, err := NewLuaActionRegistry(cfg.World.LuaScripts, cfg.World.MaxScore, log)
		if err != nil {
			return nil, err
		}
		e.lua = registry
		for name := range cfg.World.LuaScripts {
			arbiter.RegisterCustomAction(name, registry.Func(name))
		}
	}
	return e, nil
}

// Close releases collaborators the engine owns outright, currently just
// the Lua VM backing world-authored custom actions.
func (e *Engine) Close() {
	if e.lua != nil {
		e.lua.Close()
	}
}

func (e *Engine) Overlay() *Overlay     { return e.overlay }
func (e *Engine) World() *WorldPackage  { return e.world }
func (e *Engine) Loop() *Loop           { return e.loop }
func (e *Engine) Events() *EventBus     { return e.events }

// OnAutoSave registers a callback invoked whenever the fixed-timestep
// clock crosses the auto-save interval. The callback is responsible for
// actually persisting the snapshot (internal/persist).
func (e *Engine) OnAutoSave(fn func(*Overlay)) { e.onAutoSave = fn }

// Submit parses and executes one player input line: scripted events
// always get first refusal via the arbiter before the built-in verb
// dispatcher runs, and the dispatcher's own "I don't understand" style
// errors are what finally routes to the oracle fallback.
func (e *Engine) Submit(line string) (CommandResult, error) {
	roomBefore := e.overlay.CurrentRoomID
	invBefore := inventoryFingerprint(e.overlay)

	result, err := e.submit(line)
	if err != nil {
		return result, err
	}

	if result.Message != "" {
		e.events.emit(HostEvent{Kind: HostEventMessage, Text: result.Message})
	}
	if e.overlay.CurrentRoomID != roomBefore {
		e.events.emit(HostEvent{Kind: HostEventRoomChanged, RoomID: e.overlay.CurrentRoomID})
	}
	if inventoryFingerprint(e.overlay) != invBefore {
		e.events.emit(HostEvent{Kind: HostEventInventoryChanged})
	}
	if result.GameEnded || result.EndingID != "" {
		e.events.emit(HostEvent{Kind: HostEventGameEnded, EndingID: result.EndingID, Score: e.overlay.Progression.Score, Moves: e.overlay.Moves})
	}
	return result, nil
}

func (e *Engine) submit(line string) (CommandResult, error) {
	if e.overlay.ActiveDialogueNPCID != "" {
		if n, ok := parseDialogueChoice(line); ok {
			return e.ChooseDialogueOptionByIndex(e.overlay.ActiveDialogueNPCID, n)
		}
	}

	cmd, err := e.parser.Parse(line, e.overlay)
	if err != nil {
		return e.arbiter.Resolve(e.overlay, Command{RawInput: line})
	}

	if room, ok := e.world.RoomByID(e.overlay.CurrentRoomID); ok {
		if ev, ok := e.arbiter.firstMatching(room.Events, cmd, e.overlay); ok {
			return e.arbiter.fire(e.overlay, ev)
		}
	}
	if ev, ok := e.arbiter.firstMatching(e.world.GlobalEvents, cmd, e.overlay); ok {
		return e.arbiter.fire(e.overlay, ev)
	}
	if puzzleID, ok := e.matchingPuzzle(cmd); ok {
		result, err := e.AttemptPuzzle(puzzleID, cmd)
		if err != nil {
			return CommandResult{}, err
		}
		e.overlay.Moves++
		return result, nil
	}

	scoreBefore := e.overlay.Progression.Score
	result, err := e.Dispatch(cmd)
	if perr, ok := err.(*ParseError); ok && perr.Kind == ParseUnknownVerb {
		return e.arbiter.Resolve(e.overlay, cmd)
	}
	if err != nil {
		return CommandResult{}, err
	}

	e.overlay.Moves++
	if e.overlay.Progression.Score != scoreBefore {
		e.events.emit(HostEvent{Kind: HostEventScoreChanged, Score: e.overlay.Progression.Score})
	}

	// Post-dispatch scripted pass: the verb handler may have changed flags,
	// room, or inventory in a way that now satisfies a scripted event's
	// trigger/condition. Reaching here already means no pre-dispatch event
	// matched this same command (that path returns early above), so there
	// is nothing from this turn to re-fire.
	if postResult, ok, perr := e.resolvePostDispatchEvent(cmd); perr != nil {
		return CommandResult{}, perr
	} else if ok {
		result.Message = joinLines(result.Message, postResult.Message)
		if postResult.EndingID != "" {
			result.EndingID = postResult.EndingID
		}
		if postResult.GameEnded {
			result.GameEnded = true
		}
	}

	unlocked, err := e.EvaluateAchievements()
	if err != nil {
		e.log.Warn("achievement evaluation failed", zap.Error(err))
	}
	for _, def := range unlocked {
		e.events.emit(HostEvent{Kind: HostEventAchievementUnlocked, AchievementID: def.ID})
	}
	if len(unlocked) > 0 {
		e.events.emit(HostEvent{Kind: HostEventScoreChanged, Score: e.overlay.Progression.Score})
	}
	if e.overlay.Health <= 0 {
		if ferr := e.arbiter.Fire(e.overlay, "player_death"); ferr != nil {
			e.log.Warn("player_death event failed", zap.Error(ferr))
		}
	}
	return result, nil
}

// resolvePostDispatchEvent checks the current room's event list, then the
// world's global event list, for the first scripted event whose trigger
// and condition now match cmd, after the dispatcher has already applied
// the verb's own effects. This mirrors the pre-dispatch lookup in submit
// so §5's "pre-command events -> dispatcher -> post-command events"
// ordering holds for state the dispatcher itself just changed.
func (e *Engine) resolvePostDispatchEvent(cmd Command) (CommandResult, bool, error) {
	if room, ok := e.world.RoomByID(e.overlay.CurrentRoomID); ok {
		if ev, ok := e.arbiter.firstMatching(room.Events, cmd, e.overlay); ok {
			result, err := e.arbiter.fire(e.overlay, ev)
			return result, true, err
		}
	}
	if ev, ok := e.arbiter.firstMatching(e.world.GlobalEvents, cmd, e.overlay); ok {
		result, err := e.arbiter.fire(e.overlay, ev)
		return result, true, err
	}
	return CommandResult{}, false, nil
}

// Tick advances the fixed-timestep clock by dtMs, draining due scheduled
// events and firing auto-save on the configured interval.
func (e *Engine) Tick(dtMs int64) {
	e.loop.Advance(dtMs, func(stepMs int64, alpha float64) {
		if stepMs == 0 {
			return
		}
		for _, due := range e.overlay.Scheduled.DrainDue(e.loop.GameTimeMs()) {
			if err := e.arbiter.Fire(e.overlay, due.EventID); err != nil {
				e.log.Warn("scheduled event failed", zap.String("event", due.EventID), zap.Error(err))
			}
		}
		for _, npcID := range e.AdvanceSchedules(e.GameHour()) {
			e.events.emit(HostEvent{Kind: HostEventNPCMoved, NPCID: npcID, RoomID: e.overlay.NPCs[npcID].CurrentRoomID})
		}
		e.AdvanceMovementPatterns(stepMs)
		e.sinceAutoSaveMs += stepMs
		if e.sinceAutoSaveMs >= e.autoSaveIntervalMs {
			e.sinceAutoSaveMs = 0
			if e.onAutoSave != nil {
				e.onAutoSave(e.overlay)
			}
		}
	})
}
