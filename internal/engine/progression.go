package engine

import (
	"fmt"
	"sort"
)

// Progression: score, achievements (instant/progressive/meta), and
// ending selection.

// AddScore adds delta to the running score, clamped at the world's
// MaxScore when it is set (0 means unbounded).
func (e *Engine) AddScore(delta int) {
	e.overlay.Progression.Score += delta
	if e.overlay.Progression.Score < 0 {
		e.overlay.Progression.Score = 0
	}
	if e.world.MaxScore > 0 && e.overlay.Progression.Score > e.world.MaxScore {
		e.overlay.Progression.Score = e.world.MaxScore
	}
}

// EvaluateAchievements checks every achievement definition against
// current state and unlocks any that now qualify, returning the newly
// unlocked ones in definition order.
func (e *Engine) EvaluateAchievements() ([]AchievementDef, error) {
	var unlocked []AchievementDef
	for _, def := range e.world.Achievements {
		state := e.overlay.Progression.Achievements[def.ID]
		if state.Unlocked {
			continue
		}
		got, err := e.achievementQualifies(def, state)
		if err != nil {
			return nil, err
		}
		if !got {
			continue
		}
		state.Unlocked = true
		e.overlay.Progression.Achievements[def.ID] = state
		e.AddScore(def.Points)
		unlocked = append(unlocked, def)
	}
	return unlocked, nil
}

func (e *Engine) achievementQualifies(def AchievementDef, state AchievementState) (bool, error) {
	switch def.Kind {
	case AchievementInstant:
		return EvalCondition(def.Condition, e.overlay.Flags)
	case AchievementProgressive:
		return state.Progress >= def.Target, nil
	case AchievementMeta:
		for _, reqID := range def.Requires {
			if !e.overlay.Progression.Achievements[reqID].Unlocked {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

// BumpAchievementProgress advances a progressive achievement's counter.
func (e *Engine) BumpAchievementProgress(achievementID string, delta int) {
	state := e.overlay.Progression.Achievements[achievementID]
	state.Progress += delta
	e.overlay.Progression.Achievements[achievementID] = state
}

// SelectEnding picks the highest-priority EndingDef whose condition
// currently holds. Endings are evaluated in descending Priority order so
// an author can layer a specific bad ending over a generic default one;
// IsDefault endings are only chosen when nothing else matches.
func (e *Engine) SelectEnding() (EndingDef, bool, error) {
	sorted := append([]EndingDef(nil), e.world.Endings...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	var fallback *EndingDef
	for i := range sorted {
		ed := sorted[i]
		if ed.IsDefault {
			fallback = &sorted[i]
			continue
		}
		ok, err := EvalCondition(ed.Condition, e.overlay.Flags)
		if err != nil {
			return EndingDef{}, false, err
		}
		if ok {
			return ed, true, nil
		}
	}
	if fallback != nil {
		return *fallback, true, nil
	}
	return EndingDef{}, false, nil
}

// AdjustEndingFactor accumulates delta onto a named ending factor (e.g.
// "karma", "heroism") and recomputes CurrentPath.
func (e *Engine) AdjustEndingFactor(name string, delta int) int {
	return adjustEndingFactor(e.overlay, name, delta)
}

// adjustEndingFactor applies the accumulate-then-recompute-path logic
// directly to an Overlay so it can be shared between Engine.
// AdjustEndingFactor and the "adjust_ending_factor" custom action
// (world-authored events only get an *Overlay, not an *Engine). The
// path thresholds are a fixed pick: karma >= 50 and heroism >= 50
// selects "hero"; karma <= -50 selects "villain"; otherwise "neutral".
func adjustEndingFactor(o *Overlay, name string, delta int) int {
	if o.Progression.EndingFactors == nil {
		o.Progression.EndingFactors = make(map[string]int)
	}
	v := o.Progression.EndingFactors[name] + delta
	o.Progression.EndingFactors[name] = v

	karma := o.Progression.EndingFactors["karma"]
	heroism := o.Progression.EndingFactors["heroism"]
	switch {
	case karma >= 50 && heroism >= 50:
		o.Progression.CurrentPath = "hero"
	case karma <= -50:
		o.Progression.CurrentPath = "villain"
	default:
		o.Progression.CurrentPath = "neutral"
	}
	return v
}

// adjustEndingFactorAction is the "adjust_ending_factor" CUSTOM action: a
// world event authors as
//
//	{kind: custom, custom_name: adjust_ending_factor, custom_params: {name: karma, delta: 10}}
func adjustEndingFactorAction(o *Overlay, a Action) error {
	name, _ := a.CustomParams["name"].(string)
	if name == "" {
		return fmt.Errorf("adjust_ending_factor: missing %q param", "name")
	}
	delta := 0
	switch d := a.CustomParams["delta"].(type) {
	case int:
		delta = d
	case float64:
		delta = int(d)
	}
	adjustEndingFactor(o, name, delta)
	return nil
}

// MarkSavePoint records a named checkpoint the progression/ending logic
// can later reference (e.g. "reached_act_two").
func (e *Engine) MarkSavePoint(name string) {
	for _, sp := range e.overlay.Progression.SavePoints {
		if sp == name {
			return
		}
	}
	e.overlay.Progression.SavePoints = append(e.overlay.Progression.SavePoints, name)
}
