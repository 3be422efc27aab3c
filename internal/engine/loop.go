package engine

import "time"

// Loop is the fixed-timestep accumulator driving the engine's notion of
// game time: scheduled events, NPC schedules and auto-save all advance on
// this clock rather than on wall time directly, so that replaying an
// identical (command, dtMs) sequence always reaches identical state.
type Loop struct {
	stepMs       int64
	maxDeltaMs   int64
	accumulator  int64
	gameTimeMs   int64
	speed        float64
	paused       bool

	frameCount int
	fpsWindow  time.Duration
	fpsTimer   time.Duration
	fps        float64
}

// NewLoop builds a Loop with stepMs as the fixed simulation step (the
// pseudocode in the design notes this engine follows uses 16ms/~60Hz by
// default) and maxDeltaMs capping how much of a single large wall-clock
// gap (e.g. a debugger pause) is folded into one Advance call.
func NewLoop(stepMs, maxDeltaMs int64) *Loop {
	return &Loop{stepMs: stepMs, maxDeltaMs: maxDeltaMs, speed: 1.0, fpsWindow: time.Second}
}

func (l *Loop) Pause()           { l.paused = true }
func (l *Loop) Resume()          { l.paused = false }
func (l *Loop) Paused() bool     { return l.paused }
func (l *Loop) SetSpeed(s float64) {
	if s <= 0 {
		s = 1.0
	}
	l.speed = s
}
func (l *Loop) GameTimeMs() int64 { return l.gameTimeMs }
func (l *Loop) StepMs() int64     { return l.stepMs }

// Advance folds a wall-clock delta into the accumulator and invokes step
// once per whole fixed timestep that has accrued, passing alpha (the
// fractional remainder, 0..1) on the final partial step for callers that
// interpolate rendering between steps.
func (l *Loop) Advance(dtMs int64, step func(stepMs int64, alpha float64)) {
	if l.paused {
		return
	}
	scaled := int64(float64(dtMs) * l.speed)
	if scaled > l.maxDeltaMs {
		scaled = l.maxDeltaMs
	}
	l.accumulator += scaled

	for l.accumulator >= l.stepMs {
		step(l.stepMs, 0)
		l.accumulator -= l.stepMs
		l.gameTimeMs += l.stepMs
	}
	if l.stepMs > 0 {
		alpha := float64(l.accumulator) / float64(l.stepMs)
		step(0, alpha)
	}

	l.frameCount++
	l.fpsTimer += time.Duration(dtMs) * time.Millisecond
	if l.fpsTimer >= l.fpsWindow {
		l.fps = float64(l.frameCount) / l.fpsTimer.Seconds()
		l.frameCount = 0
		l.fpsTimer = 0
	}
}

func (l *Loop) FPS() float64 { return l.fps }
