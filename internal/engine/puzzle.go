package engine

import "strings"

// The puzzle engine: single-step ("the solution is a matching command")
// and multi-step (an ordered sequence of solutions) puzzles, with hint
// cooldowns and attempt/completion counters tracked on PuzzleState.

// AttemptPuzzle checks cmd's resolved verb and nouns against a puzzle's current
// expected solution. On success it applies the reward/step actions and
// advances StepIndex (or marks Solved for single-step puzzles).
func (e *Engine) AttemptPuzzle(puzzleID string, cmd Command) (CommandResult, error) {
	puzzle, ok := e.world.Puzzles[puzzleID]
	if !ok {
		return CommandResult{}, &EventError{EventID: puzzleID, Cause: errUnknownPuzzle}
	}
	state := e.overlay.Puzzles[puzzleID]
	if state == nil {
		state = &PuzzleState{}
		e.overlay.Puzzles[puzzleID] = state
	}
	if state.Solved {
		return CommandResult{Message: puzzle.SuccessMessage}, nil
	}

	state.Attempts++

	if puzzle.IsMultiStep() {
		if state.StepIndex >= len(puzzle.Steps) {
			state.Solved = true
			return CommandResult{Message: puzzle.SuccessMessage}, nil
		}
		step := puzzle.Steps[state.StepIndex]
		if !solutionMatches(step.Solution, cmd) {
			return CommandResult{Message: puzzle.FailureMessage}, nil
		}
		for _, act := range step.Reward {
			if err := e.arbiter.execute(e.overlay, act); err != nil {
				return CommandResult{}, err
			}
		}
		e.AddScore(step.Points)
		state.StepIndex++
		if state.StepIndex >= len(puzzle.Steps) {
			state.Solved = true
			return CommandResult{Message: puzzle.SuccessMessage}, nil
		}
		return CommandResult{Message: step.Message}, nil
	}

	if !solutionMatches(puzzle.Solution, cmd) {
		return CommandResult{Message: puzzle.FailureMessage}, nil
	}
	for _, act := range puzzle.Reward {
		if err := e.arbiter.execute(e.overlay, act); err != nil {
			return CommandResult{}, err
		}
	}
	e.AddScore(puzzle.Points)
	state.Solved = true
	return CommandResult{Message: puzzle.SuccessMessage}, nil
}

// solutionMatches compares a puzzle's authored "verb direct[ prep indirect]"
// solution string against a parsed command's resolved verb and noun ids,
// not the raw text, so synonyms and articles never matter.
func solutionMatches(solution string, cmd Command) bool {
	parts := strings.Fields(strings.ToLower(solution))
	if len(parts) == 0 {
		return false
	}
	if Verb(parts[0]) != cmd.Verb {
		return false
	}
	if len(parts) >= 2 && parts[1] != strings.ToLower(cmd.DirectObject) {
		return false
	}
	if len(parts) >= 4 && parts[3] != strings.ToLower(cmd.IndirectObject) {
		return false
	}
	return true
}

// Hint returns the next available hint for a puzzle, respecting its
// cooldown, or ("", false) if none is due yet.
func (e *Engine) Hint(puzzleID string, nowMs int64) (string, bool) {
	puzzle, ok := e.world.Puzzles[puzzleID]
	if !ok {
		return "", false
	}
	state := e.overlay.Puzzles[puzzleID]
	if state == nil || state.Solved {
		return "", false
	}
	if state.Attempts < 3 {
		return "", false
	}
	if nowMs-state.LastHintAtMs < int64(puzzle.HintCooldown()) {
		return "", false
	}
	var hints []string
	if puzzle.IsMultiStep() && state.StepIndex < len(puzzle.Steps) {
		if h := puzzle.Steps[state.StepIndex].Hint; h != "" {
			hints = []string{h}
		}
	} else {
		hints = puzzle.Hints
	}
	if len(hints) == 0 {
		return "", false
	}
	idx := state.HintsGiven
	if idx >= len(hints) {
		idx = len(hints) - 1
	}
	state.HintsGiven++
	state.LastHintAtMs = nowMs
	return hints[idx], true
}

// ResetPuzzle clears a puzzle's progress back to its initial state and
// runs its resetActions, unless the puzzle is marked noReset (in which
// case a once-solved puzzle never returns to unsolved).
func (e *Engine) ResetPuzzle(puzzleID string) error {
	puzzle, ok := e.world.Puzzles[puzzleID]
	if !ok {
		return &EventError{EventID: puzzleID, Cause: errUnknownPuzzle}
	}
	if puzzle.NoReset {
		state := e.overlay.Puzzles[puzzleID]
		if state != nil && state.Solved {
			return nil
		}
	}
	e.overlay.Puzzles[puzzleID] = &PuzzleState{}
	for _, act := range puzzle.ResetActions {
		if err := e.arbiter.execute(e.overlay, act); err != nil {
			return err
		}
	}
	return nil
}

// PuzzleStats summarizes progress across every puzzle in the world
// package: attempted, completed, the derived completion rate, and how
// many are "active" (started but not yet completed).
type PuzzleStats struct {
	Attempted      int
	Completed      int
	Active         int
	CompletionRate float64
}

func (e *Engine) PuzzleStatistics() PuzzleStats {
	var stats PuzzleStats
	for id := range e.world.Puzzles {
		state := e.overlay.Puzzles[id]
		if state == nil {
			continue
		}
		started := state.Attempts > 0 || state.StepIndex > 0 || state.Solved
		if started {
			stats.Attempted++
		}
		if state.Solved {
			stats.Completed++
		} else if started {
			stats.Active++
		}
	}
	if stats.Attempted > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Attempted)
	}
	return stats
}

// matchingPuzzle returns the first puzzle whose Trigger matches cmd, for
// Submit to try before falling through to the plain verb dispatcher.
func (e *Engine) matchingPuzzle(cmd Command) (string, bool) {
	for _, id := range e.world.PuzzleOrder() {
		puzzle := e.world.Puzzles[id]
		if puzzle.Trigger != nil && puzzle.Trigger.Matches(cmd) {
			return id, true
		}
	}
	return "", false
}

var errUnknownPuzzle = puzzleNotFoundError{}

type puzzleNotFoundError struct{}

func (puzzleNotFoundError) Error() string { return "puzzle not found" }
