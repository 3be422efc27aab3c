package engine

import "fmt"

// Typed error-kind variants. Each is a distinct Go type so callers can use
// errors.As to branch on kind without string matching, and multierr is used
// wherever more than one of these can legitimately co-occur.

// ParseErrorKind distinguishes why the parser rejected a line.
type ParseErrorKind string

const (
	ParseUnknownVerb   ParseErrorKind = "unknown_verb"
	ParseMissingTarget ParseErrorKind = "missing_target"
	ParseAmbiguous     ParseErrorKind = "ambiguous"
	ParseNotHere       ParseErrorKind = "not_here"
)

// ParseError is returned by Parse when a command line cannot be turned
// into a Command.
type ParseError struct {
	Kind       ParseErrorKind
	Input      string
	Candidates []string // populated for ParseAmbiguous
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseUnknownVerb:
		return fmt.Sprintf("I don't understand %q", e.Input)
	case ParseMissingTarget:
		return fmt.Sprintf("%s what?", e.Input)
	case ParseAmbiguous:
		return fmt.Sprintf("which do you mean: %s?", joinOr(e.Candidates))
	case ParseNotHere:
		return fmt.Sprintf("there is no %q here", e.Input)
	default:
		return "parse error"
	}
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		out := items[0]
		for _, it := range items[1 : len(items)-1] {
			out += ", " + it
		}
		return out + " or " + items[len(items)-1]
	}
}

// DispatchErrorKind distinguishes why a command failed at dispatch time.
type DispatchErrorKind string

const (
	DispatchNotInInventory  DispatchErrorKind = "not_in_inventory"
	DispatchWrongSlot       DispatchErrorKind = "wrong_slot"
	DispatchLocked          DispatchErrorKind = "locked"
	DispatchBlocked         DispatchErrorKind = "blocked"
	DispatchCapacityExceeded DispatchErrorKind = "capacity_exceeded"
)

// DispatchError is returned by verb handlers when a structurally valid
// command cannot be carried out against current world state.
type DispatchError struct {
	Kind    DispatchErrorKind
	Subject string
	Detail  string
}

func (e *DispatchError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case DispatchNotInInventory:
		return fmt.Sprintf("you aren't carrying %s", e.Subject)
	case DispatchWrongSlot:
		return fmt.Sprintf("%s doesn't go there", e.Subject)
	case DispatchLocked:
		return fmt.Sprintf("%s is locked", e.Subject)
	case DispatchBlocked:
		return fmt.Sprintf("%s is blocked", e.Subject)
	case DispatchCapacityExceeded:
		return "you can't carry any more"
	default:
		return "you can't do that"
	}
}

// EventError wraps a failure evaluating or executing a scripted event.
type EventError struct {
	EventID string
	Cause   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %q: %v", e.EventID, e.Cause)
}

func (e *EventError) Unwrap() error { return e.Cause }

// OracleError wraps a failure from the external Oracle collaborator.
type OracleError struct {
	Cause error
}

func (e *OracleError) Error() string { return fmt.Sprintf("oracle: %v", e.Cause) }
func (e *OracleError) Unwrap() error { return e.Cause }

// SaveErrorKind distinguishes why a save could not be loaded.
type SaveErrorKind string

const (
	SaveDigestMismatch   SaveErrorKind = "digest_mismatch"
	SaveMissingIDs       SaveErrorKind = "missing_ids"
	SaveSchemaUnsupported SaveErrorKind = "schema_unsupported"
)

// SaveError is returned by persist.Load / SaveSnapshot validation.
type SaveError struct {
	Kind   SaveErrorKind
	Detail string
}

func (e *SaveError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("save: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("save: %s", e.Kind)
}

// WorldLoadError reports a structural problem in a loaded world package
// that isn't a dangling reference (those get DanglingReferenceError).
type WorldLoadError struct {
	Field  string
	Detail string
}

func (e *WorldLoadError) Error() string {
	return fmt.Sprintf("world load: %s: %s", e.Field, e.Detail)
}

// DanglingReferenceError reports an id referenced by one world-package
// entity that does not resolve to any known entity.
type DanglingReferenceError struct {
	From string
	To   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: %s -> %s", e.From, e.To)
}
