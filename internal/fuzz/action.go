package fuzz

import (
	"fmt"
	"strings"
)

// ActionKind tags what an injected step did.
type ActionKind string

const (
	ActionPress ActionKind = "press"
	ActionClick ActionKind = "click"
	ActionMove  ActionKind = "move"
	ActionClose ActionKind = "close"
)

// DefaultActionKinds are used by RunUntil when none are configured.
var DefaultActionKinds = []ActionKind{ActionPress, ActionClick}

// Action is one injected step. Code is only meaningful for ActionPress.
type Action struct {
	Kind ActionKind `json:"kind"`
	Code Code       `json:"code,omitempty"`
}

func (a Action) String() string {
	if a.Kind == ActionPress {
		return fmt.Sprintf("press %#x", a.Code)
	}
	return string(a.Kind)
}

// ParseActionKind validates a configured action name.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ActionPress, ActionClick, ActionMove, ActionClose:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action %q (valid: press, click, move, close)", s)
	}
}

// CountKinds tallies actions by kind.
func CountKinds(actions []Action) map[ActionKind]int {
	counts := make(map[ActionKind]int)
	for _, a := range actions {
		counts[a.Kind]++
	}
	return counts
}
