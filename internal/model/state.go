package model

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the lifecycle state of the pool. The numeric values are part of the
// external encoding and must not be reordered.
type State uint8

const (
	StateCreated State = iota
	StateActive
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the known lifecycle states.
func (s State) Valid() bool {
	switch s {
	case StateCreated, StateActive, StatePaused:
		return true
	default:
		return false
	}
}

// ParseState accepts either the state name or its integer encoding.
func ParseState(input string) (State, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "created":
		return StateCreated, nil
	case "active":
		return StateActive, nil
	case "paused":
		return StatePaused, nil
	}

	val, err := strconv.ParseUint(input, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid state: %q", input)
	}
	s := State(val)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid state: %q", input)
	}
	return s, nil
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid state: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
