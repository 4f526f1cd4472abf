package domain

import "fmt"

// Side identifies which challenger a position backs.
type Side uint8

const (
	SideA Side = 0
	SideB Side = 1
)

// String returns the string representation of Side.
func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return "unknown"
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideA || s == SideB
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	parsed, ok := ParseSide(string(text))
	if !ok {
		return fmt.Errorf("invalid side %q", string(text))
	}
	*s = parsed
	return nil
}

// ParseSide converts "A"/"B" to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "A", "a":
		return SideA, true
	case "B", "b":
		return SideB, true
	}
	return 0, false
}

// DuelStatus is the lifecycle state of a duel.
type DuelStatus uint8

const (
	StatusOpen      DuelStatus = 0
	StatusResolved  DuelStatus = 1
	StatusCancelled DuelStatus = 2
)

// String returns the string representation of DuelStatus.
func (s DuelStatus) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusResolved:
		return "Resolved"
	case StatusCancelled:
		return "Cancelled"
	}
	return "unknown"
}

// IsValid checks if the status is a valid value.
func (s DuelStatus) IsValid() bool {
	return s == StatusOpen || s == StatusResolved || s == StatusCancelled
}

// Terminal reports whether the status admits no further transitions.
func (s DuelStatus) Terminal() bool {
	return s == StatusResolved || s == StatusCancelled
}
