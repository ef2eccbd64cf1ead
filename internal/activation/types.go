package activation

import (
	"fmt"
	"time"
)

// Type is the membership period a code grants.
type Type uint8

const (
	TypeDay Type = iota
	TypeMonth
	TypeYear
	TypePermanent
)

var typeNames = [...]string{"day", "month", "year", "permanent"}

var typeDurations = [...]time.Duration{
	24 * time.Hour,
	30 * 24 * time.Hour,
	365 * 24 * time.Hour,
	0,
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return int(t) < len(typeNames) }

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", uint8(t))
	}

	return typeNames[t]
}

// Duration returns the membership period granted by the type. Permanent codes return
// zero and ok false.
func (t Type) Duration() (d time.Duration, ok bool) {
	if !t.Valid() || t == TypePermanent {
		return 0, false
	}

	return typeDurations[t], true
}

// Types returns every known type in code order.
func Types() []Type {
	return []Type{TypeDay, TypeMonth, TypeYear, TypePermanent}
}

// Status is the lifecycle state of a code.
type Status uint8

const (
	StatusUnused Status = iota
	StatusDistributed
	StatusActivated
	StatusInvalid
)

var statusNames = [...]string{"unused", "distributed", "activated", "invalid"}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return int(s) < len(statusNames) }

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", uint8(s))
	}

	return statusNames[s]
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusUnused, StatusDistributed, StatusActivated, StatusInvalid}
}
