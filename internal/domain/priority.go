package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Priority ranks a story for display emphasis.
type Priority string

// PriorityLow and related constants are the persisted priority tokens, lowest first.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var orderedPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return slices.Clone(orderedPriorities)
}

// Index returns the ordinal of p, or -1 when p is unknown.
func (p Priority) Index() int {
	return slices.Index(orderedPriorities, p)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Index() >= 0
}

// Cycle returns the next priority, wrapping from Critical back to Low.
func (p Priority) Cycle() Priority {
	idx := p.Index()
	return orderedPriorities[(idx+1)%len(orderedPriorities)]
}

// Label returns the human priority name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return string(p)
	}
}

// Initial returns the single-letter badge drawn on board cards.
func (p Priority) Initial() string {
	label := p.Label()
	if label == "" {
		return "?"
	}
	return label[:1]
}

// ParsePriority parses user input strictly.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// DecodePriority decodes a stored token, falling back to Low for unknown values.
func DecodePriority(raw string) Priority {
	p := Priority(strings.TrimSpace(raw))
	if !p.Valid() {
		return PriorityLow
	}
	return p
}
