package filter

import (
	"fmt"
	"strings"
)

// Expression is a conjunction of conditions: a document must satisfy all of them.
type Expression struct {
	must []Condition
}

// And returns a copy of e with c appended.
func (e Expression) And(c Condition) Expression {
	must := make([]Condition, len(e.must), len(e.must)+1)
	copy(must, e.must)
	e.must = append(must, c)
	return e
}

// Must returns the conditions in the order they were added.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Kind discriminates condition variants.
type Kind int

const (
	// KindText is a full-text match on a TEXT field.
	KindText Kind = iota + 1
	// KindRange is a numeric range.
	KindRange
)

// Condition is a single filter clause on one field.
type Condition struct {
	kind      Kind
	key       string
	value     string
	rangeExpr *Range
}

// NewText creates a full-text condition: any of the terms in text must match key.
func NewText(key, text string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if strings.TrimSpace(text) == "" {
		return Condition{}, fmt.Errorf("text value is required for key %q", key)
	}
	return Condition{kind: KindText, key: key, value: text}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{kind: KindRange, key: key, rangeExpr: &r}, nil
}

// Kind returns the condition variant.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Text returns the full-text value.
func (c Condition) Text() string {
	if c.kind != KindText {
		return ""
	}
	return c.value
}

// Range returns the numeric range, nil for text conditions.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsText reports whether this is a full-text condition.
func (c Condition) IsText() bool { return c.kind == KindText }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.kind == KindRange }

// Range is the half-open numeric range [from, to).
type Range struct {
	from, to float64
}

// HalfOpen returns the range [from, to).
func HalfOpen(from, to float64) (Range, error) {
	if to < from {
		return Range{}, fmt.Errorf("range upper bound %v is below lower bound %v", to, from)
	}
	return Range{from: from, to: to}, nil
}

// From returns the inclusive lower bound.
func (r Range) From() float64 { return r.from }

// To returns the exclusive upper bound.
func (r Range) To() float64 { return r.to }
