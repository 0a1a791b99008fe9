package oql

import (
	"fmt"
)

// PartType identifies the comparison kind of one parsed finder-method part.
type PartType int

const (
	PartSimpleProperty PartType = iota
	PartNegatingSimpleProperty
	PartIsNull
	PartIsNotNull
	PartTrue
	PartFalse
	PartGreaterThan
	PartGreaterThanEqual
	PartLessThan
	PartLessThanEqual
	PartIn
	PartNotIn
	PartLike
	PartStartingWith
	PartEndingWith
	PartContaining
	PartBetween
	PartExists
	PartRegex
)

var partTypeNames = map[PartType]string{
	PartSimpleProperty:         "SIMPLE_PROPERTY",
	PartNegatingSimpleProperty: "NEGATING_SIMPLE_PROPERTY",
	PartIsNull:                 "IS_NULL",
	PartIsNotNull:              "IS_NOT_NULL",
	PartTrue:                   "TRUE",
	PartFalse:                  "FALSE",
	PartGreaterThan:            "GREATER_THAN",
	PartGreaterThanEqual:       "GREATER_THAN_EQUAL",
	PartLessThan:               "LESS_THAN",
	PartLessThanEqual:          "LESS_THAN_EQUAL",
	PartIn:                     "IN",
	PartNotIn:                  "NOT_IN",
	PartLike:                   "LIKE",
	PartStartingWith:           "STARTING_WITH",
	PartEndingWith:             "ENDING_WITH",
	PartContaining:             "CONTAINING",
	PartBetween:                "BETWEEN",
	PartExists:                 "EXISTS",
	PartRegex:                  "REGEX",
}

// String returns the part type's finder-method name.
func (t PartType) String() string {
	if name, ok := partTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PartType(%d)", int(t))
}

// IgnoreCase controls the case sensitivity of a predicate part.
type IgnoreCase int

const (
	IgnoreCaseNever IgnoreCase = iota
	IgnoreCaseAlways
	IgnoreCaseWhenPossible
)

// Part is one parsed fragment of a derived finder-method name: a dotted
// property path plus the comparison applied to it.
type Part struct {
	Type       PartType
	Property   string
	IgnoreCase IgnoreCase
}

// ParameterIndexes hands out the monotonically advancing placeholder indexes
// bound to finder-method parameters. OQL placeholders are 1-based.
type ParameterIndexes struct {
	next int
}

// NewParameterIndexes starts the index sequence at the given value.
func NewParameterIndexes(start int) *ParameterIndexes {
	return &ParameterIndexes{next: start}
}

// Next returns the current index and advances the sequence.
func (pi *ParameterIndexes) Next() int {
	index := pi.next
	pi.next++
	return index
}

// Predicate renders an OQL conditional expression fragment qualified by the
// given iterator alias. An empty alias falls back to the internal entry
// alias used by derived paged queries.
type Predicate interface {
	Render(alias string) (string, error)
}

// predicateFunc adapts a function to the Predicate interface.
type predicateFunc func(alias string) (string, error)

func (f predicateFunc) Render(alias string) (string, error) {
	return f(alias)
}

const (
	andTemplate = "%s AND %s"
	orTemplate  = "%s OR %s"
)

// Predicates composes predicate fragments into a WHERE clause body with AND
// and OR. Every combination returns a new value; no fragment is mutated.
type Predicates struct {
	current Predicate
}

// NewPredicate wraps the conditional expression for a single finder-method
// part, drawing parameter placeholders from the given index sequence.
func NewPredicate(part Part, indexes *ParameterIndexes) *Predicates {
	return &Predicates{current: &atomicPredicate{part: part, indexes: indexes}}
}

func wrapPredicate(p Predicate) *Predicates {
	return &Predicates{current: p}
}

// And concatenates the given predicate onto the current one with AND.
func (p *Predicates) And(other Predicate) *Predicates {
	return p.concatenate(other, andTemplate)
}

// Or concatenates the given predicate onto the current one with OR.
func (p *Predicates) Or(other Predicate) *Predicates {
	return p.concatenate(other, orTemplate)
}

func (p *Predicates) concatenate(other Predicate, template string) *Predicates {
	left := p.current

	return wrapPredicate(predicateFunc(func(alias string) (string, error) {
		leftExpr, err := left.Render(alias)
		if err != nil {
			return "", err
		}

		rightExpr, err := other.Render(alias)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf(template, leftExpr, rightExpr), nil
	}))
}

// Render implements Predicate.
func (p *Predicates) Render(alias string) (string, error) {
	return p.current.Render(alias)
}

// atomicPredicate renders the conditional expression for a single part.
type atomicPredicate struct {
	part    Part
	indexes *ParameterIndexes
}

func (ap *atomicPredicate) Render(alias string) (string, error) {
	property := ap.resolveProperty(alias)

	if ap.ignoreCase() {
		return fmt.Sprintf("%s.equalsIgnoreCase($%d)", property, ap.indexes.Next()), nil
	}

	operator, err := resolveOperator(ap.part.Type)
	if err != nil {
		return "", err
	}

	switch ap.part.Type {
	case PartIsNull, PartIsNotNull:
		return fmt.Sprintf("%s %s NULL", property, operator), nil
	case PartTrue, PartFalse:
		return fmt.Sprintf("%s %s %t", property, operator, ap.part.Type == PartTrue), nil
	default:
		return fmt.Sprintf("%s %s $%d", property, operator, ap.indexes.Next()), nil
	}
}

func (ap *atomicPredicate) ignoreCase() bool {
	switch ap.part.IgnoreCase {
	case IgnoreCaseAlways, IgnoreCaseWhenPossible:
		return true
	default:
		return false
	}
}

func (ap *atomicPredicate) resolveProperty(alias string) string {
	if alias == "" {
		alias = Alias
	}
	return fmt.Sprintf("%s.%s", alias, ap.part.Property)
}

// resolveOperator maps a part type to its OQL operator. Wildcard placement
// for the LIKE family is the caller's concern, carried in the bound
// parameter value.
func resolveOperator(partType PartType) (string, error) {
	switch partType {
	case PartFalse, PartIsNull, PartSimpleProperty, PartTrue:
		return "=", nil
	case PartIsNotNull, PartNegatingSimpleProperty:
		return "!=", nil
	case PartGreaterThan:
		return ">", nil
	case PartGreaterThanEqual:
		return ">=", nil
	case PartLessThan:
		return "<", nil
	case PartLessThanEqual:
		return "<=", nil
	case PartIn:
		return "IN SET", nil
	case PartNotIn:
		return "NOT IN SET", nil
	case PartLike, PartStartingWith, PartEndingWith, PartContaining:
		return "LIKE", nil
	default:
		return "", NewUnsupportedOperatorError("unsupported operator [%s]", partType)
	}
}
