package oql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicPredicateRendering(t *testing.T) {
	tests := []struct {
		name     string
		part     Part
		expected string
	}{
		{"equality", Part{Type: PartSimpleProperty, Property: "name"}, "entry.name = $1"},
		{"negated equality", Part{Type: PartNegatingSimpleProperty, Property: "name"}, "entry.name != $1"},
		{"greater than", Part{Type: PartGreaterThan, Property: "age"}, "entry.age > $1"},
		{"greater than equal", Part{Type: PartGreaterThanEqual, Property: "age"}, "entry.age >= $1"},
		{"less than", Part{Type: PartLessThan, Property: "age"}, "entry.age < $1"},
		{"less than equal", Part{Type: PartLessThanEqual, Property: "age"}, "entry.age <= $1"},
		{"in", Part{Type: PartIn, Property: "state"}, "entry.state IN SET $1"},
		{"not in", Part{Type: PartNotIn, Property: "state"}, "entry.state NOT IN SET $1"},
		{"like", Part{Type: PartLike, Property: "name"}, "entry.name LIKE $1"},
		{"starting with", Part{Type: PartStartingWith, Property: "name"}, "entry.name LIKE $1"},
		{"ending with", Part{Type: PartEndingWith, Property: "name"}, "entry.name LIKE $1"},
		{"containing", Part{Type: PartContaining, Property: "name"}, "entry.name LIKE $1"},
		{"is null", Part{Type: PartIsNull, Property: "name"}, "entry.name = NULL"},
		{"is not null", Part{Type: PartIsNotNull, Property: "name"}, "entry.name != NULL"},
		{"true", Part{Type: PartTrue, Property: "active"}, "entry.active = true"},
		{"false", Part{Type: PartFalse, Property: "active"}, "entry.active = false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := NewPredicate(tt.part, NewParameterIndexes(1)).Render("")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rendered)
		})
	}
}

func TestPredicateUsesGivenAlias(t *testing.T) {
	rendered, err := NewPredicate(Part{Type: PartSimpleProperty, Property: "name"},
		NewParameterIndexes(1)).Render("c")
	require.NoError(t, err)
	assert.Equal(t, "c.name = $1", rendered)
}

func TestIgnoreCaseRendersEqualsIgnoreCase(t *testing.T) {
	for _, ignoreCase := range []IgnoreCase{IgnoreCaseAlways, IgnoreCaseWhenPossible} {
		part := Part{Type: PartSimpleProperty, Property: "name", IgnoreCase: ignoreCase}

		rendered, err := NewPredicate(part, NewParameterIndexes(1)).Render("")
		require.NoError(t, err)
		assert.Equal(t, "entry.name.equalsIgnoreCase($1)", rendered)
	}
}

func TestNullAndBooleanPartsConsumeNoParameterIndex(t *testing.T) {
	indexes := NewParameterIndexes(1)

	composed := NewPredicate(Part{Type: PartIsNull, Property: "deletedAt"}, indexes).
		And(NewPredicate(Part{Type: PartTrue, Property: "active"}, indexes)).
		And(NewPredicate(Part{Type: PartSimpleProperty, Property: "name"}, indexes))

	rendered, err := composed.Render("")
	require.NoError(t, err)
	assert.Equal(t, "entry.deletedAt = NULL AND entry.active = true AND entry.name = $1", rendered)
}

func TestAndOrComposition(t *testing.T) {
	indexes := NewParameterIndexes(1)

	composed := NewPredicate(Part{Type: PartGreaterThanEqual, Property: "age"}, indexes).
		And(NewPredicate(Part{Type: PartSimpleProperty, Property: "state"}, indexes)).
		Or(NewPredicate(Part{Type: PartLike, Property: "name"}, indexes))

	rendered, err := composed.Render("c")
	require.NoError(t, err)
	assert.Equal(t, "c.age >= $1 AND c.state = $2 OR c.name LIKE $3", rendered)
}

func TestCompositionDoesNotMutateReceiver(t *testing.T) {
	indexes := NewParameterIndexes(1)

	base := NewPredicate(Part{Type: PartSimpleProperty, Property: "name"}, indexes)
	widened := base.Or(NewPredicate(Part{Type: PartSimpleProperty, Property: "nickname"}, indexes))

	widenedRendered, err := widened.Render("")
	require.NoError(t, err)
	assert.Equal(t, "entry.name = $1 OR entry.nickname = $2", widenedRendered)

	// base still renders its own condition alone; parameter indexes advance
	// per render, so only the placeholder number moves on.
	baseRendered, err := base.Render("")
	require.NoError(t, err)
	assert.Equal(t, "entry.name = $3", baseRendered)
}

func TestUnsupportedPartTypesFail(t *testing.T) {
	for _, partType := range []PartType{PartBetween, PartExists, PartRegex} {
		t.Run(partType.String(), func(t *testing.T) {
			_, err := NewPredicate(Part{Type: partType, Property: "name"},
				NewParameterIndexes(1)).Render("")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedOperator))
			assert.Contains(t, err.Error(), partType.String())
		})
	}
}

func TestParameterIndexes(t *testing.T) {
	indexes := NewParameterIndexes(1)
	assert.Equal(t, 1, indexes.Next())
	assert.Equal(t, 2, indexes.Next())
	assert.Equal(t, 3, indexes.Next())
}

func TestPartTypeString(t *testing.T) {
	assert.Equal(t, "SIMPLE_PROPERTY", PartSimpleProperty.String())
	assert.Equal(t, "GREATER_THAN_EQUAL", PartGreaterThanEqual.String())
	assert.Equal(t, "PartType(99)", PartType(99).String())
}
