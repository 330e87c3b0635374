package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_EmptyQuery(t *testing.T) {
	assert.NoError(t, Validate(NewQuery()))
}

func TestValidate_NilQuery(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"nil query"}, ve.Violations)
}

func TestValidate_MissingSets(t *testing.T) {
	err := Validate(&Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "affirmed predicate set is nil")
	assert.Contains(t, err.Error(), "negated predicate set is nil")
}

func TestValidate_NegatedOnlyFields(t *testing.T) {
	q := NewQuery()
	q.Negated.Sort = "updated"
	q.Negated.Keywords = []string{"bug"}
	q.Negated.Dynamic = []DynamicValue{{Key: "color", Value: "red"}}

	err := Validate(q)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, 3)
	assert.Contains(t, ve.Violations[0], "sort")
}

func TestValidate_NilFlagMaps(t *testing.T) {
	q := &Query{Affirmed: &PredicateSet{}, Negated: NewPredicateSet()}

	err := Validate(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "affirmed is-flags map is nil")
	assert.Contains(t, err.Error(), "affirmed have-flags map is nil")
}
