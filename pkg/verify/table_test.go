package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/geoproof/pkg/normalize"
	"github.com/chazu/geoproof/pkg/theorem"
)

var _ normalize.Verifier = (*Table)(nil)

func TestTable(t *testing.T) {
	table := NewTable(theorem.Collinear(1, 2, 3), theorem.Collinear(3, 2, 1))
	assert.Equal(t, 1, table.Len())

	tests := []struct {
		name string
		th   theorem.Theorem
		want bool
	}{
		{"recorded", theorem.Collinear(1, 2, 3), true},
		{"reordered", theorem.Collinear(2, 3, 1), true},
		{"unknown", theorem.Collinear(1, 2, 4), false},
		{"reflexive equality", theorem.Equality(theorem.PointKind, 5, 5), true},
		{"unknown equality", theorem.Equality(theorem.PointKind, 5, 6), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.IsTrue(tt.th))
		})
	}

	var empty Table
	assert.False(t, empty.IsTrue(theorem.Collinear(1, 2, 3)))
	empty.Add(theorem.Collinear(1, 2, 3))
	assert.True(t, empty.IsTrue(theorem.Collinear(1, 2, 3)))
}
