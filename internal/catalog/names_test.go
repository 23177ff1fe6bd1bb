package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sageset/web/internal/domain"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Push Up", "push up"},
		{"  PUSH\t  up\n", "push up"},
		{"push up", "push up"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "NormalizeName(%q)", tt.in)
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	for _, n := range []string{"Push Up", "  a  B\tc ", "ÁBC  déf", "", "x"} {
		once := NormalizeName(n)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestIndexIsDuplicate(t *testing.T) {
	idx := NewIndex([]domain.CatalogEntry{
		{ID: "push_up", Name: "Push Up"},
		{ID: "push_up_2", Name: "Push Up Wide"},
	})

	assert.True(t, idx.IsDuplicate("Push Up", ""))
	assert.True(t, idx.IsDuplicate("  push   up ", ""))
	assert.False(t, idx.IsDuplicate("Push Up", "push_up"), "own name is not a duplicate when editing")
	assert.True(t, idx.IsDuplicate("Push Up", "push_up_2"))
	assert.False(t, idx.IsDuplicate("Squat", ""))
	assert.False(t, idx.IsDuplicate("   ", ""))

	id, ok := idx.Lookup("PUSH UP WIDE")
	assert.True(t, ok)
	assert.Equal(t, "push_up_2", id)
	assert.True(t, idx.Has("push_up"))
	assert.Equal(t, 2, idx.Len())
}

func TestIndexIDsReturnsCopy(t *testing.T) {
	idx := NewIndex([]domain.CatalogEntry{{ID: "a", Name: "A"}})
	ids := idx.IDs()
	ids.Add("b")
	assert.False(t, idx.Has("b"))
}
