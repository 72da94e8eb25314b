package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference_Format(t *testing.T) {
	gen := NewReferenceGenerator("T01")

	ref := gen.NewReference()

	parts := strings.SplitN(ref, "-", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "POS", parts[0])
	assert.Equal(t, "T01", parts[1])
	assert.Len(t, parts[2], 20)
}

func TestNewReference_Unique(t *testing.T) {
	gen := NewReferenceGenerator("T01")

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref := gen.NewReference()
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
}
