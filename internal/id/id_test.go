package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)

	for range 1000 {
		v, err := Generate(PrefixSeries)
		require.NoError(t, err)
		assert.False(t, seen[v], "ID should be unique: %s", v)
		seen[v] = true
	}

	assert.Len(t, seen, 1000)
}

func TestGenerate_Format(t *testing.T) {
	prefixes := []string{PrefixSeries, PrefixMembership, PrefixWork, PrefixPseud, PrefixUser, PrefixTag}

	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(v, prefix+"-"))
			nano := strings.TrimPrefix(v, prefix+"-")
			assert.Len(t, nano, 21)

			for _, c := range nano {
				ok := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
				assert.True(t, ok, "character %c should be URL-safe", c)
			}
		})
	}
}

func TestMustGenerate(t *testing.T) {
	v := MustGenerate(PrefixWork)
	assert.True(t, strings.HasPrefix(v, "work-"))
	assert.Equal(t, len("work")+1+21, len(v))
}
