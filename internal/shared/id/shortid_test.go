package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	got, err := Generate(12)
	require.NoError(t, err)
	assert.Len(t, got, 12)

	// Zero or negative length falls back to the default.
	got, err = Generate(0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLength)
}

func TestGenerate_Alphabet(t *testing.T) {
	got, err := Generate(64)
	require.NoError(t, err)
	for _, r := range got {
		assert.Contains(t, alphabet, string(r))
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	sid, err := GenerateWithPrefix(PrefixSubscription, 12)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sid, "sub_"))
	assert.Len(t, sid, len("sub_")+12)
}

func TestValidatePrefix(t *testing.T) {
	assert.NoError(t, ValidatePrefix("plan_xK9mP2vL3nQa", PrefixPlan))
	assert.Error(t, ValidatePrefix("plan_", PrefixPlan))
	assert.Error(t, ValidatePrefix("sub_xK9mP2vL3nQa", PrefixPlan))
	assert.Error(t, ValidatePrefix("", PrefixPlan))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sid, err := Generate(12)
		require.NoError(t, err)
		assert.False(t, seen[sid], "duplicate id generated")
		seen[sid] = true
	}
}
