package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile([]string{`(`})
	assert.Error(t, err)
}

func TestDefault_KeepsOverlappingSignatures(t *testing.T) {
	assert.Equal(t, len(DefaultPatterns), Default().Len())
}

func TestSignatureSet_FirstMatchInListOrder(t *testing.T) {
	set := Default()

	// casa com "union\s+select" e não chega na variante UNION ALL SELECT
	sig, ok := set.First("1 UNION SELECT 2 -- x")
	require.True(t, ok)
	assert.Equal(t, `union\s+select`, sig.Pattern)

	sig, ok = set.First("1 union all select 2")
	require.True(t, ok)
	assert.Equal(t, `UNION\s+ALL\s+SELECT`, sig.Pattern)
}

func TestSignatureSet_CaseInsensitive(t *testing.T) {
	set := Default()
	for _, s := range []string{"' Or 1 = 1", "; DROP table users", "EXEC XP_cmdshell"} {
		_, ok := set.First(s)
		assert.True(t, ok, s)
	}
}
