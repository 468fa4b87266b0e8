package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoplay/convoplay/internal/domain"
)

func TestLookup(t *testing.T) {
	p, err := Lookup("coder")
	require.NoError(t, err)
	assert.Equal(t, "Expert Coder", p.Name)
	assert.Contains(t, p.SystemPrompt, "expert programmer")
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("pirate")
	assert.ErrorIs(t, err, domain.ErrUnknownPersona)
}

func TestListStableOrder(t *testing.T) {
	personas := List()
	require.Len(t, personas, 4)

	keys := make([]string, len(personas))
	for i, p := range personas {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"assistant", "creative", "coder", "casual"}, keys)

	// Every listed persona resolves through Lookup.
	for _, p := range personas {
		got, err := Lookup(p.Key)
		require.NoError(t, err)
		assert.NotEmpty(t, got.SystemPrompt)
	}
}
