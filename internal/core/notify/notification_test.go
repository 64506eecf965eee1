package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, lvl := range Levels {
		got, err := ParseLevel(string(lvl))
		require.NoError(t, err)
		assert.Equal(t, lvl, got)
	}

	got, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, got)

	got, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, got)

	_, err = ParseLevel("fatal")
	assert.Error(t, err)
}
