package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "LEVEL(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		assert.Less(t, Levels[i-1], Levels[i])
	}
	assert.True(t, LevelError.Valid())
	assert.False(t, Level(-1).Valid())
	assert.False(t, Level(5).Valid())
}

func TestParseLevel(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	got, err := ParseLevel(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, got)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
