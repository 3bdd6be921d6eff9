package utilities

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewSnowflakeIDUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		if prev != "" && len(prev) == len(id) {
			assert.Less(t, prev, id)
		}
		prev = id
	}
}

func TestSetNode(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetNode(1)) })

	// snowflake nodes are limited to 10 bits
	require.Error(t, SetNode(5000))

	require.NoError(t, SetNode(7))
	id, err := snowflake.ParseString(NewSnowflakeID())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Node())
}

func TestNewKSUID(t *testing.T) {
	assert.Len(t, NewKSUID(), 27)
	assert.NotEqual(t, NewKSUID(), NewKSUID())
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestInitWithRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	lg, err := Init(Config{Level: "debug", File: path})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
	assert.True(t, lg.Core().Enabled(zapcore.DebugLevel))
}
