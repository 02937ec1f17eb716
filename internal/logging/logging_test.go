package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("file sink receives log lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "sovereign.log")

		log, closer, err := New(Options{Level: "debug", FilePath: path})
		require.NoError(t, err)

		planner := Component(log, "planner")
		planner.Info().Str("model", "gemini-2.5-flash").Msg("plan generated")
		require.NoError(t, closer())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"component":"planner"`)
		assert.Contains(t, string(data), "plan generated")
	})

	t.Run("no writers yields a nop logger", func(t *testing.T) {
		log, closer, err := New(Options{Level: "info"})
		require.NoError(t, err)
		defer closer()

		assert.Equal(t, zerolog.Disabled, log.GetLevel())
	})

	t.Run("level filters lower severities", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sovereign.log")

		log, closer, err := New(Options{Level: "warn", FilePath: path})
		require.NoError(t, err)

		log.Info().Msg("dropped")
		log.Warn().Msg("kept")
		require.NoError(t, closer())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "dropped")
		assert.Contains(t, string(data), "kept")
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestDetachContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	detached := DetachContext(parent)
	cancel()

	require.Error(t, parent.Err())
	assert.NoError(t, detached.Err())
}

func TestDetachContextWithTimeout(t *testing.T) {
	parent, parentCancel := context.WithCancel(context.Background())
	detached, detachedCancel := DetachContextWithTimeout(parent, 50*time.Millisecond)
	defer detachedCancel()

	parentCancel()
	assert.NoError(t, detached.Err())

	<-detached.Done()
	assert.ErrorIs(t, detached.Err(), context.DeadlineExceeded)
}

func TestComponentTagPropagates(t *testing.T) {
	var sb strings.Builder
	log := zerolog.New(&sb)
	executor := Component(log, "executor")
	executor.Info().Msg("x")
	assert.Contains(t, sb.String(), `"component":"executor"`)
}
