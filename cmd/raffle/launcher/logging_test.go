package launcher

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	defer log.Root().SetHandler(log.DiscardHandler())

	t.Run("text", func(t *testing.T) {
		require := require.New(t)
		var buf bytes.Buffer
		le, err := SetupLogging(LoggingConfig{Verbosity: 3, Format: "text"}, &buf)
		require.NoError(err)
		require.Equal(logrus.InfoLevel, le.Logger.GetLevel())

		log.Info("Library message", "round", 7)
		log.Debug("Too verbose")
		le.WithField("node", "test").Info("Launcher message")

		out := buf.String()
		require.Contains(out, "Library message")
		require.Contains(out, "round=7")
		require.NotContains(out, "Too verbose")
		require.Contains(out, "Launcher message")
	})

	t.Run("json", func(t *testing.T) {
		require := require.New(t)
		var buf bytes.Buffer
		le, err := SetupLogging(LoggingConfig{Verbosity: 4, Format: "json"}, &buf)
		require.NoError(err)
		require.Equal(logrus.DebugLevel, le.Logger.GetLevel())

		le.WithField("round", 3).Debug("Debug message")
		line := strings.TrimSpace(buf.String())
		var entry map[string]interface{}
		require.NoError(json.Unmarshal([]byte(line), &entry))
		require.Equal("Debug message", entry["msg"])
		require.Equal(float64(3), entry["round"])
	})

	t.Run("bad sentry dsn", func(t *testing.T) {
		_, err := SetupLogging(LoggingConfig{Verbosity: 3, Format: "text", SentryDSN: "not a dsn"}, &bytes.Buffer{})
		require.Error(t, err)
	})
}

func TestLogrusLevel(t *testing.T) {
	require := require.New(t)
	require.Equal(logrus.FatalLevel, logrusLevel(0))
	require.Equal(logrus.ErrorLevel, logrusLevel(1))
	require.Equal(logrus.WarnLevel, logrusLevel(2))
	require.Equal(logrus.InfoLevel, logrusLevel(3))
	require.Equal(logrus.DebugLevel, logrusLevel(4))
	require.Equal(logrus.TraceLevel, logrusLevel(5))
	require.Equal(logrus.TraceLevel, logrusLevel(9))
}

func TestRecordFields(t *testing.T) {
	fields := recordFields([]interface{}{"round", 1, "winner", "0xabc", "dangling"})
	require.Equal(t, logrus.Fields{"round": 1, "winner": "0xabc"}, fields)
}
