package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"insightval/internal/config"
)

func TestNew_LevelAndEncodingFallback(t *testing.T) {
	log, err := New(config.LogConfig{Level: "DEBUG", Encoding: "json"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(config.LogConfig{Level: "loud", Encoding: "xml"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNamed_NilParent(t *testing.T) {
	require.NotNil(t, Named(nil, "audit"))

	log, err := New(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, Named(log, "audit"))
}
