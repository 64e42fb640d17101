package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggers(t *testing.T) {
	prevCLI, prevServer := CLILogger, ServerLogger
	t.Cleanup(func() { CLILogger, ServerLogger = prevCLI, prevServer })

	CLILogger, ServerLogger = nil, nil
	_, silent := DispatchLogger().(*zap.Logger)
	assert.True(t, silent, "no logger configured falls back to a nop")

	InitCLILogger("fredlens-test", true)
	require.NotNil(t, CLILogger)
	assert.Same(t, CLILogger, DispatchLogger())
	CLILogger.Debug("dispatch logger ready", zap.String("mode", "sync"))

	InitServerLogger("fredlens-test", "debug", "namelens_fredlens")
	require.NotNil(t, ServerLogger)
	assert.Same(t, ServerLogger, DispatchLogger())
	ServerLogger.Info("gateway logger ready", zap.Int("port", 8080))
}

func TestServerLoggerConfig(t *testing.T) {
	cfg := serverLoggerConfig("fredlens", "warning", "namelens_fredlens")
	assert.Equal(t, logging.ProfileStructured, cfg.Profile)
	assert.Equal(t, "WARN", cfg.DefaultLevel)
	assert.Equal(t, "namelens_fredlens", cfg.StaticFields["namespace"])
	require.Len(t, cfg.Middleware, 1)
	assert.Equal(t, "correlation", cfg.Middleware[0].Name)

	cfg = serverLoggerConfig("fredlens", "", "")
	assert.Equal(t, "INFO", cfg.DefaultLevel)
	assert.Empty(t, cfg.StaticFields)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"DEBUG":   "DEBUG",
		" warn ":  "WARN",
		"error":   "ERROR",
		"verbose": "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("127.0.0.1:9464")
	require.NoError(t, err)
	assert.Equal(t, 9464, port)

	_, err = resolvePort("no-port")
	assert.Error(t, err)
}
