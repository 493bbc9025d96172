package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysOnlySetVariables(t *testing.T) {
	t.Setenv("CHECKERS_ENDPOINT_ADDR_HTTP", ":9999")
	t.Setenv("CHECKERS_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CHECKERS_UUID_SCHEME", "ci")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "ci", c.UUIDScheme)
	assert.Equal(t, 1024, c.MaxQueryTerms)
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseEnv_InvalidValuePanics(t *testing.T) {
	t.Setenv("CHECKERS_MAX_QUERY_TERMS", "many")

	c := &Config{}
	require.Panics(t, func() { parseEnv(c) })
}
