package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	t.Setenv("REINDEX_INTERVAL", "")

	d, err := parseInterval("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseInterval(" 30m ")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	_, err = parseInterval("soon")
	assert.Error(t, err)

	_, err = parseInterval("-1h")
	assert.Error(t, err)
}

func TestParseInterval_EnvironmentFallback(t *testing.T) {
	t.Setenv("REINDEX_INTERVAL", "6h")

	d, err := parseInterval("")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, d)

	d, err = parseInterval("1h")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := rootCmd()
	assert.NotNil(t, cmd.Flags().Lookup("reset"))
	assert.NotNil(t, cmd.Flags().Lookup("interval"))
}
