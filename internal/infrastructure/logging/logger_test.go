package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "DEBUG", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "debug enabled")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "info", DefaultConfig().Level)
	assert.True(t, DevelopmentConfig().Development)
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
	assert.NotNil(t, NewNop().Component("windows"))
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "prod")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "dev")
	assert.False(t, IsProduction())
}
