package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/celebchat/persona-agent/internal/config"
)

func TestNewLevels(t *testing.T) {
	log := New(config.LoggingConfig{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = New(config.LoggingConfig{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log := New(config.LoggingConfig{Level: "verbose-ish"})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewEmptyLevelFallsBackToInfo(t *testing.T) {
	log := New(config.LoggingConfig{})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
