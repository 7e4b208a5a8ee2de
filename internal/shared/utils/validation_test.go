package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	assert.NoError(t, ValidateString("", "title", 1, 10, false))
	assert.ErrorIs(t, ValidateString("", "title", 1, 10, true), ErrInvalid)
	assert.ErrorIs(t, ValidateString("abcdefghijk", "title", 1, 10, true), ErrInvalid)
	assert.ErrorIs(t, ValidateString("a\x00b", "title", 1, 10, true), ErrInvalid)
	assert.ErrorIs(t, ValidateString("\xff\xfe", "title", 1, 10, true), ErrInvalid)
	assert.NoError(t, ValidateString("héllo", "title", 1, 5, true), "length counts runes")
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("net-sec-101", "id", true))
	assert.ErrorIs(t, ValidateID("../etc/passwd", "id", true), ErrInvalid)
	assert.ErrorIs(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "id", true), ErrInvalid)
}

func TestValidateCommand(t *testing.T) {
	assert.NoError(t, ValidateCommand(""))
	assert.NoError(t, ValidateCommand(`firewall --add-rule "DENY ALL INBOUND ON 8080"`))
	assert.ErrorIs(t, ValidateCommand("help\nexit"), ErrInvalid)
	assert.ErrorIs(t, ValidateCommand(strings.Repeat("x", MaxCommandLength+1)), ErrInvalid)
}

func TestValidateHistory(t *testing.T) {
	assert.NoError(t, ValidateHistory([]string{"hi", "hello"}))
	assert.ErrorIs(t, ValidateHistory(make([]string, MaxHistoryTurns+1)), ErrInvalid)
	assert.ErrorIs(t, ValidateHistory([]string{strings.Repeat("x", 4*MaxPromptLength+1)}), ErrInvalid)
}
