package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid input")

// Size limits for user supplied text
const (
	MaxIDLength      = 128
	MaxCommandLength = 512
	MaxTitleLength   = 256
	MaxMessageLength = 2048
	MaxPromptLength  = 16 * 1024
	MaxHistoryTurns  = 100
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, fieldName)
	}
	if value == "" {
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalid, fieldName)
	}
	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInvalid, fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalid, fieldName, maxLen)
	}

	// Null bytes never reach the transcript or the AI backend
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%w: %s contains invalid characters", ErrInvalid, fieldName)
	}
	return nil
}

// ValidateID validates a catalog or notification id
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", ErrInvalid, fieldName)
	}
	return nil
}

// ValidateCommand validates a terminal command line. Blank lines are
// allowed; the session ignores them.
func ValidateCommand(command string) error {
	if err := ValidateString(command, "command", 0, MaxCommandLength, false); err != nil {
		return err
	}
	if strings.ContainsAny(command, "\n\r") {
		return fmt.Errorf("%w: command must be a single line", ErrInvalid)
	}
	return nil
}

// ValidatePrompt validates a prompt sent to the AI backend
func ValidatePrompt(prompt string) error {
	return ValidateString(prompt, "prompt", 0, MaxPromptLength, false)
}

// ValidateHistory bounds a chat history by turn count and total size
func ValidateHistory(turns []string) error {
	if len(turns) > MaxHistoryTurns {
		return fmt.Errorf("%w: history must not exceed %d turns", ErrInvalid, MaxHistoryTurns)
	}
	total := 0
	for _, t := range turns {
		total += len(t)
	}
	if total > 4*MaxPromptLength {
		return fmt.Errorf("%w: history is too large", ErrInvalid)
	}
	return nil
}
