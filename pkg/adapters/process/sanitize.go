package process

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxSummarySize is 4KB (conservative default)
	DefaultMaxSummarySize = 4096
	// EnvMaxSummarySize is the environment variable to override the default
	EnvMaxSummarySize = "FLIPPER_MAX_SUMMARY_SIZE"
)

var (
	ErrSummaryTooLarge = errors.New("agent summary exceeds maximum allowed size")
	ErrInvalidUTF8     = errors.New("agent summary contains invalid UTF-8 sequences")
)

// sanitizeSummary cleans the summary an external process emitted by
// enforcing a size limit, validating UTF-8, and stripping dangerous
// control characters. The summary ends up in logs, reports, and the
// terminal, so an agent must not be able to smuggle ANSI sequences or
// size bombs through it.
func sanitizeSummary(input string) (string, error) {
	// 1. Enforce Size Limit
	limit := maxSummarySize()
	if len(input) > limit {
		// Oversized summaries are rejected rather than truncated so the
		// stored record never diverges from what the agent reported.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrSummaryTooLarge, len(input), limit)
	}

	// 2. Validate UTF-8
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// 3. Strip Control Characters
	// We preserve:
	// - Newline (\n)
	// - Tab (\t)
	// - Carriage Return (\r) - treated as whitespace
	// We remove:
	// - ANSI codes (ESC), NULL, BEL, etc.
	// This prevents log poisoning and terminal corruption.

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	// Slow path: build clean string
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxSummarySize() int {
	if val := os.Getenv(EnvMaxSummarySize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxSummarySize
}
