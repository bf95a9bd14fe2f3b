// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"errors"
	"regexp"
	"strings"
)

// MinWordLength is the minimum letter count after stripping apostrophes.
const MinWordLength = 3

var (
	ErrEmptySelection = errors.New("selection is empty")
	ErrMultipleTokens = errors.New("selection must be a single word")
	ErrNotAWord       = errors.New("selection contains non-letter characters")
	ErrTooShort       = errors.New("word is too short")
)

var wordShape = regexp.MustCompile(`^[a-zA-Z']+$`)

// Validate returns the single word held by text, or the reason it was rejected.
func Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptySelection
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) != 1 {
		return "", ErrMultipleTokens
	}

	word := tokens[0]
	if !wordShape.MatchString(word) {
		return "", ErrNotAWord
	}
	if len(strings.Trim(word, "'")) < MinWordLength {
		return "", ErrTooShort
	}
	return word, nil
}

var restrictedProtocols = map[string]bool{
	"chrome:":           true,
	"chrome-extension:": true,
	"brave:":            true,
	"about:":            true,
	"moz-extension:":    true,
	"safari-extension:": true,
	"edge:":             true,
	"file:":             true,
	"data:":             true,
}

var restrictedHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"[::1]":     true,
	"0.0.0.0":   true,
}

// IsRestricted reports whether the overlay may never run on loc.
func IsRestricted(loc Location) bool {
	return restrictedProtocols[strings.ToLower(loc.Protocol)] ||
		restrictedHosts[strings.ToLower(loc.Hostname)]
}
