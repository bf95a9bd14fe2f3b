// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidBridgeKey = errors.New("invalid bridge key")
)

// wordSuffixLen is the number of base36 characters after the timestamp in a word ID
const wordSuffixLen = 9

// GenerateWordID creates a word record ID of the form word_<unixMillis>_<suffix>
// where suffix is 9 random base36 characters
func GenerateWordID(now time.Time) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate word ID: %w", err)
	}
	suffix := base36Encode(b)
	for len(suffix) < wordSuffixLen {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("word_%d_%s", now.UnixMilli(), suffix[:wordSuffixLen]), nil
}

// GenerateBridgeKey creates the HMAC-based key local clients present to the bridge
// This is deterministic for a device and salt, so it never needs to be stored
func GenerateBridgeKey(deviceUUID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(deviceUUID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateBridgeKey checks if the provided key was issued for the device
func ValidateBridgeKey(deviceUUID, key, salt string) error {
	expected := GenerateBridgeKey(deviceUUID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidBridgeKey
	}
	return nil
}

// base36Encode converts up to 8 bytes to base36 (0-9, a-z)
func base36Encode(data []byte) string {
	const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Convert bytes to a big integer
	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 13) // max length for uint64
	for num > 0 {
		result = append(result, base36Chars[num%36])
		num /= 36
	}

	// Reverse the string
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
