// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and the bridge key.

# Word IDs

Saved words are keyed by creation time plus a random suffix:

	id, err := auth.GenerateWordID(time.Now())  // word_1735689600000_k3j9x0a2b

The suffix is 9 base36 characters drawn from crypto/rand.

# Bridge Keys

Local clients authenticate to the bridge with an HMAC-SHA256 key derived
from the device UUID:

	key := auth.GenerateBridgeKey(deviceUUID, salt)
	err := auth.ValidateBridgeKey(deviceUUID, key, salt)

The key is URL-safe base64 without padding. Since it's deterministic, the
bridge validates it without storing it.
*/
package auth
