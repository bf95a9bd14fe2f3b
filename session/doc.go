// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session holds the session rules shared by the scheduler, the stores
and the bridge: where credentials live, how API errors are classified,
what a valid user looks like and how a session is terminated.

# Storage Keys

Sync area:

	authToken               - bearer token
	userId                  - account id
	user                    - cached models.User
	hasCompletedOnboarding  - onboarding flag
	deviceId                - server-assigned device id
	deviceUUID              - locally generated device UUID

Local area:

	lastSyncTime            - unix millis of the last successful word sync
	failedSyncAttempts      - consecutive non-auth sync failures

# Error Classification

An error is authentication-class when it is an *apiclient.StatusError with
status 401 or 403, or its message matches a token-expiry pattern. The
logout reason for an error is "account not found" for 404, "session
expired" for authentication errors and "session invalid" otherwise.

# Termination

Terminate removes the auth keys, broadcasts USER_LOGGED_OUT with the reason
and raises a notification. With PreserveUser the cached user is reduced to
its locally owned fields (records, extensionMode, createdAt,
disallowedList) and the onboarding flag is kept. Terminating a session that
has no token only broadcasts.
*/
package session
