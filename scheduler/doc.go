// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scheduler runs the background session and sync tasks.

# Tasks

	sync              - upload unsynced words, mark them synced on success
	userCheck         - fetch the canonical user, log out blocked or invalid
	                    accounts, push monitored-field changes to open contexts
	userSyncToBackend - PUT the cached user to the API

Each task kind has an idle/running flag. A trigger that arrives while the
same kind is running returns ErrTaskBusy and is dropped; there is no queue.
Offline triggers return ErrOffline, and a missing session returns
ErrNotAuthenticated.

# Triggers

	every 5 minutes   - sync
	every 10 minutes  - userCheck
	8s after Start    - userCheck, then sync
	OnOnline          - userCheck, then sync
	HandleMessage     - SYNC_WORDS, CHECK_USER_STATUS, SYNC_USER_TO_BACKEND

Start is idempotent: it stops the current timers before arming new ones.
Stop only prevents future firings; a running task finishes.

# Failures

Authentication errors (401, 403, token-expiry messages) and 404s on the
user check force a logout, which stops the timers and clears the session.
Other sync failures increment failedSyncAttempts in local storage; from the
third consecutive failure on, each failure raises a notification. A
successful sync resets the counter and records lastSyncTime.
*/
package scheduler
