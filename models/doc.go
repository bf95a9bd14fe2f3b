// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines wire and domain types shared by the sync service.

# Domain Types

  - User: account profile plus locally owned fields (extensionMode,
    disallowedList, records)
  - UserRecords: usage counters
  - SavedWord: one entry of the local word database
  - AuthData / AuthState: persisted credentials and session state
  - SyncState: local bookkeeping of the word sync task
  - DeviceInfo: browser description sent to /api/devices/init

# Remote API Types

Request and response bodies of the remote REST API:

  - MeaningRequest / WordResponse
  - LoginRequest / LoginResponse
  - SyncWordsRequest / SyncWordsResponse
  - WordsResponse, UserResponse, InitDeviceResponse

# Messages

Message is the envelope exchanged between extension contexts. Broadcast
types:

	USER_UPDATED, EXTENSION_ACTIVATED, EXTENSION_DEACTIVATED,
	USER_LOGGED_OUT, DISALLOWED_LIST_UPDATED, NOTIFICATION

Request types handled by the scheduler:

	SYNC_WORDS, CHECK_USER_STATUS, SYNC_USER_TO_BACKEND

# Constants

Account statuses:

	StatusActive, StatusSuspended, StatusDeleted, StatusBanned

Logout reasons (Reason*) and notification texts (Notice*) are the
human-readable strings shown to the user.
*/
package models
