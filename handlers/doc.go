// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the local bridge.

# Handler Types

Each handler is a struct over the shared Services:

  - BridgeHandler: Messages, the event stream and sync status
  - SessionHandler: Login, logout, onboarding and user preferences
  - WordHandler: Meaning lookup and the saved word list
  - DeviceHandler: Device registration with the remote API

	bridgeHandler := handlers.NewBridgeHandler(svc)

# Messages

POST /messages takes a message envelope:

	{"type": "SYNC_WORDS"}

SYNC_WORDS, CHECK_USER_STATUS and SYNC_USER_TO_BACKEND run the scheduler
task and answer {"success": true} or {"success": true, "skipped": "..."}
when the task was busy, offline or unauthenticated. USER_UPDATED,
EXTENSION_ACTIVATED, EXTENSION_DEACTIVATED, DISALLOWED_LIST_UPDATED and
USER_LOGGED_OUT are relayed to every other context.

# Event Stream

GET /events is a text/event-stream. Each broadcast arrives as

	event: message
	data: {"type":"USER_UPDATED","user":{...}}

# Lookups

POST /meaning validates the word the same way the selection detector does,
counts the request in the user's records and saves the word for the next
sync. A failed lookup answers 502 with a user-facing message.
*/
package handlers
