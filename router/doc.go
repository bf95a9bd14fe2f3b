// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the routes of the local bridge.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg, deviceUUID)

Every route except /health and / requires the X-Bridge-Key header derived
from deviceUUID and cfg.BridgeSalt.

# Endpoints

Health:

	GET /health

Messaging:

	POST /messages - On-demand tasks and broadcast relay
	GET  /events   - Server-sent broadcast stream
	GET  /status   - Sync bookkeeping

Session:

	GET  /session             - Current session state
	POST /auth/login          - Log in
	POST /auth/logout         - Log out (?silent=true)
	POST /onboarding/complete - Mark onboarding done

Preferences:

	POST   /activation        - Activate or deactivate
	POST   /activation/toggle - Flip the mode
	POST   /records/reset     - Zero the usage counters
	GET    /disallowed        - Disallowed sites
	POST   /disallowed        - Add a site
	DELETE /disallowed/{site} - Remove a site

Words:

	POST   /meaning    - Look up and save a word
	GET    /words      - Saved words, newest first
	POST   /words/pull - Import the server's words
	DELETE /words      - Delete every saved word
	DELETE /words/{id} - Delete a saved word

Device:

	POST /devices/init - Register with the remote API
*/
package router
