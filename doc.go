// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Highlightly background service.

Highlightly shows a popup definition for a word selected on a web page. This
service keeps the saved words, the session and the user's preferences, syncs
them with the remote API and serves the extension contexts through a local
bridge.

# Starting the Service

	BRIDGE_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -api-url https://api.example.com -bridge-salt ...

The bridge key that extension contexts must send as X-Bridge-Key is logged
at startup.

# Configuration

Required settings:

  - BRIDGE_KEY_SALT (-bridge-salt): Secret for the bridge key HMAC

Optional settings:

  - PORT (-p): Bridge port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:highlightly.db)
  - API_URL (-api-url): Remote API base URL
  - SYNC_INTERVAL, USER_CHECK_INTERVAL, INITIAL_DELAY: Scheduler timing
  - PROBE_INTERVAL: Network probe interval
  - HTTP_TIMEOUT: Remote API request timeout
  - LOG_LEVEL, LOG_FORMAT: Logging

Settings may also come from a .env file (-env-file) or a YAML file (-c).

# Architecture

  - selection, overlay: Selection detector and overlay placement
  - scheduler: Periodic word sync and user checks
  - stores: Reactive session, activation, disallowed, records and words state
  - storage: Key-value areas and the broadcast bus
  - session: Session loading, error classification and logout
  - apiclient: Remote API client
  - db: Schema, word database and key-value table
  - device, netstatus: Device registration and connectivity
  - handlers, router, middleware: The local bridge
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
