// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the REST client for the Highlightly API.

# Endpoints

	POST /api/meaning          - definition lookup
	POST /auth/login           - email/password login
	POST /api/words/sync       - upload unsynced words
	GET  /api/words            - download saved words
	GET  /api/users/{id}       - canonical user profile
	PUT  /api/users/{id}       - push the cached user
	POST /api/devices/init     - allocate a device id

Authenticated calls send "Authorization: Bearer <token>". When a device id
is known it is sent as the Device-ID header.

# Errors

Non-2xx responses return *StatusError carrying the HTTP status and the
server's message. Transport failures are returned wrapped. Callers
classify with errors.As:

	var se *apiclient.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound { ... }
*/
package apiclient
