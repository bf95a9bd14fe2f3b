// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Each value is taken from the first source that sets it:

 1. CLI flag
 2. Environment variable
 3. .env file (-env-file, default ".env"; a missing file is fine)
 4. YAML file (-c or HIGHLIGHTLY_CONFIG)
 5. Built-in default

# CLI Flags and Environment Variables

	-p                    PORT
	-d                    DATABASE_URL
	-t                    DATABASE_TYPE
	-api-url              API_URL
	-bridge-salt          BRIDGE_KEY_SALT
	-log-level            LOG_LEVEL
	-log-format           LOG_FORMAT
	-sync-interval        SYNC_INTERVAL
	-user-check-interval  USER_CHECK_INTERVAL
	-initial-delay        INITIAL_DELAY
	-probe-interval       PROBE_INTERVAL
	-http-timeout         HTTP_TIMEOUT

# YAML File

	port: 3318
	database:
	  type: sqlite
	  url: file:highlightly.db
	api_url: https://api.example.com
	bridge_salt: change-me
	log:
	  level: debug
	  format: text
	sync:
	  interval: 5m
	  user_check_interval: 10m
	  initial_delay: 8s

# Validation

ParseFlags returns an error when:

  - BRIDGE_KEY_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - LOG_FORMAT is not auto, text or json
  - LOG_LEVEL is not a slog level name
  - a duration does not parse
*/
package cliparse
