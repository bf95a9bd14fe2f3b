// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stores provides the reactive state holders the bridge serves.

# Value

Value[T] is an observable holder. Subscribers are called with the current
value on Subscribe and after every Set or Update.

	v := stores.NewValue(false)
	stop := v.Subscribe(func(on bool) { ... })
	defer stop()

Every store persists before it publishes, so a failed write never shows up
as state.

# Stores

	AuthStore        - session state: Init, Login, Logout, CompleteOnboarding, UpdateUser
	ActivationStore  - user.extensionMode: Activate, Deactivate, Toggle
	DisallowedStore  - user.disallowedList: AddSite, RemoveSite, List
	RecordsStore     - user.records counters with a 300ms buffered write
	WordsStore       - the saved word list backed by the word database

All user mutations go through AuthStore.UpdateUser so the cached user in
storage and the published session state never diverge.
*/
package stores
