// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/scheduler"
	"github.com/danielhkuo/highlightly/storage"
	"github.com/danielhkuo/highlightly/stores"
)

// Services is everything the bridge handlers talk to.
type Services struct {
	Auth       *stores.AuthStore
	Activation *stores.ActivationStore
	Disallowed *stores.DisallowedStore
	Records    *stores.RecordsStore
	Words      *stores.WordsStore
	Scheduler  *scheduler.Scheduler
	Bus        *storage.Bus
	Local      storage.Store
	API        *apiclient.Client
}
