// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Message types exchanged between extension contexts
const (
	MsgUserUpdated           = "USER_UPDATED"
	MsgExtensionActivated    = "EXTENSION_ACTIVATED"
	MsgExtensionDeactivated  = "EXTENSION_DEACTIVATED"
	MsgUserLoggedOut         = "USER_LOGGED_OUT"
	MsgDisallowedListUpdated = "DISALLOWED_LIST_UPDATED"
	MsgSyncWords             = "SYNC_WORDS"
	MsgCheckUserStatus       = "CHECK_USER_STATUS"
	MsgSyncUserToBackend     = "SYNC_USER_TO_BACKEND"
	MsgNotification          = "NOTIFICATION"
)

// Message is the envelope for broadcasts and on-demand requests.
// Only the fields relevant to Type are set.
type Message struct {
	Type           string   `json:"type"`
	User           *User    `json:"user,omitempty"`
	IsActivated    *bool    `json:"isActivated,omitempty"`
	DisallowedList []string `json:"disallowedList,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Text           string   `json:"message,omitempty"`
}

// Logout reasons shown to the user
const (
	ReasonManual               = "You have been logged out successfully"
	ReasonSessionExpired       = "Your session has expired. Please log in again"
	ReasonAccountSuspended     = "Your account has been suspended"
	ReasonAccountDeleted       = "Your account has been deleted"
	ReasonAccountBanned        = "Your account has been banned"
	ReasonAccountNotFound      = "Account not found. Please log in again"
	ReasonSessionInvalid       = "Your session is invalid. Please log in again"
	ReasonInvalidUserData      = "Unable to verify user data. Please log in again"
	ReasonFetchUserFailed      = "Unable to retrieve user information. Please log in again"
	ReasonInvalidUserStructure = "Authentication error. Please log in again"
)

// Notification texts
const (
	NoticeSyncSuccess  = "Successfully synced your words"
	NoticeSyncFailed   = "Failed to sync words. Will retry later"
	NoticeUserUpdated  = "Your account information has been updated"
	NoticeActivated    = "Extension activated"
	NoticeDeactivated  = "Extension deactivated"
	NoticeDeleteFailed = "Error deleting word"
)
