package datatable

// error_messages.go maps technical errors to user-facing messages with a
// code that support staff can look up.
//
//	CFG001 - Invalid configuration: table columns could not be loaded
//	CFG002 - Unknown formatter: a column references a missing field formatter
//	TBL001 - Unknown table: no table is registered under the requested name
//	QRY001 - Invalid query: paging, sort or filter parameters are out of range
//	DB004  - Connection refused
//	DB005  - Connection reset
//	DB006  - Timeout
//	DB007  - Deadlock
//	ERR000 - Fallback when nothing matches
//
// Sentinel errors are matched with errors.Is first; anything else falls back
// to case-insensitive substring patterns, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// More specific sentinels first: ErrFormatterNotFound wraps ErrInvalidConfiguration.
var sentinelMessages = []sentinelMessage{
	{
		err: ErrFormatterNotFound,
		msg: UserMessage{
			Message: "A column references an unknown formatter",
			Action:  "Check the column definitions of this table",
			Code:    "CFG002",
		},
	},
	{
		err: ErrInvalidConfiguration,
		msg: UserMessage{
			Message: "The table configuration is invalid",
			Action:  "Check the column definitions of this table",
			Code:    "CFG001",
		},
	},
	{
		err: ErrUnknownTable,
		msg: UserMessage{
			Message: "The specified table does not exist",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		err: ErrInvalidQuery,
		msg: UserMessage{
			Message: "The request parameters are invalid",
			Action:  "Reload the page and try again",
			Code:    "QRY001",
		},
	},
}

var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow the search or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow the search or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
