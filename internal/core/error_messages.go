package core

// error_messages.go maps technical errors to user-facing messages with
// support codes. When a user quotes a code, look it up here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the size limit
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Unsupported file: not a CSV or XLSX export
//	          Patterns: "unsupported file type"
//	FILE003 - Encoding error: the requested input encoding is unknown
//	          Patterns: "unsupported input encoding"
//	FILE004 - No file: no file was selected
//	          Patterns: "no file provided", "no selected file"
//	FILE005 - Empty file: the export contains no rows
//	          Patterns: "empty file"
//
// # Header Errors (HDR001-HDR099)
//
//	HDR001 - Header not found: no row carried the required columns
//	         Patterns: "could not find csv header row"
//	HDR002 - Missing column: a required column is absent
//	         Patterns: "missing required column"
//
// # Layout Errors (LAY001-LAY099)
//
//	LAY001 - Unknown layout or output format
//	         Patterns: "unknown layout", "unsupported output format"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Conversion cancelled            Patterns: "conversion cancelled"
//	UPL002 - System busy                     Patterns: "too many uploads"
//	UPL003 - Bad upload form                 Patterns: "malformed upload"
//	UPL004 - Request cancelled               Patterns: "context canceled"
//	UPL005 - Request timeout                 Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests              Patterns: "rate limit"
//
// # Default (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// conversion_id the user was given.
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a shorter date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a shorter date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload the CRM export as .csv or .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported input encoding",
		msg: UserMessage{
			Message: "The input encoding is not supported",
			Action:  "Use utf-8, windows-1252 or latin1",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no selected file",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV export with appointment rows",
			Code:    "FILE005",
		},
	},

	// Header errors
	{
		pattern: "could not find csv header row",
		msg: UserMessage{
			Message: "Could not find the report's header row",
			Action:  "Check that the export includes the Customer, Vehicle and VIN columns",
			Code:    "HDR001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Re-run the report with all default columns enabled",
			Code:    "HDR002",
		},
	},

	// Layout errors
	{
		pattern: "unknown layout",
		msg: UserMessage{
			Message: "Unknown report layout",
			Action:  "Pick a layout from the list or leave it on auto",
			Code:    "LAY001",
		},
	},
	{
		pattern: "unsupported output format",
		msg: UserMessage{
			Message: "Unknown output format",
			Action:  "Choose csv or xlsx",
			Code:    "LAY001",
		},
	},

	// Upload errors
	{
		pattern: "conversion cancelled",
		msg: UserMessage{
			Message: "Conversion was cancelled",
			Action:  "Start a new conversion when ready",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "malformed upload",
		msg: UserMessage{
			Message: "The upload form could not be read",
			Action:  "Reload the page and try again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller export or check your connection",
			Code:    "UPL005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback with code ERR000 is returned.
//
//	msg := MapError(ErrHeaderNotFound)
//	// msg.Code == "HDR001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
