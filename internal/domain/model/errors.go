//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "errors"

// Validation errors shared by kiosk request types.
var (
	ErrEmptyRequest       = errors.New("request is required")
	ErrVisitorIDRequired  = errors.New("visitor id is required and cannot be empty")
	ErrInvalidAction      = errors.New("action must be one of: Ingresso, Uscita")
	ErrInvalidTimestamp   = errors.New("timestamp must be a valid ISO-8601 instant")
	ErrSettingKeyRequired = errors.New("setting key is required and cannot be empty")
	ErrAccessIDRequired   = errors.New("access id is required and cannot be empty")
)
