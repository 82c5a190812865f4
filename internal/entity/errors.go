package entity

import "errors"

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEntryNotFound = errors.New("journal entry not found")

	ErrBatchTooLarge = errors.New("write batch exceeds the store operation limit")
	ErrEmptyText     = errors.New("journal text is required")
)
