package usecase

import (
	"errors"
	"fmt"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNoRowsSelected   = "NO_ROWS_SELECTED"
	CodeNoDataRows       = "NO_DATA_ROWS"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodeAgentNotFound    = "AGENT_NOT_FOUND"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeEntryNotFound    = "ENTRY_NOT_FOUND"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeInternal         = "INTERNAL"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeBulkChunkFailed  = "BULK_CHUNK_FAILED"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// storeError turns a store failure into the error taxonomy. Not-found
// sentinels become domain errors; anything else is technical.
func storeError(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case IsDomainError(err):
		return err
	case errors.Is(err, entity.ErrLeadNotFound):
		return NewDomainError(CodeLeadNotFound, "Lead not found.")
	case errors.Is(err, entity.ErrEntryNotFound):
		return NewDomainError(CodeEntryNotFound, "Journal entry not found.")
	case errors.Is(err, entity.ErrUserNotFound):
		return NewDomainError(CodeAgentNotFound, "User not found.")
	}
	return &TechnicalError{Code: CodeStoreUnavailable, Message: message, Err: err}
}
