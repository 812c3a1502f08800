// Package businessflow contains the core business logic and use cases for creation and voting workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Creation-related errors
	ErrCreationNotFound = errors.New("creation not found")
	ErrDuplicateName    = errors.New("a creation with this name already exists")
	ErrDuplicateEmail   = errors.New("this email has already submitted a creation")
	ErrNotCreationOwner = errors.New("requester does not own this creation")
	ErrNameInvalid      = errors.New("creation name is invalid")
	ErrFlavorsRequired  = errors.New("at least one flavor is required")
	ErrTooManyFlavors   = errors.New("too many flavors selected")
	ErrUnknownFlavor    = errors.New("unknown flavor")
	ErrInvalidAccent    = errors.New("invalid accent")
	ErrInvalidBaseType  = errors.New("invalid base type")
	ErrInvalidVariant   = errors.New("invalid variant")
	ErrInvalidEmail     = errors.New("invalid email address")

	// Vote-related errors
	ErrSelfVote     = errors.New("voting for your own creation is not allowed")
	ErrAlreadyVoted = errors.New("this email already has a standing vote")
	ErrVoteNotFound = errors.New("no standing vote found for this email")

	// Filter errors
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// DuplicateEmailError carries the already-registered creation so the caller
// can surface it instead of a dead end.
type DuplicateEmailError struct {
	ExistingName string
	ExistingUUID string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email already submitted creation %q", e.ExistingName)
}

func (e *DuplicateEmailError) Unwrap() error {
	return ErrDuplicateEmail
}

func IsCreationNotFound(err error) bool {
	return errors.Is(err, ErrCreationNotFound)
}

func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

func IsDuplicateEmail(err error) bool {
	return errors.Is(err, ErrDuplicateEmail)
}

func IsNotCreationOwner(err error) bool {
	return errors.Is(err, ErrNotCreationOwner)
}

func IsSelfVote(err error) bool {
	return errors.Is(err, ErrSelfVote)
}

func IsAlreadyVoted(err error) bool {
	return errors.Is(err, ErrAlreadyVoted)
}

func IsVoteNotFound(err error) bool {
	return errors.Is(err, ErrVoteNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameInvalid) ||
		errors.Is(err, ErrFlavorsRequired) ||
		errors.Is(err, ErrTooManyFlavors) ||
		errors.Is(err, ErrUnknownFlavor) ||
		errors.Is(err, ErrInvalidAccent) ||
		errors.Is(err, ErrInvalidBaseType) ||
		errors.Is(err, ErrInvalidVariant) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPagination)
}
