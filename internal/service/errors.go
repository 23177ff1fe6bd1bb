package service

import (
	"errors"
	"fmt"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
)

// --- Error Definitions ---
var (
	// Import payload errors; both abort a batch before anything is written.
	ErrInvalidFormat = catalog.ErrInvalidFormat
	ErrParse         = catalog.ErrParse

	ErrValidationFailed   = errors.New("validation failed")
	ErrDuplicateName      = errors.New("an exercise with this name already exists")
	ErrDuplicateID        = errors.New("an exercise with this id already exists")
	ErrEntryNotFound      = errors.New("exercise not found")
	ErrPreconditionFailed = errors.New("exercise must be saved before media can be attached")
	ErrStoreUnavailable   = errors.New("store unavailable")

	ErrInvalidMediaKind = domain.ErrUnknownMediaKind
	ErrStorage          = errors.New("object storage failed")

	ErrFeedbackNotFound = errors.New("feedback not found")

	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrNotAdmin             = errors.New("account is not an administrator")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
)

// storeUnavailable wraps a collaborator failure so callers can match
// ErrStoreUnavailable and still read the backend detail.
func storeUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func storageFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func validationFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
