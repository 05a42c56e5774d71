package domain

import "errors"

var (
	// ErrPlayerNotFound is returned when a player id does not reference a registered player.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrSessionNotFound is returned when a game session id is unknown.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionNotFound indicates a submitted question ID is not in the catalog.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrSessionCompleted is returned for any mutation of an already completed session.
	ErrSessionCompleted = errors.New("game session already completed")
	// ErrAlreadyAnswered is returned when a question receives a second answer in one session.
	ErrAlreadyAnswered = errors.New("question already answered in this session")

	// ErrCatalogEmpty means there is nothing to draw a game from.
	ErrCatalogEmpty = errors.New("no questions available")
	// ErrDataIntegrity marks catalog entries that violate the structural preconditions of play.
	ErrDataIntegrity = errors.New("question data integrity violation")
)

// ValidationError reports bad input shape or content.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a client-facing message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsNotFound reports whether err names an unknown entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

// IsInvalidState reports whether err is an operation on a session in the wrong state.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrSessionCompleted) || errors.Is(err, ErrAlreadyAnswered)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
