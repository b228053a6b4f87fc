package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidState       = errors.New("invalid state for this operation")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. external stats API down
	ErrJobLockFailed      = errors.New("failed to acquire job lock")
)

// Error pairs one of the sentinel kinds above with a message that is safe to show clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// E builds a client-facing error of the given kind.
func E(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Domain errors shared across services.
var (
	ErrAlreadyStarted      = E(ErrInvalidState, "Battle already started")
	ErrBattleNotInProgress = E(ErrInvalidState, "Battle is not in progress")
	ErrBattleNotWaiting    = E(ErrInvalidState, "Battle is no longer accepting participants")
	ErrBattleFull          = E(ErrInvalidState, "Battle is full")
	ErrNotEnoughPlayers    = E(ErrInvalidState, "Battle needs at least two participants to start")
	ErrAlreadySubmitted    = E(ErrInvalidState, "Already submitted this problem")
	ErrNotCreator          = E(ErrForbidden, "Only the creator can start the battle")
	ErrNotParticipant      = E(ErrForbidden, "Not a participant in this battle")
	ErrAlreadyJoined       = E(ErrConflict, "Already joined this battle")
	ErrBattleNotFound      = E(ErrNotFound, "Battle not found")

	ErrTeamNotFound       = E(ErrNotFound, "Team not found")
	ErrAlreadyMember      = E(ErrConflict, "Already a member of this team")
	ErrNotTeamMember      = E(ErrNotFound, "Not a member of this team")
	ErrNotTeamLeader      = E(ErrForbidden, "Only the team leader can do this")
	ErrTeamClosed         = E(ErrForbidden, "Team requires an invitation")
	ErrLeaderCannotLeave  = E(ErrInvalidState, "Leader cannot leave while other members remain")
	ErrInvitationNotFound = E(ErrNotFound, "Invitation not found or already answered")

	ErrSelfFollow       = E(ErrBadRequest, "Cannot follow yourself")
	ErrAlreadyFollowing = E(ErrConflict, "Already following this user")
	ErrNotFollowing     = E(ErrNotFound, "Not following this user")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidState) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrJobLockFailed) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// PublicMessage returns the text a client may see for err. Wrapped driver or
// infrastructure details never leave the process.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch HTTPStatusFromError(err) {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusBadRequest:
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrBadRequest) {
			return "Invalid request"
		}
		return "Invalid state for this operation"
	case http.StatusConflict:
		return "Resource already exists"
	case http.StatusTooManyRequests:
		return "Too many requests"
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	default:
		return "Internal server error"
	}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
