package services

import "errors"

// Shared sentinel errors, mapped to HTTP status codes in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrRegistrationNotOpen   = errors.New("tournament registration is not open")
	ErrTournamentFull        = errors.New("tournament registration is full")
	ErrTournamentNotActive   = errors.New("tournament is not active")
	ErrBracketAlreadyExists  = errors.New("bracket has already been generated for this tournament")
	ErrNotEnoughParticipants = errors.New("not enough confirmed participants for the declared draw size")
	ErrInvalidBracketSize    = errors.New("bracket size must be 16 or 32")

	// Score submission rules.
	ErrMatchNotReady       = errors.New("match is not ready for a score")
	ErrMatchAlreadyScored  = errors.New("match has already been scored")
	ErrScoresMissing       = errors.New("both scores are required")
	ErrNegativeScore       = errors.New("scores must be non-negative")
	ErrTieNotPermitted     = errors.New("ties are not permitted in race-to scoring")
	ErrPlayerNotInMatch    = errors.New("player does not belong to this match")
	ErrFinalNotReady       = errors.New("the final has not been decided yet")

	// Challenge rules.
	ErrChallengeNotOpen       = errors.New("challenge is not open for acceptance")
	ErrChallengeSelfAccept    = errors.New("cannot accept your own challenge")
	ErrChallengeNotAccepted   = errors.New("challenge has not been accepted")
	ErrInsufficientSpaBalance = errors.New("not enough SPA points for this stake")

	// Conflicts.
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrClubNameConflict       = errors.New("club name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRegistrationConflict   = errors.New("user is already registered for this tournament")

	// Authentication and authorization.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors for extra context.
	ErrUserNotFound       = errors.New("user not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrChallengeNotFound  = errors.New("challenge not found")

	// Tournament lifecycle.
	ErrTournamentInvalidRegDate          = errors.New("tournament registration end date must be before start date")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
