// Package errors holds the two error kinds surfaced by the core and every
// specific failure built on top of them.
//
// Each specific error unwraps to exactly one kind, so callers classify with
// errors.Is(err, ErrInput) or errors.Is(err, ErrAccess).
package errors

import "errors"

var (
	ErrInput  = errors.New("input error")
	ErrAccess = errors.New("access error")
)

type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string { return e.msg }

func (e kindError) Unwrap() error { return e.kind }

func input(msg string) error  { return kindError{kind: ErrInput, msg: msg} }
func access(msg string) error { return kindError{kind: ErrAccess, msg: msg} }

// Identity and membership
var (
	ErrUserNotFound      = input("user not found")
	ErrChannelNotFound   = input("channel not found")
	ErrDmNotFound        = input("dm not found")
	ErrAlreadyMember     = input("user is already a member")
	ErrNotMemberTarget   = input("user is not a member")
	ErrAlreadyOwner      = input("user is already an owner")
	ErrNotOwnerTarget    = input("user is not an owner")
	ErrLastOwner         = input("cannot remove the last owner")
	ErrLastGlobalOwner   = input("cannot remove or demote the only global owner")
	ErrInvalidPermission = input("invalid permission id")
	ErrDuplicateUsers    = input("user ids must be distinct")
	ErrNotMember         = access("user is not a member")
	ErrNotOwner          = access("user lacks owner permission")
	ErrNotGlobalOwner    = access("user is not a global owner")
	ErrPrivateChannel    = access("channel is private")
	ErrNotDmCreator      = access("user is not the dm creator")
)

// Messages
var (
	ErrMessageNotFound  = input("message not found")
	ErrMessageTooLong   = input("message exceeds 1000 characters")
	ErrMessageEmpty     = input("message is empty")
	ErrInvalidStart     = input("start exceeds total messages")
	ErrInvalidReact     = input("invalid react id")
	ErrAlreadyReacted   = input("message already reacted")
	ErrNotReacted       = input("message not reacted")
	ErrAlreadyPinned    = input("message already pinned")
	ErrNotPinned        = input("message not pinned")
	ErrTimeInPast       = input("time is in the past")
	ErrInvalidTarget    = input("exactly one of channel or dm must be given")
	ErrInvalidQuery     = input("query must be between 1 and 1000 characters")
	ErrNotAuthorOrOwner = access("user is neither the author nor an owner")
)

// Channels and standups
var (
	ErrInvalidChannelName = input("channel name must be between 1 and 20 characters")
	ErrStandupActive      = input("a standup is already active")
	ErrStandupNotActive   = input("no standup is active")
	ErrInvalidLength      = input("standup length cannot be negative")
	ErrStandupStarter     = input("the standup starter cannot leave before it ends")
)

// Accounts and profiles
var (
	ErrInvalidCredentials = input("invalid email or password")
	ErrEmailTaken         = input("email is already in use")
	ErrHandleTaken        = input("handle is already in use")
	ErrInvalidHandle      = input("handle must be 3 to 20 alphanumeric characters")
	ErrInvalidRegister    = input("invalid registration details")
	ErrInvalidName        = input("names must be between 1 and 50 characters")
	ErrInvalidEmail       = input("invalid email")
	ErrInvalidPassword    = input("password must be at least 6 characters")
	ErrInvalidResetCode   = input("invalid reset code")
	ErrInvalidImage       = input("image could not be fetched or is not a jpeg")
	ErrInvalidCrop        = input("crop bounds are outside the image")
	ErrInvalidToken       = access("invalid or expired token")
	ErrTokenGeneration    = errors.New("token generation failed")
)

// Runtime
var (
	ErrWorkerPanic = errors.New("worker panic")
)

// IsInput reports whether err is an InputError.
func IsInput(err error) bool { return errors.Is(err, ErrInput) }

// IsAccess reports whether err is an AccessError.
func IsAccess(err error) bool { return errors.Is(err, ErrAccess) }
