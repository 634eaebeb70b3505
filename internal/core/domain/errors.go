package domain

import "github.com/DaniRico987/Sagittarius/pkg/errors"

var (
	// Validation
	ErrEmptyContent        = errors.InvalidArg("message content cannot be empty")
	ErrMissingAddress      = errors.InvalidArg("conversation id or sender/receiver pair is required")
	ErrNoParticipants      = errors.InvalidArg("participants cannot be empty")
	ErrDirectParticipants  = errors.InvalidArg("a direct conversation needs exactly two distinct participants")
	ErrSelfFriendRequest   = errors.InvalidArg("cannot send a friend request to yourself")

	// Authorization
	ErrNotFriends     = errors.Forbidden("cannot send messages to this user because you are not friends")
	ErrNotParticipant = errors.Forbidden("sender is not a participant of this conversation")

	// Not found
	ErrUserNotFound         = errors.NotFound("user not found")
	ErrConversationNotFound = errors.NotFound("conversation not found")
	ErrMessageNotFound      = errors.NotFound("message not found")
	ErrRequestNotFound      = errors.NotFound("friend request not found")

	// Conflicts
	ErrEmailTaken     = errors.AlreadyExists("user already exists")
	ErrAlreadyFriends = errors.AlreadyExists("already friends")
	ErrRequestExists  = errors.AlreadyExists("friend request already sent")

	// Auth boundary
	ErrInvalidCredentials = errors.Unauthorized("invalid credentials")
)

func ErrStorage(cause error) error {
	return errors.Wrap(errors.CodeInternal, "storage operation failed", cause)
}
