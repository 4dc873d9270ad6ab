/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "errors"

// Kind groups errors by how the gateway should surface them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
)

var (
	ErrInvalidName         = errors.New("invalid player name")
	ErrNameTaken           = errors.New("player name already taken")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidQuestion     = errors.New("question and answer must not be empty")
	ErrEmptyMessage        = errors.New("message must not be empty")
	ErrMalformed           = errors.New("malformed message")
	ErrNotGameMaster       = errors.New("only the game master can start a round")
	ErrInsufficientPlayers = errors.New("not enough players to start a round")
	ErrRoundActive         = errors.New("a round is already in progress")
	ErrAlreadyJoined       = errors.New("connection has already joined")
	ErrAlreadyRunning      = errors.New("timer already running")
	ErrInvalidLimit        = errors.New("timer limit must be positive")
	ErrPlayerNotFound      = errors.New("player not found")
)

var reasons = []struct {
	err    error
	kind   Kind
	reason string
}{
	{ErrInvalidName, KindValidation, "invalid_name"},
	{ErrNameTaken, KindValidation, "name_taken"},
	{ErrRoomFull, KindValidation, "room_full"},
	{ErrInvalidQuestion, KindValidation, "invalid_question"},
	{ErrEmptyMessage, KindValidation, "empty_message"},
	{ErrMalformed, KindValidation, "malformed"},
	{ErrNotGameMaster, KindPrecondition, "not_game_master"},
	{ErrInsufficientPlayers, KindPrecondition, "insufficient_players"},
	{ErrRoundActive, KindPrecondition, "round_active"},
	{ErrAlreadyJoined, KindPrecondition, "already_joined"},
	{ErrPlayerNotFound, KindNotFound, "player_not_found"},
}

// KindOf classifies err. Anything not produced by this package is internal.
func KindOf(err error) Kind {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.kind
		}
	}
	return KindInternal
}

// Reason returns the stable reason code sent to clients in action_rejected.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal_error"
}

// Rejection builds the requester-only notification for a failed operation.
func Rejection(err error) ActionRejectedMessage {
	msg := err.Error()
	if KindOf(err) == KindInternal {
		msg = "An unexpected error occurred. Please try again."
	}
	return ActionRejectedMessage{
		Type:    TypeActionRejected,
		Reason:  Reason(err),
		Message: msg,
	}
}
