/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonAndKind(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		reason string
	}{
		{ErrInvalidName, KindValidation, "invalid_name"},
		{ErrNameTaken, KindValidation, "name_taken"},
		{ErrRoomFull, KindValidation, "room_full"},
		{fmt.Errorf("%w: bad json", ErrMalformed), KindValidation, "malformed"},
		{ErrNotGameMaster, KindPrecondition, "not_game_master"},
		{ErrInsufficientPlayers, KindPrecondition, "insufficient_players"},
		{ErrRoundActive, KindPrecondition, "round_active"},
		{ErrPlayerNotFound, KindNotFound, "player_not_found"},
		{ErrAlreadyRunning, KindInternal, "internal_error"},
		{errors.New("boom"), KindInternal, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.reason, Reason(tt.err))
		})
	}
}

func TestRejection(t *testing.T) {
	r := Rejection(ErrNameTaken)
	assert.Equal(t, TypeActionRejected, r.Type)
	assert.Equal(t, "name_taken", r.Reason)
	assert.Equal(t, ErrNameTaken.Error(), r.Message)

	r = Rejection(errors.New("database exploded"))
	assert.Equal(t, "internal_error", r.Reason)
	assert.NotContains(t, r.Message, "database")
}
