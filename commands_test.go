/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/Seednode/triviabox/trivia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    command
		wantErr bool
	}{
		{"join", `{"type":"join","name":"alice"}`, joinCommand{name: "alice"}, false},
		{"join empty name passes through", `{"type":"join","name":""}`, joinCommand{name: ""}, false},
		{"start round", `{"type":"start_round","prompt":"2+2?","answer":"4"}`, startRoundCommand{prompt: "2+2?", answer: "4"}, false},
		{"submit answer", `{"type":"submit_answer","guess":"4"}`, submitAnswerCommand{guess: "4"}, false},
		{"send chat", `{"type":"send_chat","text":"hi"}`, sendChatCommand{text: "hi"}, false},
		{"extra fields ignored", `{"type":"send_chat","text":"hi","name":"mallory"}`, sendChatCommand{text: "hi"}, false},
		{"not json", `hello`, nil, true},
		{"unknown type", `{"type":"kick","name":"bob"}`, nil, true},
		{"missing type", `{"name":"bob"}`, nil, true},
		{"join without name", `{"type":"join"}`, nil, true},
		{"start round without answer", `{"type":"start_round","prompt":"2+2?"}`, nil, true},
		{"start round without prompt", `{"type":"start_round","answer":"4"}`, nil, true},
		{"submit without guess", `{"type":"submit_answer"}`, nil, true},
		{"chat without text", `{"type":"send_chat"}`, nil, true},
		{"wrong field type", `{"type":"send_chat","text":5}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand([]byte(tt.in))
			if tt.wantErr {
				require.ErrorIs(t, err, trivia.ErrMalformed)
				assert.Equal(t, "malformed", trivia.Reason(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
