/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"

	"github.com/Seednode/triviabox/trivia"
)

// ClientMessage is the wire shape of everything clients send. Required
// fields are pointers so a missing field can be told apart from an empty one.
type ClientMessage struct {
	Type   string  `json:"type"`             // "join", "start_round", "submit_answer", "send_chat"
	Name   *string `json:"name,omitempty"`   // join
	Prompt *string `json:"prompt,omitempty"` // start_round
	Answer *string `json:"answer,omitempty"` // start_round
	Guess  *string `json:"guess,omitempty"`  // submit_answer
	Text   *string `json:"text,omitempty"`   // send_chat
}

type command interface{ isCommand() }

type joinCommand struct{ name string }

type startRoundCommand struct{ prompt, answer string }

type submitAnswerCommand struct{ guess string }

type sendChatCommand struct{ text string }

func (joinCommand) isCommand()         {}
func (startRoundCommand) isCommand()   {}
func (submitAnswerCommand) isCommand() {}
func (sendChatCommand) isCommand()     {}

// parseCommand decodes one client frame into a command, rejecting bad
// JSON, unknown types and missing fields.
func parseCommand(data []byte) (command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", trivia.ErrMalformed, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %q", trivia.ErrMalformed, msg.Type, field)
	}

	switch msg.Type {
	case "join":
		if msg.Name == nil {
			return nil, missing("name")
		}
		return joinCommand{name: *msg.Name}, nil
	case "start_round":
		if msg.Prompt == nil {
			return nil, missing("prompt")
		}
		if msg.Answer == nil {
			return nil, missing("answer")
		}
		return startRoundCommand{prompt: *msg.Prompt, answer: *msg.Answer}, nil
	case "submit_answer":
		if msg.Guess == nil {
			return nil, missing("guess")
		}
		return submitAnswerCommand{guess: *msg.Guess}, nil
	case "send_chat":
		if msg.Text == nil {
			return nil, missing("text")
		}
		return sendChatCommand{text: *msg.Text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", trivia.ErrMalformed, msg.Type)
	}
}
