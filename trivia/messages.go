/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "time"

const (
	TypeSessionInfo       = "session_info"
	TypeRoomState         = "room_state"
	TypeRoundStarted      = "round_started"
	TypeTick              = "tick"
	TypeWrongGuess        = "wrong_guess"
	TypeAttemptsExhausted = "attempts_exhausted"
	TypeRoundEnded        = "round_ended"
	TypeChatMessage       = "chat_message"
	TypeChatHistory       = "chat_history"
	TypeActionRejected    = "action_rejected"
)

// Message is the closed set of notifications sent to clients.
type Message interface{ isMessage() }

// Notifier fans session notifications out to connected clients. It is
// called with the session lock held, so it must not block or call back
// into the Session.
type Notifier interface {
	Broadcast(msg Message)
	Notify(player string, msg Message)
}

// SessionInfoMessage is sent on connect, before the client has joined.
type SessionInfoMessage struct {
	Type        string `json:"type"` // "session_info"
	Room        string `json:"room"`
	MaxPlayers  int    `json:"max_players"`
	MinPlayers  int    `json:"min_players"`
	MaxAttempts int    `json:"max_attempts"`
	TimeLimit   int    `json:"time_limit"`
}

// RoomStateMessage is broadcast on join, leave and round resolution.
type RoomStateMessage struct {
	Type             string         `json:"type"` // "room_state"
	Players          []string       `json:"players"`
	Scores           map[string]int `json:"scores"`
	Master           string         `json:"master,omitempty"`
	Round            int            `json:"round"`
	State            Status         `json:"state"`
	SecondsRemaining int            `json:"seconds_remaining,omitempty"`
}

type RoundStartedMessage struct {
	Type             string `json:"type"` // "round_started"
	Prompt           string `json:"prompt"`
	SecondsRemaining int    `json:"seconds_remaining"`
	Round            int    `json:"round"`
	Master           string `json:"master"`
}

type TickMessage struct {
	Type             string `json:"type"` // "tick"
	SecondsRemaining int    `json:"seconds_remaining"`
}

// WrongGuessMessage goes only to the player who guessed.
type WrongGuessMessage struct {
	Type              string `json:"type"` // "wrong_guess"
	AttemptsRemaining int    `json:"attempts_remaining"`
	Message           string `json:"message"`
}

type AttemptsExhaustedMessage struct {
	Type    string `json:"type"` // "attempts_exhausted"
	Message string `json:"message"`
}

type RoundEndedMessage struct {
	Type            string         `json:"type"` // "round_ended"
	Winner          string         `json:"winner,omitempty"`
	Answer          string         `json:"answer"`
	Scores          map[string]int `json:"scores"`
	NewMaster       string         `json:"new_master,omitempty"`
	Round           int            `json:"round"`
	WasMasterWinner bool           `json:"was_master_winner"`
	TimeExpired     bool           `json:"time_expired"`
}

// ChatEntry is one line of the room's chat log.
type ChatEntry struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatMessage struct {
	Type string `json:"type"` // "chat_message"
	ChatEntry
}

type ChatHistoryMessage struct {
	Type     string      `json:"type"` // "chat_history"
	Messages []ChatEntry `json:"messages"`
}

type ActionRejectedMessage struct {
	Type    string `json:"type"` // "action_rejected"
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (SessionInfoMessage) isMessage()       {}
func (RoomStateMessage) isMessage()         {}
func (RoundStartedMessage) isMessage()      {}
func (TickMessage) isMessage()              {}
func (WrongGuessMessage) isMessage()        {}
func (AttemptsExhaustedMessage) isMessage() {}
func (RoundEndedMessage) isMessage()        {}
func (ChatMessage) isMessage()              {}
func (ChatHistoryMessage) isMessage()       {}
func (ActionRejectedMessage) isMessage()    {}
