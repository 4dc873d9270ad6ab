/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package trivia implements the state machine of a trivia room: who is in
// it, who asks the next question, and how each round starts and resolves.
package trivia

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state of the current round.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

const systemAuthor = "System"

// Settings are the per-room game limits.
type Settings struct {
	MaxPlayers  int
	MinPlayers  int
	MaxAttempts int
	Points      int
	TimeLimit   int // seconds
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:  10,
		MinPlayers:  3,
		MaxAttempts: 3,
		Points:      10,
		TimeLimit:   60,
	}
}

// Verdict describes what SubmitAnswer did with a guess.
type Verdict int

const (
	VerdictIgnored Verdict = iota
	VerdictWrong
	VerdictExhausted
	VerdictCorrect
)

// RoomState is a read-only snapshot of a session.
type RoomState struct {
	Players          []string       `json:"players"`
	Scores           map[string]int `json:"scores"`
	Master           string         `json:"master,omitempty"`
	Round            int            `json:"round"`
	State            Status         `json:"state"`
	SecondsRemaining int            `json:"seconds_remaining,omitempty"`
}

// Session owns one room's roster, question, timer and chat log. Every
// exported method takes the session lock, so client commands and timer
// ticks are applied one at a time.
type Session struct {
	id       string
	settings Settings
	notifier Notifier
	clock    clockwork.Clock

	mu       sync.Mutex
	roster   *Roster
	question Question
	timer    *RoundTimer
	status   Status
	round    int
	master   string
	poser    string // master who posed the active round's question
	chat     []ChatEntry
	started  int // index in chat of the active round's start line, or -1

	// gen counts StartRound calls over the session's lifetime. Unlike
	// round it survives resets, so it identifies a countdown uniquely.
	gen int
}

func NewSession(id string, settings Settings, notifier Notifier, clock clockwork.Clock) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Session{
		id:       id,
		settings: settings,
		notifier: notifier,
		clock:    clock,
		timer:    NewRoundTimer(clock),
	}
	s.resetLocked()

	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Settings() Settings { return s.settings }

// resetLocked returns the session to its initial state: idle, round 1,
// no players, no chat.
func (s *Session) resetLocked() {
	s.timer.Stop()
	s.roster = NewRoster(s.settings.MaxPlayers)
	s.question.Clear()
	s.status = StatusIdle
	s.round = 1
	s.master = ""
	s.poser = ""
	s.chat = nil
	s.started = -1
}

// Join adds name to the roster. The first player becomes game master.
func (s *Session) Join(name string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.roster.Join(name)
	if err != nil {
		return Player{}, err
	}

	if s.master == "" {
		s.master = p.Name
	}

	// Players arriving mid-round sit it out until attempts reset.
	if s.status == StatusActive {
		s.roster.Exhaust(p.Name, s.settings.MaxAttempts)
	}

	log.Info().
		Str("room", s.id).
		Str("player", p.Name).
		Int("players", s.roster.Len()).
		Msg("player joined")

	s.broadcastRoomStateLocked()

	return p, nil
}

// Leave removes name from the roster. A departing master hands the role
// to the next player immediately; an emptied roster resets the session.
func (s *Session) Leave(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.roster.Contains(name) {
		return ErrPlayerNotFound
	}

	next := s.master
	if name == s.master {
		next = s.roster.NextMaster(name)
	}

	if err := s.roster.Leave(name); err != nil {
		return err
	}

	log.Info().
		Str("room", s.id).
		Str("player", name).
		Int("players", s.roster.Len()).
		Msg("player left")

	if s.roster.Len() == 0 {
		s.resetLocked()
		log.Info().Str("room", s.id).Msg("room empty, session reset")
		s.broadcastRoomStateLocked()
		return nil
	}

	s.master = next

	s.broadcastRoomStateLocked()

	return nil
}

// StartRound poses a question. Only the game master may do so, only while
// no round is active, and only with a quorum of players.
func (s *Session) StartRound(player, prompt, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusIdle {
		return ErrRoundActive
	}
	if s.roster.Len() < s.settings.MinPlayers {
		return ErrInsufficientPlayers
	}
	if player == "" || player != s.master {
		return ErrNotGameMaster
	}
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(answer) == "" {
		return ErrInvalidQuestion
	}

	s.timer.Stop()

	round := s.round
	s.gen++
	if err := s.timer.Start(s.settings.TimeLimit, s.tickHandler(s.gen)); err != nil {
		return fmt.Errorf("starting round %d: %w", round, err)
	}

	s.question.Set(prompt, answer)
	s.roster.ResetAttempts()
	s.status = StatusActive
	s.poser = s.master

	log.Info().
		Str("room", s.id).
		Str("master", s.master).
		Int("round", round).
		Msg("round started")

	s.started = len(s.chat)
	s.appendChatLocked(systemAuthor, fmt.Sprintf("Round %d started! Question: %s", round, prompt))

	s.notifier.Broadcast(RoundStartedMessage{
		Type:             TypeRoundStarted,
		Prompt:           prompt,
		SecondsRemaining: s.settings.TimeLimit,
		Round:            round,
		Master:           s.master,
	})

	return nil
}

// SubmitAnswer applies one guess from player. Guesses outside an active
// round, from unknown players, or past the attempt limit are ignored.
func (s *Session) SubmitAnswer(player, guess string) Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return VerdictIgnored
	}

	used, ok := s.roster.UseAttempt(player, s.settings.MaxAttempts)
	if !ok {
		return VerdictIgnored
	}

	if s.question.Check(guess) {
		s.resolveLocked(player)
		return VerdictCorrect
	}

	left := s.settings.MaxAttempts - used
	s.notifier.Notify(player, WrongGuessMessage{
		Type:              TypeWrongGuess,
		AttemptsRemaining: left,
		Message:           fmt.Sprintf("Incorrect! %d attempts left.", left),
	})

	if left > 0 {
		return VerdictWrong
	}

	s.notifier.Notify(player, AttemptsExhaustedMessage{
		Type:    TypeAttemptsExhausted,
		Message: "No more attempts left!",
	})

	return VerdictExhausted
}

// SendChat appends a chat line from a current player and broadcasts it.
func (s *Session) SendChat(player, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.roster.Contains(player) {
		return ErrPlayerNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.appendChatLocked(player, text)

	return nil
}

// tickHandler binds timer ticks to the countdown they were started for, so
// a late tick from an earlier countdown cannot touch a later round, even
// one that reuses its round number after a reset.
func (s *Session) tickHandler(gen int) func(int) {
	return func(remaining int) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.status != StatusActive || s.gen != gen {
			return
		}

		s.notifier.Broadcast(TickMessage{
			Type:             TypeTick,
			SecondsRemaining: remaining,
		})

		if remaining <= 0 {
			s.resolveLocked("")
		}
	}
}

// resolveLocked ends the active round with winner, or with no winner on
// timeout. Resolving a round that is not active is a no-op.
func (s *Session) resolveLocked(winner string) {
	if s.status != StatusActive {
		return
	}

	s.timer.Stop()
	s.status = StatusResolved
	s.started = -1

	round := s.round
	answer := s.question.Answer()
	selfGuess := winner != "" && winner == s.poser

	if winner != "" && !selfGuess {
		if _, err := s.roster.Award(winner, s.settings.Points); err != nil {
			log.Warn().Err(err).Str("room", s.id).Str("player", winner).Msg("award failed")
		}
	}

	s.master = s.roster.NextMaster(s.master)

	var text string
	switch {
	case selfGuess:
		text = fmt.Sprintf("Game master %s guessed correctly! The answer was: %s", winner, answer)
	case winner != "":
		text = fmt.Sprintf("%s won round %d! The answer was: %s", winner, round, answer)
	default:
		text = fmt.Sprintf("Time's up for round %d! The answer was: %s", round, answer)
	}
	s.appendChatLocked(systemAuthor, text)

	s.notifier.Broadcast(RoundEndedMessage{
		Type:            TypeRoundEnded,
		Winner:          winner,
		Answer:          answer,
		Scores:          s.roster.Scores(),
		NewMaster:       s.master,
		Round:           round,
		WasMasterWinner: selfGuess,
		TimeExpired:     winner == "",
	})

	log.Info().
		Str("room", s.id).
		Str("winner", winner).
		Str("master", s.master).
		Int("round", round).
		Msg("round resolved")

	s.question.Clear()
	s.roster.ResetAttempts()
	s.poser = ""
	s.round++
	s.status = StatusIdle

	s.broadcastRoomStateLocked()
}

func (s *Session) appendChatLocked(author, text string) {
	entry := ChatEntry{
		Author:    author,
		Text:      text,
		Timestamp: s.clock.Now(),
	}
	s.chat = append(s.chat, entry)

	s.notifier.Broadcast(ChatMessage{Type: TypeChatMessage, ChatEntry: entry})
}

func (s *Session) snapshotLocked() RoomState {
	st := RoomState{
		Players: s.roster.Names(),
		Scores:  s.roster.Scores(),
		Master:  s.master,
		Round:   s.round,
		State:   s.status,
	}
	if s.status == StatusActive {
		st.SecondsRemaining = s.timer.Remaining()
	}
	return st
}

func (s *Session) broadcastRoomStateLocked() {
	st := s.snapshotLocked()
	s.notifier.Broadcast(RoomStateMessage{
		Type:             TypeRoomState,
		Players:          st.Players,
		Scores:           st.Scores,
		Master:           st.Master,
		Round:            st.Round,
		State:            st.State,
		SecondsRemaining: st.SecondsRemaining,
	})
}

// Snapshot returns a copy of the current room state.
func (s *Session) Snapshot() RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// History returns a copy of the chat log. While a round is active its start
// line is left out, so a replay never reveals the live prompt.
func (s *Session) History() []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ChatEntry, 0, len(s.chat))
	for i, e := range s.chat {
		if s.status == StatusActive && i == s.started {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Player returns a copy of one roster entry.
func (s *Session) Player(name string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.roster.Get(name)
}

// Close stops the round timer. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer.Stop()
}
