/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"sync"
	"time"

	"github.com/Seednode/triviabox/trivia"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Client struct {
	id   string
	conn *websocket.Conn
	send chan trivia.Message

	// player is the name bound by a successful join. Written by the room's
	// run loop with r.mu held.
	player string
}

type commandRequest struct {
	client *Client
	cmd    command
	err    error
}

// Room connects websocket clients to one trivia session. Client commands
// are applied in order by run; the session pushes notifications back
// through Broadcast and Notify.
type Room struct {
	id      string
	session *trivia.Session

	register chan *Client
	unreg    chan *Client
	commands chan commandRequest
	done     chan struct{}
	once     sync.Once

	// release is offered the room whenever its last client leaves and
	// reports whether the room was closed.
	release func(*Room) bool

	mu         sync.RWMutex
	clients    map[*Client]bool
	createdAt  time.Time
	lastActive time.Time
}

func newRoom(roomID string, settings trivia.Settings) *Room {
	now := time.Now()
	r := &Room{
		id:         roomID,
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan commandRequest),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		createdAt:  now,
		lastActive: now,
	}
	r.session = trivia.NewSession(roomID, settings, r, nil)
	return r
}

func (r *Room) run() {
	for {
		select {
		case <-r.done:
			return

		case c := <-r.register:
			r.touch()

			r.mu.Lock()
			r.clients[c] = true
			r.mu.Unlock()

			settings := r.session.Settings()
			r.deliver(c, trivia.SessionInfoMessage{
				Type:        trivia.TypeSessionInfo,
				Room:        r.id,
				MaxPlayers:  settings.MaxPlayers,
				MinPlayers:  settings.MinPlayers,
				MaxAttempts: settings.MaxAttempts,
				TimeLimit:   settings.TimeLimit,
			})

			st := r.session.Snapshot()
			r.deliver(c, trivia.RoomStateMessage{
				Type:             trivia.TypeRoomState,
				Players:          st.Players,
				Scores:           st.Scores,
				Master:           st.Master,
				Round:            st.Round,
				State:            st.State,
				SecondsRemaining: st.SecondsRemaining,
			})

		case c := <-r.unreg:
			r.touch()

			r.mu.Lock()
			if _, ok := r.clients[c]; ok {
				delete(r.clients, c)
				close(c.send)
			}
			r.mu.Unlock()

			if c.player != "" {
				err := r.session.Leave(c.player)
				if err != nil && !errors.Is(err, trivia.ErrPlayerNotFound) {
					log.Error().Err(err).Str("room", r.id).Str("player", c.player).Msg("leave failed")
				}
			}

			if r.release != nil && r.clientCount() == 0 && r.release(r) {
				return
			}

		case req := <-r.commands:
			r.touch()
			r.handle(req)
		}
	}
}

func (r *Room) handle(req commandRequest) {
	c := req.client

	if req.err != nil {
		r.reject(c, req.err)
		return
	}

	if _, ok := req.cmd.(joinCommand); !ok && c.player == "" {
		r.reject(c, trivia.ErrPlayerNotFound)
		return
	}

	switch cmd := req.cmd.(type) {
	case joinCommand:
		if c.player != "" {
			r.reject(c, trivia.ErrAlreadyJoined)
			return
		}

		p, err := r.session.Join(cmd.name)
		if err != nil {
			r.reject(c, err)
			return
		}

		r.mu.Lock()
		c.player = p.Name
		r.mu.Unlock()

		r.deliver(c, trivia.ChatHistoryMessage{
			Type:     trivia.TypeChatHistory,
			Messages: r.session.History(),
		})

	case startRoundCommand:
		if err := r.session.StartRound(c.player, cmd.prompt, cmd.answer); err != nil {
			r.reject(c, err)
		}

	case submitAnswerCommand:
		verdict := r.session.SubmitAnswer(c.player, cmd.guess)
		log.Debug().
			Str("room", r.id).
			Str("player", c.player).
			Int("verdict", int(verdict)).
			Msg("answer submitted")

	case sendChatCommand:
		if err := r.session.SendChat(c.player, cmd.text); err != nil {
			r.reject(c, err)
		}
	}
}

func (r *Room) reject(c *Client, err error) {
	if trivia.KindOf(err) == trivia.KindInternal {
		log.Error().Err(err).Str("room", r.id).Str("client", c.id).Msg("command failed")
	} else {
		log.Debug().Err(err).Str("room", r.id).Str("client", c.id).Msg("command rejected")
	}

	r.deliver(c, trivia.Rejection(err))
}

// Broadcast implements trivia.Notifier.
func (r *Room) Broadcast(msg trivia.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.clients {
		r.sendLocked(c, msg)
	}
}

// Notify implements trivia.Notifier.
func (r *Room) Notify(player string, msg trivia.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.clients {
		if c.player == player {
			r.sendLocked(c, msg)
		}
	}
}

// deliver sends msg to a single client if it is still connected.
func (r *Room) deliver(c *Client, msg trivia.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[c] {
		r.sendLocked(c, msg)
	}
}

// sendLocked drops clients whose buffer is full. Assumes r.mu is held.
func (r *Room) sendLocked(c *Client, msg trivia.Message) {
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("room", r.id).Str("client", c.id).Msg("client send buffer full, dropping")
		delete(r.clients, c)
		close(c.send)
	}
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

func (r *Room) idleSince() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastActive
}

func (r *Room) clientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}

// enqueue hands v to ch unless the room has been closed.
func enqueue[T any](r *Room, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-r.done:
		return false
	}
}

// closeAll disconnects every client and stops the session (used by reaper).
func (r *Room) closeAll() {
	r.once.Do(func() {
		close(r.done)
		r.session.Close()

		r.mu.Lock()
		defer r.mu.Unlock()

		for c := range r.clients {
			close(c.send)
			_ = c.conn.Close()
			delete(r.clients, c)
		}
	})
}
