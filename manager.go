/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Seednode/triviabox/trivia"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// RoomManager holds a set of rooms keyed by room ID, so each $path/$roomid
// is its own isolated session.
type RoomManager struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	settings    trivia.Settings
	idleTimeout time.Duration
	closed      bool
}

func newRoomManager(ctx context.Context, settings trivia.Settings, idleTimeout time.Duration) *RoomManager {
	rm := &RoomManager{
		rooms:       make(map[string]*Room),
		settings:    settings,
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go rm.reaperLoop(ctx)
	}
	return rm
}

// getRoom returns the room for roomID, creating it on first use. It returns
// nil once the manager has shut down.
func (rm *RoomManager) getRoom(roomID string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return nil
	}

	if room, ok := rm.rooms[roomID]; ok {
		return room
	}

	room := newRoom(roomID, rm.settings)
	room.release = rm.release
	rm.rooms[roomID] = room
	go room.run()

	log.Info().Str("room", roomID).Msg("room created")

	return room
}

func (rm *RoomManager) lookup(roomID string) (*Room, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[roomID]
	return room, ok
}

// release drops room once its last connection is gone. It reports whether
// the room was closed; a room that regained a client is kept.
func (rm *RoomManager) release(room *Room) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.rooms[room.id] != room || room.clientCount() > 0 {
		return false
	}

	delete(rm.rooms, room.id)
	room.closeAll()

	log.Info().Str("room", room.id).Msg("room released")

	return true
}

// newRoomID returns an unused 8-character room ID drawn from crypto/rand's
// base32 text.
func (rm *RoomManager) newRoomID() string {
	for {
		id := rand.Text()[:8]
		if _, taken := rm.lookup(id); !taken {
			return id
		}
	}
}
// reaperLoop periodically removes rooms that have been idle longer than idleTimeout.
func (rm *RoomManager) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(rm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rm.closeAll()
			return
		case <-ticker.C:
			rm.reap(time.Now().Add(-rm.idleTimeout))
		}
	}
}

func (rm *RoomManager) reap(cutoff time.Time) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for id, room := range rm.rooms {
		if room.idleSince().Before(cutoff) {
			delete(rm.rooms, id)
			go room.closeAll()
			log.Info().Str("room", id).Msg("room reaped")
		}
	}
}

func (rm *RoomManager) closeAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.closed = true

	for id, room := range rm.rooms {
		delete(rm.rooms, id)
		room.closeAll()
	}
}

func newUpgrader(allowed func(r *http.Request) bool) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     allowed,
	}
}

// WebSocket handler that picks the room based on :roomid
func serveWS(rm *RoomManager, upgrader websocket.Upgrader) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")
		if roomID == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan trivia.Message, sendBuffer),
		}

		log.Debug().
			Str("room", roomID).
			Str("client", client.id).
			Str("remote", realIP(r)).
			Msg("websocket connected")

		// A room released between lookup and register is replaced by a
		// fresh one on the next pass.
		var room *Room
		for {
			room = rm.getRoom(roomID)
			if room == nil {
				_ = conn.Close()
				return
			}
			if enqueue(room, room.register, client) {
				break
			}
		}

		go client.writePump()
		client.readPump(room)
	}
}

func (c *Client) readPump(room *Room) {
	defer func() {
		enqueue(room, room.unreg, c)
		_ = c.conn.Close()
		log.Debug().Str("room", room.id).Str("client", c.id).Msg("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client", c.id).Msg("unexpected websocket close")
			}
			return
		}

		cmd, err := parseCommand(data)
		if !enqueue(room, room.commands, commandRequest{client: c, cmd: cmd, err: err}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveRoomState returns the room snapshot as JSON.
func serveRoomState(rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := rm.lookup(ps.ByName("roomid"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(struct {
			Room    string `json:"room"`
			Clients int    `json:"clients"`
			trivia.RoomState
		}{
			Room:      room.id,
			Clients:   room.clientCount(),
			RoomState: room.session.Snapshot(),
		})
	}
}

// roomURL is the public address of a room as seen by the requesting client,
// honoring a TLS-terminating proxy in front of the server.
func roomURL(r *http.Request, base, roomID string) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   base + "/" + roomID,
	}

	switch {
	case r.Header.Get("X-Forwarded-Proto") != "":
		u.Scheme = r.Header.Get("X-Forwarded-Proto")
	case r.TLS != nil:
		u.Scheme = "https"
	}

	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		u.Host = host
	}

	return u.String()
}

// serveQR renders the share link of a room as a PNG.
func serveQR(base string, errs chan<- error) httprouter.Handle {
	const qrSize = 320

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code, err := qrcode.New(roomURL(r, base, ps.ByName("roomid")), qrcode.Medium)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		png, err := code.PNG(qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))

		if _, err := w.Write(png); err != nil {
			reportError(errs, err)
		}
	}
}
// redirectNewRoom sends GET $path to a fresh room ID. The room itself is
// created by the first websocket connection.
func redirectNewRoom(path string, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := rm.newRoomID()
		http.Redirect(w, r, path+"/"+roomID, http.StatusTemporaryRedirect)
	}
}

// registerTrivia sets up routes so that:
//   - $path                  → redirects to new random room (8-char ID)
//   - $path/:roomid          → JSON room state
//   - $path/:roomid/ws       → WebSocket for that room
//   - $path/:roomid/qr       → PNG QR code for that room URL
func registerTrivia(cfg *Config, path string, mux *httprouter.Router, rm *RoomManager, upgrader websocket.Upgrader, errs chan<- error) {
	base := cfg.prefix + path

	mux.GET(base, redirectNewRoom(base, rm))
	mux.GET(base+"/:roomid", serveRoomState(rm))
	mux.GET(base+"/:roomid/ws", serveWS(rm, upgrader))
	mux.GET(base+"/:roomid/qr", serveQR(base, errs))
}
