/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Seednode/triviabox/trivia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRoomReusesRooms(t *testing.T) {
	rm := newRoomManager(context.Background(), trivia.DefaultSettings(), 0)
	t.Cleanup(rm.closeAll)

	a := rm.getRoom("a")
	assert.Same(t, a, rm.getRoom("a"))
	assert.NotSame(t, a, rm.getRoom("b"))

	_, ok := rm.lookup("c")
	assert.False(t, ok)
}

func TestNewRoomIDs(t *testing.T) {
	rm := newRoomManager(context.Background(), trivia.DefaultSettings(), 0)

	seen := make(map[string]bool)
	for range 100 {
		id := rm.newRoomID()
		require.Len(t, id, 8)
		assert.Regexp(t, `^[A-Z2-7]{8}$`, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestReapClosesIdleRooms(t *testing.T) {
	rm := newRoomManager(context.Background(), trivia.DefaultSettings(), 0)
	t.Cleanup(rm.closeAll)

	stale := rm.getRoom("stale")
	fresh := rm.getRoom("fresh")

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	rm.reap(time.Now().Add(-time.Hour))

	_, ok := rm.lookup("stale")
	assert.False(t, ok)

	_, ok = rm.lookup("fresh")
	assert.True(t, ok)

	require.Eventually(t, func() bool {
		select {
		case <-stale.done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	select {
	case <-fresh.done:
		t.Fatal("fresh room was closed")
	default:
	}
}

func TestReaperClosesRoomsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rm := newRoomManager(ctx, trivia.DefaultSettings(), time.Hour)

	room := rm.getRoom("lobby")
	cancel()

	require.Eventually(t, func() bool {
		_, ok := rm.lookup("lobby")
		return !ok
	}, time.Second, 10*time.Millisecond)

	<-room.done

	assert.Nil(t, rm.getRoom("lobby"))
}

func TestReleaseKeepsOccupiedRooms(t *testing.T) {
	rm := newRoomManager(context.Background(), trivia.DefaultSettings(), 0)
	t.Cleanup(rm.closeAll)

	room := rm.getRoom("lobby")

	room.mu.Lock()
	room.clients[&Client{id: "c1", send: make(chan trivia.Message, 1)}] = true
	room.mu.Unlock()

	assert.False(t, rm.release(room))
	_, ok := rm.lookup("lobby")
	assert.True(t, ok)

	room.mu.Lock()
	clear(room.clients)
	room.mu.Unlock()

	assert.True(t, rm.release(room))
	_, ok = rm.lookup("lobby")
	assert.False(t, ok)

	assert.False(t, rm.release(room), "a room is released once")
}

func TestRoomURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://quiz.example/games/trivia/AB12CD34/qr", nil)
	assert.Equal(t, "http://quiz.example/games/trivia/AB12CD34", roomURL(r, "/games/trivia", "AB12CD34"))

	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Host", "trivia.example.org")
	assert.Equal(t, "https://trivia.example.org/games/trivia/AB12CD34", roomURL(r, "/games/trivia", "AB12CD34"))
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same host", nil, "http://example.com", true},
		{"cross origin denied by default", nil, "https://evil.example", false},
		{"cross origin allowed", []string{"https://friend.example"}, "https://friend.example", true},
		{"cross origin not listed", []string{"https://friend.example"}, "https://evil.example", false},
		{"wildcard", []string{"*"}, "https://anyone.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := checkOrigin(newCORS(&Config{origins: tt.origins}))

			r := httptest.NewRequest(http.MethodGet, "http://example.com/trivia/lobby/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.want, allowed(r))
		})
	}
}

func TestCORSHeaders(t *testing.T) {
	handler := newCORS(&Config{origins: []string{"https://friend.example"}}).
		Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	r := httptest.NewRequest(http.MethodGet, "/trivia/lobby", nil)
	r.Header.Set("Origin", "https://friend.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "https://friend.example", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/trivia/lobby", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
