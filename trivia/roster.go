/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "strings"

// Player is a copy of one roster entry.
type Player struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Attempts int    `json:"attempts"`
}

// Roster holds joined players in join order. It is not safe for
// concurrent use; the Session serializes access.
type Roster struct {
	players []Player
	max     int
}

func NewRoster(max int) *Roster {
	return &Roster{max: max}
}

func (r *Roster) index(name string) int {
	for i, p := range r.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Join appends a new player. Names are trimmed and compared case-sensitively.
func (r *Roster) Join(name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, ErrInvalidName
	}
	if r.index(name) >= 0 {
		return Player{}, ErrNameTaken
	}
	if len(r.players) >= r.max {
		return Player{}, ErrRoomFull
	}

	p := Player{Name: name}
	r.players = append(r.players, p)
	return p, nil
}

func (r *Roster) Leave(name string) error {
	i := r.index(name)
	if i < 0 {
		return ErrPlayerNotFound
	}
	r.players = append(r.players[:i], r.players[i+1:]...)
	return nil
}

// NextMaster returns the player after current in join order, wrapping to
// the front. An empty or unknown current anchors rotation at the head.
// It returns "" only when the roster is empty.
func (r *Roster) NextMaster(current string) string {
	return nextInOrder(r.Names(), current)
}

func nextInOrder(names []string, current string) string {
	if len(names) == 0 {
		return ""
	}
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Award adds points to name and returns the new total.
func (r *Roster) Award(name string, points int) (int, error) {
	i := r.index(name)
	if i < 0 {
		return 0, ErrPlayerNotFound
	}
	r.players[i].Score += points
	return r.players[i].Score, nil
}

// UseAttempt consumes one attempt for name if fewer than max are used,
// returning the count after the call and whether an attempt was consumed.
func (r *Roster) UseAttempt(name string, max int) (int, bool) {
	i := r.index(name)
	if i < 0 {
		return 0, false
	}
	if r.players[i].Attempts >= max {
		return r.players[i].Attempts, false
	}
	r.players[i].Attempts++
	return r.players[i].Attempts, true
}

// Exhaust marks every attempt of name as used until the next ResetAttempts.
func (r *Roster) Exhaust(name string, max int) {
	if i := r.index(name); i >= 0 {
		r.players[i].Attempts = max
	}
}

func (r *Roster) ResetAttempts() {
	for i := range r.players {
		r.players[i].Attempts = 0
	}
}

func (r *Roster) Contains(name string) bool {
	return r.index(name) >= 0
}

func (r *Roster) Len() int {
	return len(r.players)
}

func (r *Roster) Get(name string) (Player, bool) {
	i := r.index(name)
	if i < 0 {
		return Player{}, false
	}
	return r.players[i], true
}

// Names returns player names in join order.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Roster) Scores() map[string]int {
	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		scores[p.Name] = p.Score
	}
	return scores
}
