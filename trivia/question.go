/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "strings"

// Question holds the prompt and secret answer of the current round.
type Question struct {
	prompt  string
	display string
	answer  string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Set stores prompt verbatim. The answer is kept trimmed for display and
// normalized for matching.
func (q *Question) Set(prompt, answer string) {
	q.prompt = prompt
	q.display = strings.TrimSpace(answer)
	q.answer = normalize(answer)
}

// Check reports whether guess matches the answer, ignoring case and
// surrounding whitespace. Nothing matches an unset question.
func (q *Question) Check(guess string) bool {
	if q.answer == "" {
		return false
	}
	return normalize(guess) == q.answer
}

func (q *Question) Clear() {
	*q = Question{}
}

func (q *Question) Prompt() string { return q.prompt }

// Answer returns the trimmed answer as the game master typed it.
func (q *Question) Answer() string { return q.display }
