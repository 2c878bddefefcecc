// Package session holds the state of one problem-capture run: how many
// screenshots have been sent to the model and the latest merged extraction.
package session

import "errors"

// ErrNoExtraction is returned when finalize runs against an empty session.
var ErrNoExtraction = errors.New("no extraction to submit: capture a screenshot first")

// Session is NOT goroutine-safe. It is owned by the event loop goroutine,
// which is its single writer and reader; the busy guard keeps background
// work from ever touching it directly.
type Session struct {
	capturedCount int
	accumulated   string
}

func New() *Session {
	return &Session{}
}

// CapturedCount reports how many screenshots were captured this session,
// including captures whose inference later failed.
func (s *Session) CapturedCount() int { return s.capturedCount }

// Accumulated returns the latest merged extraction, or "" before the first
// successful inference. The text is opaque; nothing here validates JSON.
func (s *Session) Accumulated() string { return s.accumulated }

// Empty reports whether there is anything to submit.
func (s *Session) Empty() bool { return s.accumulated == "" }

// NoteCapture records a successful screenshot capture and returns the new
// ordinal. Called before the remote call, so the count survives inference
// failures.
func (s *Session) NoteCapture() int {
	s.capturedCount++
	return s.capturedCount
}

// ApplyExtraction replaces the accumulated result wholesale. An empty
// response is a no-op that keeps the previous result; it reports whether the
// replacement happened.
func (s *Session) ApplyExtraction(text string) bool {
	if text == "" {
		return false
	}
	s.accumulated = text
	return true
}

// Reset returns the session to its initial state. Count and result clear
// together; a finalize observer never sees one without the other.
func (s *Session) Reset() {
	s.capturedCount = 0
	s.accumulated = ""
}
