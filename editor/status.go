package editor

import "time"

const (
	// SavedMessage is shown after a successful save.
	SavedMessage = "Content saved successfully!"
	// DefaultStatusTimeout is how long a status message stays up.
	DefaultStatusTimeout = 3 * time.Second
)

// Status is a transient message. Each Set returns a token; Clear only
// removes the message if no newer one replaced it.
type Status struct {
	text string
	seq  uint64
}

// Set shows text and returns the token that clears it.
func (s *Status) Set(text string) uint64 {
	s.seq++
	s.text = text
	return s.seq
}

// Clear removes the message set with token. It reports whether anything
// changed.
func (s *Status) Clear(token uint64) bool {
	if token != s.seq || s.text == "" {
		return false
	}
	s.text = ""
	return true
}

// Text returns the current message.
func (s *Status) Text() string { return s.text }
