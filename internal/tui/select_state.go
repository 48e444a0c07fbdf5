package tui

import (
	"sync"

	"github.com/sahilm/fuzzy"
)

// SelectState is a single-choice field over a fixed option list. Index -1
// is the empty placeholder. Typed text is fuzzy-matched against the options.
type SelectState struct {
	mu sync.RWMutex

	placeholder string
	options     []string
	index       int
	query       string
}

// NewSelectState creates a select with nothing chosen
func NewSelectState(placeholder string, options []string) *SelectState {
	return &SelectState{
		placeholder: placeholder,
		options:     append([]string(nil), options...),
		index:       -1,
	}
}

// Value returns the chosen option or "" for the placeholder
func (s *SelectState) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 {
		return ""
	}
	return s.options[s.index]
}

// Label returns the text shown for the current choice
func (s *SelectState) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 {
		return s.placeholder
	}
	return s.options[s.index]
}

// SetValue selects value. A value outside the option list selects the placeholder.
func (s *SelectState) SetValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = -1
	for i, o := range s.options {
		if o == value {
			s.index = i
			return
		}
	}
}

// Next moves to the following option, wrapping through the placeholder
func (s *SelectState) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.index++
	if s.index >= len(s.options) {
		s.index = -1
	}
}

// Prev moves to the preceding option, wrapping through the placeholder
func (s *SelectState) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.index--
	if s.index < -1 {
		s.index = len(s.options) - 1
	}
}

// Type appends text to the search query and selects the best match.
// It reports whether any option matched.
func (s *SelectState) Type(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query += text
	return s.match()
}

// Backspace removes the last query character and re-matches
func (s *SelectState) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == "" {
		return
	}
	runes := []rune(s.query)
	s.query = string(runes[:len(runes)-1])
	if s.query != "" {
		s.match()
	}
}

// Query returns the pending type-ahead text
func (s *SelectState) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// ResetQuery clears the type-ahead text
func (s *SelectState) ResetQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
}

func (s *SelectState) match() bool {
	matches := fuzzy.Find(s.query, s.options)
	if len(matches) == 0 {
		return false
	}
	s.index = matches[0].Index
	return true
}
