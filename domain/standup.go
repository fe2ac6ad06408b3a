package domain

import (
	"chat-core/errors"
	"strings"
	"unicode/utf8"
)

// Standup buffers lines sent to a channel for a fixed window. When the window
// closes the buffer is posted as one message by the user who started it.
type Standup struct {
	ChannelID ChannelID
	StarterID UserID
	FinishAt  int64
	Lines     []string
}

// Append buffers "handle: line". The buffer is left untouched when the
// summary would no longer fit in one message.
func (s *Standup) Append(handle, line string) error {
	entry := handle + ": " + line
	size := utf8.RuneCountInString(s.Summary()) + utf8.RuneCountInString(entry)
	if len(s.Lines) > 0 {
		size++
	}
	if size > MaxMessageLength {
		return errors.ErrMessageTooLong
	}
	s.Lines = append(s.Lines, entry)
	return nil
}

func (s *Standup) Summary() string {
	return strings.Join(s.Lines, "\n")
}
