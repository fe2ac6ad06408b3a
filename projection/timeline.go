// Package projection shapes container histories into the views returned to
// callers. It reads domain entities and never mutates them.
package projection

import (
	"chat-core/domain"
	"chat-core/errors"
	"fmt"

	"github.com/samber/lo"
)

// PageSize is the maximum number of messages in a single page.
const PageSize = 50

// EndOfHistory is the End value of the last page.
const EndOfHistory = -1

type ReactView struct {
	ReactID           domain.ReactID  `json:"react_id"`
	UserIDs           []domain.UserID `json:"u_ids"`
	IsThisUserReacted bool            `json:"is_this_user_reacted"`
}

type MessageView struct {
	ID        domain.MessageID `json:"message_id"`
	AuthorID  domain.UserID    `json:"u_id"`
	Content   string           `json:"message"`
	CreatedAt int64            `json:"time_created"`
	Reacts    []ReactView      `json:"reacts"`
	Pinned    bool             `json:"is_pinned"`
}

type Page struct {
	Messages []MessageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}

// Timeline returns the page of history starting start messages back from the
// newest one. history is in posting order.
//
// start is valid when 0 <= start <= len(history). start == len(history) gives
// an empty page, which is how an empty history is read. End is start+PageSize
// when older messages remain past the page, EndOfHistory otherwise.
func Timeline(history []*domain.Message, start int, viewer domain.UserID) (Page, error) {
	total := len(history)
	if start < 0 || start > total {
		return Page{}, fmt.Errorf("%w: start=%d total=%d", errors.ErrInvalidStart, start, total)
	}

	stop := min(start+PageSize, total)
	messages := make([]MessageView, 0, stop-start)
	for i := start; i < stop; i++ {
		messages = append(messages, View(history[total-1-i], viewer))
	}

	return Page{
		Messages: messages,
		Start:    start,
		End:      lo.Ternary(stop < total, start+PageSize, EndOfHistory),
	}, nil
}

// View renders a single message as seen by viewer.
func View(msg *domain.Message, viewer domain.UserID) MessageView {
	return MessageView{
		ID:        msg.ID,
		AuthorID:  msg.AuthorID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		Reacts: lo.Map(msg.Reacts, func(r domain.React, _ int) ReactView {
			return ReactView{
				ReactID:           r.ReactID,
				UserIDs:           r.UserIDs.Clone(),
				IsThisUserReacted: r.UserIDs.Contains(viewer),
			}
		}),
		Pinned: msg.Pinned,
	}
}
