package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ReplyActionPrefix tags callback data produced by the "Reply" button.
const ReplyActionPrefix = "reply"

var ErrNotReplyAction = errors.New("not a reply action")

// ReplyAction is the payload of the inline "Reply" button. The target user id
// travels inside the callback data, so no server-side lookup is needed to know
// which user a button refers to.
type ReplyAction struct {
	UserID int64
}

// Pack encodes the action as Telegram callback data ("reply:<user id>").
func (a ReplyAction) Pack() string {
	return ReplyActionPrefix + ":" + strconv.FormatInt(a.UserID, 10)
}

// ParseReplyAction decodes callback data produced by Pack.
func ParseReplyAction(data string) (ReplyAction, error) {
	prefix, payload, ok := strings.Cut(data, ":")
	if !ok || prefix != ReplyActionPrefix {
		return ReplyAction{}, fmt.Errorf("%w: %q", ErrNotReplyAction, data)
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return ReplyAction{}, fmt.Errorf("invalid user id in %q: %w", data, err)
	}
	if id == 0 {
		return ReplyAction{}, fmt.Errorf("invalid user id in %q: zero", data)
	}
	return ReplyAction{UserID: id}, nil
}
