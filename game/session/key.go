package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidKey = errors.New("invalid session key")

// Key scopes one game: the chat it runs in and the message that announced it
type Key struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// String renders the key as "<chat>:<message>"
func (k Key) String() string {
	return strconv.FormatInt(k.ChatID, 10) + ":" + strconv.FormatInt(k.MessageID, 10)
}

// ParseKey parses the String form of a key
func ParseKey(s string) (Key, error) {
	chat, msg, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: chat id: %v", ErrInvalidKey, err)
	}
	msgID, err := strconv.ParseInt(msg, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: message id: %v", ErrInvalidKey, err)
	}
	return Key{ChatID: chatID, MessageID: msgID}, nil
}
