package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/chat-board-games/game/engine"
)

const (
	// MaxCallbackData is the Telegram limit on callback_data bytes.
	MaxCallbackData = 64

	// NoopData marks buttons that do nothing when pressed.
	NoopData = "noop"
)

// ErrNoop is returned by ParseCallback for decorative buttons
var ErrNoop = errors.New("noop callback")

// Callback is a decoded keyboard press. MessageID is the command message
// that started the game, which together with the chat forms the session key.
type Callback struct {
	Variant   engine.Variant
	MessageID int64
	Row       int
	Col       int
}

// ParseError reports callback data that does not belong to any game
type ParseError struct {
	Data   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid callback data %q: %s", e.Data, e.Reason)
}

// EncodeCallback formats a press. ConnectFour omits the row.
func EncodeCallback(cb Callback) string {
	if cb.Variant == engine.ConnectFour {
		return fmt.Sprintf("%s-%d-%d", cb.Variant, cb.MessageID, cb.Col)
	}
	return fmt.Sprintf("%s-%d-%d-%d", cb.Variant, cb.MessageID, cb.Row, cb.Col)
}

// ParseCallback decodes data produced by EncodeCallback
func ParseCallback(data string) (Callback, error) {
	if data == NoopData {
		return Callback{}, ErrNoop
	}
	if len(data) > MaxCallbackData {
		return Callback{}, &ParseError{Data: data, Reason: "too long"}
	}

	parts := strings.Split(data, "-")
	variant, ok := engine.ParseVariant(parts[0])
	if !ok || string(variant) != parts[0] {
		return Callback{}, &ParseError{Data: data, Reason: "unknown game"}
	}

	want := 4
	if variant == engine.ConnectFour {
		want = 3
	}
	if len(parts) != want {
		return Callback{}, &ParseError{Data: data, Reason: fmt.Sprintf("expected %d fields, got %d", want, len(parts))}
	}

	msgID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || msgID <= 0 {
		return Callback{}, &ParseError{Data: data, Reason: "bad message id"}
	}

	coords := make([]int, 0, 2)
	for _, p := range parts[2:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= engine.MaxDimension {
			return Callback{}, &ParseError{Data: data, Reason: "bad coordinate"}
		}
		coords = append(coords, n)
	}

	cb := Callback{Variant: variant, MessageID: msgID}
	if variant == engine.ConnectFour {
		cb.Col = coords[0]
	} else {
		cb.Row, cb.Col = coords[0], coords[1]
	}
	return cb, nil
}
