package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedMessage = errors.New("malformed document message")
	ErrUnknownMessage   = errors.New("unknown document message type")
)

// Decode parses a document→native message into a ContentChangedMessage or a
// HeightChangedMessage.
func Decode(raw []byte) (any, error) {
	var envelope IncomingMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch envelope.Type {
	case MessageTypeContentChanged:
		var msg ContentChangedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return msg, nil
	case MessageTypeHeightChanged:
		var msg HeightChangedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if msg.Height < 0 {
			return nil, fmt.Errorf("%w: negative height %g", ErrMalformedMessage, msg.Height)
		}
		return msg, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, envelope.Type)
}
