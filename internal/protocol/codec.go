package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"poker-pool/internal/game"
)

var ErrMessageParse = errors.New("message_parse")

type envelope struct {
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	SenderID  string          `json:"senderId"`
}

func Encode(m Message) ([]byte, error) {
	if m.Payload == nil {
		return nil, fmt.Errorf("encode %s: nil payload", m.Type)
	}
	var (
		raw []byte
		err error
	)
	switch p := m.Payload.(type) {
	case PlayerJoined:
		raw, err = json.Marshal(p.Player)
	case Unknown:
		raw = p.Raw
	default:
		raw, err = json.Marshal(p)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	typ := m.Type
	if typ == "" {
		typ = m.Payload.messageType()
	}
	return json.Marshal(envelope{Type: typ, Payload: raw, Timestamp: m.Timestamp, SenderID: m.SenderID})
}

// Decode parses one frame. Frames of an unrecognized type decode to an Unknown payload.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMessageParse, err)
	}
	if env.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMessageParse)
	}
	if len(env.Payload) == 0 || bytes.Equal(env.Payload, []byte("null")) {
		return Message{}, fmt.Errorf("%w: %s without payload", ErrMessageParse, env.Type)
	}
	p, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %s: %v", ErrMessageParse, env.Type, err)
	}
	return Message{Type: env.Type, Payload: p, Timestamp: env.Timestamp, SenderID: env.SenderID}, nil
}

func decodePayload(t Type, raw json.RawMessage) (Payload, error) {
	switch t {
	case TypePlayerJoined:
		var p game.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, errors.New("player without id")
		}
		return PlayerJoined{Player: p}, nil
	case TypePlayerLeft:
		return unmarshalAs[PlayerLeft](raw)
	case TypeGameStarted:
		return unmarshalAs[GameStarted](raw)
	case TypeBallPocketed:
		return unmarshalAs[BallPocketed](raw)
	case TypeHandClaimed:
		return unmarshalAs[HandClaimed](raw)
	case TypeRoundEnded:
		return unmarshalAs[RoundEnded](raw)
	case TypeNewRack:
		return unmarshalAs[NewRack](raw)
	case TypeGameStateUpdate:
		return unmarshalAs[GameStateUpdate](raw)
	case TypeTurnEnded:
		return unmarshalAs[TurnEnded](raw)
	default:
		return Unknown{Type: t, Raw: append([]byte{}, raw...)}, nil
	}
}

func unmarshalAs[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}
