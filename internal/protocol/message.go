package protocol

import (
	"time"

	"poker-pool/internal/game"
)

// Version is exchanged during the peer handshake; peers on different versions refuse to link.
const Version = "1"

type Type string

const (
	TypePlayerJoined    Type = "player-joined"
	TypePlayerLeft      Type = "player-left"
	TypeGameStarted     Type = "game-started"
	TypeBallPocketed    Type = "ball-pocketed"
	TypeHandClaimed     Type = "hand-claimed"
	TypeRoundEnded      Type = "round-ended"
	TypeNewRack         Type = "new-rack"
	TypeGameStateUpdate Type = "game-state-update"
	TypeTurnEnded       Type = "turn-ended"
)

// Message is one frame exchanged between peers.
type Message struct {
	Type      Type
	Payload   Payload
	Timestamp int64
	SenderID  string
}

// Payload is implemented only by the payload types of this package.
type Payload interface {
	messageType() Type
}

type PlayerJoined struct {
	Player game.Player
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type GameStarted struct {
	GameState game.GameState `json:"gameState"`
	Players   []game.Player  `json:"players"`
}

type BallPocketed struct {
	BallNumber int    `json:"ballNumber"`
	PlayerID   string `json:"playerId"`
}

type HandClaimed struct {
	PlayerID string          `json:"playerId"`
	Hand     game.HandResult `json:"hand"`
}

type RoundEnded struct {
	WinnerID string           `json:"winnerId"`
	Hand     *game.HandResult `json:"hand"`
}

type NewRack struct {
	RackNumber   int         `json:"rackNumber"`
	DeckPosition int         `json:"deckPosition"`
	Balls        []game.Ball `json:"balls"`
}

type GameStateUpdate struct {
	GameState game.GameState `json:"gameState"`
	Players   []game.Player  `json:"players,omitempty"`
}

type TurnEnded struct {
	PlayerID     string `json:"playerId"`
	NextPlayerID string `json:"nextPlayerId"`
}

// Unknown carries the raw payload of a type this build does not understand.
type Unknown struct {
	Type Type
	Raw  []byte
}

func (PlayerJoined) messageType() Type    { return TypePlayerJoined }
func (PlayerLeft) messageType() Type      { return TypePlayerLeft }
func (GameStarted) messageType() Type     { return TypeGameStarted }
func (BallPocketed) messageType() Type    { return TypeBallPocketed }
func (HandClaimed) messageType() Type     { return TypeHandClaimed }
func (RoundEnded) messageType() Type      { return TypeRoundEnded }
func (NewRack) messageType() Type         { return TypeNewRack }
func (GameStateUpdate) messageType() Type { return TypeGameStateUpdate }
func (TurnEnded) messageType() Type       { return TypeTurnEnded }
func (u Unknown) messageType() Type       { return u.Type }

// New stamps p with its type, the sender and the current time.
func New(senderID string, p Payload) Message {
	return Message{
		Type:      p.messageType(),
		Payload:   p,
		Timestamp: time.Now().UnixMilli(),
		SenderID:  senderID,
	}
}
