package store

import (
	"time"

	"poker-pool/internal/game"
)

// RoomUpdate holds the fields to change; nil fields are left alone.
type RoomUpdate struct {
	Name      *string
	Avatar    *string
	HostID    *string
	Players   []game.Player
	GameState *game.GameState
}

type GameSession struct {
	RoomID     string
	WinnerID   string
	WinnerHand *game.HandResult
	Players    []game.Player
	FinalState game.GameState
}

type SessionRecord struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	WinnerID  string    `json:"winnerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionSummary struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Avatar      string        `json:"avatar,omitempty"`
	Players     []game.Player `json:"players"`
	PlayerCount int           `json:"playerCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
