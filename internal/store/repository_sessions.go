package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"poker-pool/internal/game"
	"poker-pool/internal/id"
)

func (s *Store) InsertGameSession(ctx context.Context, gs GameSession) (*SessionRecord, error) {
	players := gs.Players
	if players == nil {
		players = []game.Player{}
	}
	playersJSON, err := jsonParam(players)
	if err != nil {
		return nil, err
	}
	stateJSON, err := jsonParam(gs.FinalState)
	if err != nil {
		return nil, err
	}
	var handJSON []byte
	if gs.WinnerHand != nil {
		if handJSON, err = jsonParam(gs.WinnerHand); err != nil {
			return nil, err
		}
	}
	rec := SessionRecord{ID: id.New(), RoomID: gs.RoomID, WinnerID: gs.WinnerID}
	var created pgtype.Timestamptz
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO game_sessions (id, room_id, winner_id, winner_hand, players, final_state)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, rec.ID, gs.RoomID, textParam(gs.WinnerID), handJSON, playersJSON, stateJSON).Scan(&created)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = created.Time
	return &rec, nil
}

func (s *Store) CountGameSessions(ctx context.Context, roomID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(1) FROM game_sessions WHERE room_id = $1`, roomID).Scan(&n)
	return n, err
}
