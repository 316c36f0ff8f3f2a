package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"poker-pool/internal/game"
)

const roomColumns = `id, name, avatar, host_id, players, game_state, created_at, updated_at`

type roomRow struct {
	ID        string
	Name      string
	Avatar    pgtype.Text
	HostID    string
	Players   []byte
	GameState []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func scanRoom(row pgx.Row) (roomRow, error) {
	var r roomRow
	err := row.Scan(&r.ID, &r.Name, &r.Avatar, &r.HostID, &r.Players, &r.GameState, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r roomRow) toRoom() (*game.Room, error) {
	out := &game.Room{
		ID:        r.ID,
		Name:      r.Name,
		Avatar:    textVal(r.Avatar),
		HostID:    r.HostID,
		Players:   []game.Player{},
		CreatedAt: r.CreatedAt.Time.UnixMilli(),
	}
	if err := json.Unmarshal(r.Players, &out.Players); err != nil {
		return nil, fmt.Errorf("decode players of room %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.GameState, &out.GameState); err != nil {
		return nil, fmt.Errorf("decode game state of room %s: %w", r.ID, err)
	}
	return out, nil
}

// UpsertRoom inserts room or overwrites the stored copy with the same id.
func (s *Store) UpsertRoom(ctx context.Context, room game.Room) (*game.Room, error) {
	players, err := jsonParam(room.Players)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []byte("[]")
	}
	state, err := jsonParam(room.GameState)
	if err != nil {
		return nil, err
	}
	created := time.UnixMilli(room.CreatedAt)
	if room.CreatedAt == 0 {
		created = time.Now()
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name, avatar, host_id, players, game_state, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    avatar = EXCLUDED.avatar,
		    host_id = EXCLUDED.host_id,
		    players = EXCLUDED.players,
		    game_state = EXCLUDED.game_state,
		    updated_at = now()
		RETURNING `+roomColumns,
		room.ID, room.Name, textParam(room.Avatar), room.HostID, players, state, timestamptzParam(created))
	r, err := scanRoom(row)
	if err != nil {
		return nil, err
	}
	return r.toRoom()
}

func (s *Store) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	r, err := scanRoom(s.Pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r.toRoom()
}

// PatchRoom applies the non-nil fields of upd and bumps updated_at.
func (s *Store) PatchRoom(ctx context.Context, id string, upd RoomUpdate) (*game.Room, error) {
	var players, state []byte
	var err error
	if upd.Players != nil {
		if players, err = jsonParam(upd.Players); err != nil {
			return nil, err
		}
	}
	if upd.GameState != nil {
		if state, err = jsonParam(upd.GameState); err != nil {
			return nil, err
		}
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE rooms
		SET name = COALESCE($2, name),
		    avatar = COALESCE($3, avatar),
		    host_id = COALESCE($4, host_id),
		    players = COALESCE($5::jsonb, players),
		    game_state = COALESCE($6::jsonb, game_state),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+roomColumns,
		id, textPtrParam(upd.Name), textPtrParam(upd.Avatar), textPtrParam(upd.HostID), players, state)
	r, err := scanRoom(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r.toRoom()
}

// ListRecentRooms returns the most recently updated rooms first.
func (s *Store) ListRecentRooms(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SessionSummary{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		room, err := r.toRoom()
		if err != nil {
			return nil, err
		}
		out = append(out, SessionSummary{
			ID:          room.ID,
			Name:        room.Name,
			Avatar:      room.Avatar,
			Players:     room.Players,
			PlayerCount: len(room.Players),
			CreatedAt:   r.CreatedAt.Time,
			UpdatedAt:   r.UpdatedAt.Time,
		})
	}
	return out, rows.Err()
}
