package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"poker-pool/internal/game"
)

// PersistenceClient is the optional remote record of rooms and finished rounds. Every
// method fails soft: errors are logged and a nil or empty result is returned.
type PersistenceClient interface {
	SaveRoom(ctx context.Context, room game.Room) *game.Room
	LoadRoom(ctx context.Context, id string) *game.Room
	UpdateRoom(ctx context.Context, id string, upd RoomUpdate) *game.Room
	SaveGameSession(ctx context.Context, gs GameSession) *SessionRecord
	ListActiveSessions(ctx context.Context, limit int) []SessionSummary
	Close()
}

// Offline is the client used when no database is configured.
type Offline struct{}

func (Offline) SaveRoom(context.Context, game.Room) *game.Room { return nil }
func (Offline) LoadRoom(context.Context, string) *game.Room { return nil }
func (Offline) UpdateRoom(context.Context, string, RoomUpdate) *game.Room { return nil }
func (Offline) SaveGameSession(context.Context, GameSession) *SessionRecord { return nil }
func (Offline) ListActiveSessions(context.Context, int) []SessionSummary { return []SessionSummary{} }
func (Offline) Close() {}

func (s *Store) SaveRoom(ctx context.Context, room game.Room) *game.Room {
	out, err := s.UpsertRoom(ctx, room)
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("save_room_failed")
		return nil
	}
	return out
}

func (s *Store) LoadRoom(ctx context.Context, id string) *game.Room {
	out, err := s.GetRoom(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("room_id", id).Msg("load_room_failed")
		}
		return nil
	}
	return out
}

func (s *Store) UpdateRoom(ctx context.Context, id string, upd RoomUpdate) *game.Room {
	out, err := s.PatchRoom(ctx, id, upd)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("room_id", id).Msg("update_room_failed")
		}
		return nil
	}
	return out
}

func (s *Store) SaveGameSession(ctx context.Context, gs GameSession) *SessionRecord {
	rec, err := s.InsertGameSession(ctx, gs)
	if err != nil {
		log.Error().Err(err).Str("room_id", gs.RoomID).Msg("save_game_session_failed")
		return nil
	}
	return rec
}

func (s *Store) ListActiveSessions(ctx context.Context, limit int) []SessionSummary {
	out, err := s.ListRecentRooms(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("list_active_sessions_failed")
		return []SessionSummary{}
	}
	return out
}
