package store_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"poker-pool/internal/game"
	"poker-pool/internal/store"
	"poker-pool/internal/testutil"
)

func testRoom(t *testing.T) *game.Room {
	t.Helper()
	room := game.NewRoom("Friday", "🎱", game.NewPlayer("ann", "", true), time.UnixMilli(1700000000000))
	room.AddPlayer(game.NewPlayer("bob", "", false))
	if err := room.StartGame(rand.New(rand.NewSource(9))); err != nil {
		t.Fatalf("start: %v", err)
	}
	return room
}

func TestRoomRoundTrip(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()

	room := testRoom(t)
	saved, err := st.UpsertRoom(ctx, *room)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID != room.ID || saved.CreatedAt != room.CreatedAt {
		t.Fatalf("unexpected saved room %+v", saved)
	}

	got, err := st.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Friday" || got.Avatar != "🎱" || got.HostID != room.HostID {
		t.Fatalf("unexpected room %+v", got)
	}
	if len(got.Players) != 2 || len(got.GameState.Balls) != game.RackSize || len(got.GameState.Deck) != game.DeckSize {
		t.Fatalf("state not preserved: players=%d balls=%d deck=%d", len(got.Players), len(got.GameState.Balls), len(got.GameState.Deck))
	}
	if got.GameState.Balls[0].Card != room.GameState.Balls[0].Card {
		t.Fatal("ball cards differ after round trip")
	}

	room.Name = "Saturday"
	if _, err := st.UpsertRoom(ctx, *room); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, _ = st.GetRoom(ctx, room.ID)
	if got.Name != "Saturday" {
		t.Fatalf("upsert did not overwrite, name=%s", got.Name)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()

	if _, err := st.GetRoom(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if st.LoadRoom(ctx, "missing") != nil {
		t.Fatal("LoadRoom must return nil for a missing room")
	}
}

func TestPatchRoomKeepsUnsetFields(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()

	room := testRoom(t)
	if st.SaveRoom(ctx, *room) == nil {
		t.Fatal("save room failed")
	}
	name := "Renamed"
	state := game.NewGameState()
	got := st.UpdateRoom(ctx, room.ID, store.RoomUpdate{Name: &name, GameState: &state})
	if got == nil {
		t.Fatal("update returned nil")
	}
	if got.Name != "Renamed" || got.Avatar != room.Avatar || len(got.Players) != 2 {
		t.Fatalf("unexpected patched room %+v", got)
	}
	if got.GameState.Phase != game.PhaseWaiting || len(got.GameState.Balls) != 0 {
		t.Fatalf("game state not replaced: %+v", got.GameState)
	}
	if st.UpdateRoom(ctx, "missing", store.RoomUpdate{Name: &name}) != nil {
		t.Fatal("update of a missing room must return nil")
	}
}

func TestGameSessionsAndRecentRooms(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()

	first := testRoom(t)
	second := testRoom(t)
	st.SaveRoom(ctx, *first)
	st.SaveRoom(ctx, *second)

	res := second.ResolveRound()
	rec := st.SaveGameSession(ctx, store.GameSession{
		RoomID:     second.ID,
		WinnerID:   res.WinnerID,
		WinnerHand: res.Hand,
		Players:    second.Players,
		FinalState: second.GameState,
	})
	if rec == nil || rec.ID == "" || rec.RoomID != second.ID || rec.CreatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", rec)
	}
	n, err := st.CountGameSessions(ctx, second.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 session, got %d (%v)", n, err)
	}
	if st.SaveGameSession(ctx, store.GameSession{RoomID: "missing"}) != nil {
		t.Fatal("session for an unknown room must fail soft")
	}

	list := st.ListActiveSessions(ctx, 10)
	if len(list) != 2 || list[0].ID != second.ID || list[0].PlayerCount != 2 {
		t.Fatalf("unexpected recent rooms %+v", list)
	}
	if got := st.ListActiveSessions(ctx, 1); len(got) != 1 {
		t.Fatalf("limit not applied, got %d", len(got))
	}
}
