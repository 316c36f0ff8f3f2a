package game

import (
	"testing"
	"time"
)

func TestNewRoomSeatsHost(t *testing.T) {
	host := NewPlayer("ann", "🎱", false)
	now := time.UnixMilli(1700000000123)
	room := NewRoom("table", "", host, now)
	if room.ID == "" || room.HostID != host.ID || room.CreatedAt != now.UnixMilli() {
		t.Fatalf("unexpected room %+v", room)
	}
	if len(room.Players) != 1 || !room.Players[0].IsHost || room.Players[0].TurnOrder != 0 {
		t.Fatalf("unexpected roster %+v", room.Players)
	}
	if room.GameState.Phase != PhaseWaiting {
		t.Fatalf("expected waiting, got %s", room.GameState.Phase)
	}
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	room := newTestRoom(t, "ann")
	bob := NewPlayer("bob", "", false)
	if !room.AddPlayer(bob) {
		t.Fatal("expected bob to be added")
	}
	if room.AddPlayer(bob) {
		t.Fatal("second add must be a no-op")
	}
	if len(room.Players) != 2 || room.Players[1].TurnOrder != 1 || room.Players[1].IsHost {
		t.Fatalf("unexpected roster %+v", room.Players)
	}
}

func TestRemovePlayerUnknownIsNoop(t *testing.T) {
	room := newTestRoom(t, "ann", "bob")
	if room.RemovePlayer("ghost") {
		t.Fatal("removing an unknown player must report false")
	}
	if len(room.Players) != 2 {
		t.Fatalf("roster changed: %+v", room.Players)
	}
}

func TestRemoveHostPromotesNextInJoinOrder(t *testing.T) {
	room := newTestRoom(t, "ann", "bob", "cid")
	hostID := room.HostID
	bob := room.Players[1].ID
	if !room.RemovePlayer(hostID) {
		t.Fatal("expected host removal")
	}
	if room.HostID != bob || !room.Players[0].IsHost {
		t.Fatalf("expected bob promoted, host is %s", room.HostID)
	}
	for _, p := range room.Players[1:] {
		if p.IsHost {
			t.Fatalf("%s must not be host", p.Name)
		}
	}
}

func TestRemoveCurrentPlayerAdvancesTurn(t *testing.T) {
	room := newTestRoom(t, "ann", "bob", "cid")
	room.GameState.Phase = PhasePlaying
	bob, cid := room.Players[1].ID, room.Players[2].ID
	room.GameState.CurrentPlayerID = strPtr(bob)
	room.RemovePlayer(bob)
	if got := room.GameState.CurrentPlayerID; got == nil || *got != cid {
		t.Fatalf("expected turn to pass to cid, got %v", got)
	}
}

func TestRemoveLastPlayerClearsTurn(t *testing.T) {
	room := newTestRoom(t, "ann")
	room.GameState.CurrentPlayerID = strPtr(room.HostID)
	room.RemovePlayer(room.HostID)
	if len(room.Players) != 0 || room.GameState.CurrentPlayerID != nil {
		t.Fatalf("expected empty room without a turn, got %+v", room)
	}
}

func TestCloneIsDeep(t *testing.T) {
	room := newTestRoom(t, "ann", "bob")
	room.GameState.Balls = []Ball{{Number: 1, PocketedBy: strPtr("x")}}
	cp := room.Clone()
	cp.Players[0].Name = "changed"
	cp.Players[0].Hand = append(cp.Players[0].Hand, c(Ace, Spades))
	*cp.GameState.Balls[0].PocketedBy = "y"
	if room.Players[0].Name != "ann" || len(room.Players[0].Hand) != 0 || *room.GameState.Balls[0].PocketedBy != "x" {
		t.Fatal("clone shares state with the original")
	}
}

func TestApplyStateReplacesRoster(t *testing.T) {
	room := newTestRoom(t, "ann")
	other := newTestRoom(t, "zed", "ann2")
	other.GameState.Phase = PhasePlaying
	room.ApplyState(other.GameState, other.Players)
	if room.GameState.Phase != PhasePlaying || len(room.Players) != 2 || room.HostID != other.HostID {
		t.Fatalf("state not applied: %+v", room)
	}
	room.ApplyState(NewGameState(), nil)
	if len(room.Players) != 2 || room.GameState.Phase != PhaseWaiting {
		t.Fatal("nil roster must keep players")
	}
}
