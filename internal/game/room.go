package game

import (
	"sort"
	"time"

	"poker-pool/internal/id"
)

func NewPlayer(name, avatar string, isHost bool) Player {
	return Player{
		ID:     id.NewUUID(),
		Name:   name,
		Avatar: avatar,
		IsHost: isHost,
		Hand:   []Card{},
	}
}

// NewRoom creates a waiting room whose only member is host.
func NewRoom(name, avatar string, host Player, now time.Time) *Room {
	host.IsHost = true
	host.TurnOrder = 0
	if host.Hand == nil {
		host.Hand = []Card{}
	}
	return &Room{
		ID:        id.NewUUID(),
		Name:      name,
		Avatar:    avatar,
		HostID:    host.ID,
		Players:   []Player{host},
		GameState: NewGameState(),
		CreatedAt: now.UnixMilli(),
	}
}

func (r *Room) Player(playerID string) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i], true
		}
	}
	return nil, false
}

func (r *Room) HasPlayer(playerID string) bool {
	_, ok := r.Player(playerID)
	return ok
}

// AddPlayer appends p to the roster unless a player with the same id is already present.
func (r *Room) AddPlayer(p Player) bool {
	if r.HasPlayer(p.ID) {
		return false
	}
	next := 0
	for _, existing := range r.Players {
		if existing.TurnOrder >= next {
			next = existing.TurnOrder + 1
		}
	}
	p.TurnOrder = next
	p.IsHost = p.ID == r.HostID
	if p.Hand == nil {
		p.Hand = []Card{}
	}
	r.Players = append(r.Players, p)
	return true
}

// RemovePlayer drops playerID from the roster. When the host leaves, the next player in join
// order becomes host; when the current player leaves mid-round, the turn moves on.
func (r *Room) RemovePlayer(playerID string) bool {
	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s := &r.GameState
	if s.CurrentPlayerID != nil && *s.CurrentPlayerID == playerID {
		s.CurrentPlayerID = r.nextPlayerAfter(playerID)
	}
	r.Players = append(r.Players[:idx:idx], r.Players[idx+1:]...)
	if r.HostID == playerID && len(r.Players) > 0 {
		r.Players[0].IsHost = true
		r.HostID = r.Players[0].ID
	}
	if len(r.Players) == 0 {
		s.CurrentPlayerID = nil
	}
	return true
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r *Room) Clone() *Room {
	out := *r
	out.Players = ClonePlayers(r.Players)
	out.GameState = r.GameState.Clone()
	return &out
}

// ApplyState replaces the local game state with the host's copy. A nil roster keeps the
// current one.
func (r *Room) ApplyState(state GameState, players []Player) {
	r.GameState = state.Clone()
	if players == nil {
		return
	}
	r.Players = ClonePlayers(players)
	for _, p := range r.Players {
		if p.IsHost {
			r.HostID = p.ID
		}
	}
}

func (r *Room) turnOrder() []Player {
	out := append([]Player{}, r.Players...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TurnOrder < out[j].TurnOrder })
	return out
}

// nextPlayerAfter returns the id following playerID in turn order, wrapping around. It
// returns nil when nobody else is seated.
func (r *Room) nextPlayerAfter(playerID string) *string {
	order := r.turnOrder()
	for i, p := range order {
		if p.ID != playerID {
			continue
		}
		if len(order) < 2 {
			return nil
		}
		return strPtr(order[(i+1)%len(order)].ID)
	}
	if len(order) > 0 {
		return strPtr(order[0].ID)
	}
	return nil
}
