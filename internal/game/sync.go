package game

// Guests mirror host decisions with the methods below; none of them validate rules.

// ApplyRack installs a rack dealt by the host and clears the previous round.
func (r *Room) ApplyRack(rackNumber, deckPosition int, balls []Ball) {
	r.resetRound()
	s := &r.GameState
	s.Balls = cloneBalls(balls)
	s.RackNumber = rackNumber
	s.DeckPosition = deckPosition
	s.Phase = PhasePlaying
}

// ApplyRoundResult ends the round with the host's winner. An empty winner only ends it.
func (r *Room) ApplyRoundResult(res RoundResult) {
	s := &r.GameState
	s.Phase = PhaseRoundEnded
	s.CurrentPlayerID = nil
	if res.WinnerID == "" {
		return
	}
	for i := range r.Players {
		r.Players[i].IsWinner = r.Players[i].ID == res.WinnerID
	}
	s.LastWinnerID = strPtr(res.WinnerID)
}

func (r *Room) ApplyClaim(playerID string, hand HandResult) {
	if p, ok := r.Player(playerID); ok {
		hand.Cards = append([]Card{}, hand.Cards...)
		p.ClaimedHand = &hand
	}
}

func (r *Room) ApplyTurn(nextPlayerID string) {
	if nextPlayerID == "" || !r.HasPlayer(nextPlayerID) {
		return
	}
	r.GameState.CurrentPlayerID = strPtr(nextPlayerID)
}
