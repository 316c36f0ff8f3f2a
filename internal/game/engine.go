package game

// RoundResult describes how a round was decided. WinnerID is empty when nobody held five cards.
type RoundResult struct {
	WinnerID string      `json:"winnerId"`
	Hand     *HandResult `json:"hand,omitempty"`
}

// StartGame shuffles a fresh deck and deals the first rack. Hands, claims and winners from a
// previous game are cleared and turn order is renumbered by join order.
func (r *Room) StartGame(rng Rand) error {
	if err := ValidatePhase(r.GameState, PhaseWaiting, PhaseRoundEnded, PhaseGameFinished); err != nil {
		return err
	}
	if len(r.Players) == 0 {
		return ErrNotEnoughPlayers
	}
	deck := BuildShuffledDeck(rng)
	balls, pos, err := AssembleRack(deck, 0, rng)
	if err != nil {
		return err
	}
	for i := range r.Players {
		r.Players[i].TurnOrder = i
	}
	r.resetRound()
	r.GameState = GameState{
		Phase:           PhasePlaying,
		CurrentPlayerID: strPtr(r.turnOrder()[0].ID),
		Deck:            deck,
		Balls:           balls,
		RackNumber:      1,
		DeckPosition:    pos,
	}
	return nil
}

// NextRack deals the following rack from the same deck. When the deck cannot cover another
// rack the game is finished and ErrDeckExhausted is returned; a new game needs StartGame.
func (r *Room) NextRack(rng Rand) error {
	if err := ValidatePhase(r.GameState, PhaseRoundEnded); err != nil {
		return err
	}
	s := &r.GameState
	balls, pos, err := AssembleRack(s.Deck, s.DeckPosition, rng)
	if err != nil {
		s.Phase = PhaseGameFinished
		return err
	}
	r.resetRound()
	s.Balls = balls
	s.DeckPosition = pos
	s.RackNumber++
	s.Phase = PhasePlaying
	// last winner breaks
	if s.LastWinnerID != nil && r.HasPlayer(*s.LastWinnerID) {
		s.CurrentPlayerID = strPtr(*s.LastWinnerID)
	} else if len(r.Players) > 0 {
		s.CurrentPlayerID = strPtr(r.turnOrder()[0].ID)
	}
	return nil
}

// Pocket applies a pocketing during play. It reports whether anything changed and, when
// the pocketing cleared the rack, how the round was resolved.
func (r *Room) Pocket(ballNumber int, playerID string) (bool, *RoundResult) {
	s := &r.GameState
	if s.Phase != PhasePlaying || !r.HasPlayer(playerID) {
		return false, nil
	}
	if b, ok := s.Ball(ballNumber); !ok || b.IsPocketed {
		return false, nil
	}
	s.Balls, r.Players = PocketBall(ballNumber, playerID, s.Balls, r.Players)
	if AllBallsPocketed(s.Balls) {
		res := r.resolveRound("")
		return true, &res
	}
	return true, nil
}

// ClaimHand records playerID's best hand and ends the round. The best hand among every
// player holding five or more cards wins; the claimant keeps ties.
func (r *Room) ClaimHand(playerID string) (*HandResult, *RoundResult, error) {
	if err := ValidatePhase(r.GameState, PhasePlaying); err != nil {
		return nil, nil, err
	}
	p, ok := r.Player(playerID)
	if !ok {
		return nil, nil, ErrPlayerNotFound
	}
	best := EvaluateBestHand(p.Hand)
	if best == nil {
		return nil, nil, ErrHandTooSmall
	}
	p.ClaimedHand = best
	res := r.resolveRound(playerID)
	return best, &res, nil
}

// ResolveRound ends the round without a claimant.
func (r *Room) ResolveRound() RoundResult {
	return r.resolveRound("")
}

func (r *Room) resolveRound(preferID string) RoundResult {
	var (
		winner string
		best   *HandResult
	)
	for _, p := range r.turnOrder() {
		h := EvaluateBestHand(p.Hand)
		if h == nil {
			continue
		}
		if best == nil || CompareHands(*h, *best) > 0 || (CompareHands(*h, *best) == 0 && p.ID == preferID) {
			winner, best = p.ID, h
		}
	}
	s := &r.GameState
	s.Phase = PhaseRoundEnded
	s.CurrentPlayerID = nil
	if winner == "" {
		return RoundResult{}
	}
	for i := range r.Players {
		r.Players[i].IsWinner = r.Players[i].ID == winner
	}
	s.LastWinnerID = strPtr(winner)
	return RoundResult{WinnerID: winner, Hand: best}
}

// EndTurn passes the turn from playerID to the next player in turn order.
func (r *Room) EndTurn(playerID string) (string, error) {
	if err := ValidateTurn(r.GameState, playerID); err != nil {
		return "", err
	}
	next := r.nextPlayerAfter(playerID)
	if next == nil {
		return playerID, nil
	}
	r.GameState.CurrentPlayerID = next
	return *next, nil
}

func (r *Room) resetRound() {
	for i := range r.Players {
		r.Players[i].Hand = []Card{}
		r.Players[i].IsWinner = false
		r.Players[i].ClaimedHand = nil
	}
}
