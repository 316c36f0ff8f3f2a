package game

import "errors"

var (
	ErrDeckExhausted    = errors.New("deck_exhausted")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrInvalidPhase     = errors.New("invalid_phase")
	ErrNotYourTurn      = errors.New("not_your_turn")
	ErrHandTooSmall     = errors.New("hand_too_small")
	ErrPlayerNotFound   = errors.New("player_not_found")
)

// ValidatePhase returns ErrInvalidPhase unless the room is in one of the allowed phases.
func ValidatePhase(s GameState, allowed ...Phase) error {
	for _, p := range allowed {
		if s.Phase == p {
			return nil
		}
	}
	return ErrInvalidPhase
}

func ValidateTurn(s GameState, playerID string) error {
	if err := ValidatePhase(s, PhasePlaying); err != nil {
		return err
	}
	if s.CurrentPlayerID == nil || *s.CurrentPlayerID != playerID {
		return ErrNotYourTurn
	}
	return nil
}
