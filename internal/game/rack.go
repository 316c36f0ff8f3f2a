package game

const (
	RackSize    = 15
	OpenBalls   = 12
	HiddenBalls = RackSize - OpenBalls
)

// AssembleRack deals the next RackSize cards starting at deckPosition. The first OpenBalls
// dealt are open, the rest hidden; ball numbers are then shuffled so the hidden ones cannot
// be told apart by number.
func AssembleRack(deck Deck, deckPosition int, rng Rand) ([]Ball, int, error) {
	if deckPosition < 0 || deckPosition+RackSize > len(deck) {
		return nil, deckPosition, ErrDeckExhausted
	}
	balls := make([]Ball, 0, RackSize)
	for i := 0; i < RackSize; i++ {
		balls = append(balls, Ball{
			Number: i + 1,
			Card:   deck[deckPosition+i],
			IsOpen: i < OpenBalls,
		})
	}
	shuffle(len(balls), rng, func(i, j int) { balls[i], balls[j] = balls[j], balls[i] })
	for i := range balls {
		balls[i].Number = i + 1
	}
	return balls, deckPosition + RackSize, nil
}

func AllBallsPocketed(balls []Ball) bool {
	for _, b := range balls {
		if !b.IsPocketed {
			return false
		}
	}
	return true
}
