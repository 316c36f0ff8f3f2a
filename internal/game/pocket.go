package game

// PocketBall marks ballNumber as pocketed by playerID and moves its card into that player's
// hand. A missing or already pocketed ball leaves both inputs untouched, so duplicate
// deliveries of the same pocketing are harmless. The returned slices never alias the inputs.
func PocketBall(ballNumber int, playerID string, balls []Ball, players []Player) ([]Ball, []Player) {
	idx := -1
	for i, b := range balls {
		if b.Number == ballNumber {
			idx = i
			break
		}
	}
	if idx < 0 || balls[idx].IsPocketed {
		return balls, players
	}

	outBalls := cloneBalls(balls)
	outBalls[idx].IsPocketed = true
	outBalls[idx].PocketedBy = strPtr(playerID)
	outBalls[idx].IsOpen = true

	outPlayers := ClonePlayers(players)
	for i := range outPlayers {
		if outPlayers[i].ID == playerID {
			outPlayers[i].Hand = append(outPlayers[i].Hand, balls[idx].Card)
		}
	}
	return outBalls, outPlayers
}
