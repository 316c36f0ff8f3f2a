package game

type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhasePlaying      Phase = "playing"
	PhaseRoundEnded   Phase = "round-ended"
	PhaseGameFinished Phase = "game-finished"
)

type Ball struct {
	Number     int     `json:"number"`
	Card       Card    `json:"card"`
	IsOpen     bool    `json:"isOpen"`
	IsPocketed bool    `json:"isPocketed"`
	PocketedBy *string `json:"pocketedBy"`
}

type Player struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar,omitempty"`
	IsHost      bool        `json:"isHost"`
	Hand        []Card      `json:"hand"`
	TurnOrder   int         `json:"turnOrder"`
	IsWinner    bool        `json:"isWinner"`
	ClaimedHand *HandResult `json:"claimedHand,omitempty"`
}

type GameState struct {
	Phase           Phase   `json:"phase"`
	CurrentPlayerID *string `json:"currentPlayerId"`
	Deck            Deck    `json:"deck"`
	Balls           []Ball  `json:"balls"`
	RackNumber      int     `json:"rackNumber"`
	DeckPosition    int     `json:"deckPosition"`
	LastWinnerID    *string `json:"lastWinnerId"`
}

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	HostID    string    `json:"hostId"`
	Players   []Player  `json:"players"`
	GameState GameState `json:"gameState"`
	CreatedAt int64     `json:"createdAt"`
}

func NewGameState() GameState {
	return GameState{
		Phase: PhaseWaiting,
		Deck:  Deck{},
		Balls: []Ball{},
	}
}

func (s GameState) Ball(number int) (Ball, bool) {
	for _, b := range s.Balls {
		if b.Number == number {
			return b, true
		}
	}
	return Ball{}, false
}

func (p Player) clone() Player {
	out := p
	out.Hand = append([]Card{}, p.Hand...)
	if p.ClaimedHand != nil {
		h := *p.ClaimedHand
		h.Cards = append([]Card{}, p.ClaimedHand.Cards...)
		out.ClaimedHand = &h
	}
	return out
}

func (b Ball) clone() Ball {
	out := b
	if b.PocketedBy != nil {
		v := *b.PocketedBy
		out.PocketedBy = &v
	}
	return out
}

func (s GameState) Clone() GameState {
	out := s
	out.Deck = append(Deck{}, s.Deck...)
	out.Balls = cloneBalls(s.Balls)
	out.CurrentPlayerID = clonePtr(s.CurrentPlayerID)
	out.LastWinnerID = clonePtr(s.LastWinnerID)
	return out
}

func cloneBalls(balls []Ball) []Ball {
	out := make([]Ball, len(balls))
	for i, b := range balls {
		out[i] = b.clone()
	}
	return out
}

func ClonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.clone()
	}
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func strPtr(s string) *string {
	return &s
}
