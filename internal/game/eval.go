package game

import (
	"sort"
)

type HandCategory int

// Category scores, higher is better.
const (
	HighCard      HandCategory = 1
	Pair          HandCategory = 2
	TwoPair       HandCategory = 3
	ThreeOfAKind  HandCategory = 4
	Straight      HandCategory = 5
	Flush         HandCategory = 6
	FullHouse     HandCategory = 7
	FourOfAKind   HandCategory = 8
	StraightFlush HandCategory = 9
	RoyalFlush    HandCategory = 10
)

var categoryNames = map[HandCategory]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

func (c HandCategory) String() string {
	return categoryNames[c]
}

// HandResult is the evaluation of exactly five cards.
type HandResult struct {
	Name     string `json:"name"`
	Cards    []Card `json:"cards"`
	Score    int    `json:"score"`
	HighCard Rank   `json:"highCard"`
}

func (h HandResult) Category() HandCategory {
	return HandCategory(h.Score)
}

func newResult(cat HandCategory, cards []Card, high Rank) HandResult {
	return HandResult{Name: cat.String(), Cards: cards, Score: int(cat), HighCard: high}
}

// CompareHands orders by category and then by the single deciding rank. Kickers are not
// compared, so hands of one category with the same deciding rank are equal.
func CompareHands(a, b HandResult) int {
	if a.Score != b.Score {
		return a.Score - b.Score
	}
	return int(a.HighCard) - int(b.HighCard)
}

// EvaluateBestHand scores every 5-card subset of cards and returns the best one, or nil when
// fewer than five cards are held. Among equal subsets the first enumerated wins.
func EvaluateBestHand(cards []Card) *HandResult {
	n := len(cards)
	if n < 5 {
		return nil
	}
	var best *HandResult
	idx := []int{0, 1, 2, 3, 4}
	for {
		h := EvaluateFiveCardHand([]Card{cards[idx[0]], cards[idx[1]], cards[idx[2]], cards[idx[3]], cards[idx[4]]})
		if best == nil || CompareHands(h, *best) > 0 {
			best = &h
		}
		if !nextCombination(idx, n) {
			break
		}
	}
	return best
}

// nextCombination advances idx to the next k-subset of [0,n) in lexicographic order.
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

func EvaluateFiveCardHand(cards []Card) HandResult {
	sorted := append([]Card{}, cards...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	values := make([]int, 0, len(sorted))
	counts := map[Rank]int{}
	isFlush := true
	for _, c := range sorted {
		values = append(values, int(c.Rank))
		counts[c.Rank]++
		if c.Suit != sorted[0].Suit {
			isFlush = false
		}
	}
	isStraight := CheckStraight(values)
	top := sorted[0].Rank
	if isStraight && isWheel(values) {
		top = Five
	}

	if isFlush && isStraight && values[0] == int(Ace) && values[4] == int(Ten) {
		return newResult(RoyalFlush, sorted, Ace)
	}
	if isFlush && isStraight {
		return newResult(StraightFlush, sorted, top)
	}
	if r, ok := rankWithCount(counts, 4); ok {
		return newResult(FourOfAKind, sorted, r)
	}
	trips, hasThree := rankWithCount(counts, 3)
	pairs := ranksWithCount(counts, 2)
	if hasThree && len(pairs) > 0 {
		return newResult(FullHouse, sorted, trips)
	}
	if isFlush {
		return newResult(Flush, sorted, top)
	}
	if isStraight {
		return newResult(Straight, sorted, top)
	}
	if hasThree {
		return newResult(ThreeOfAKind, sorted, trips)
	}
	if len(pairs) == 2 {
		return newResult(TwoPair, sorted, pairs[0])
	}
	if len(pairs) == 1 {
		return newResult(Pair, sorted, pairs[0])
	}
	return newResult(HighCard, sorted, top)
}

// CheckStraight reports whether five rank values are consecutive, counting A-5-4-3-2 as a straight.
func CheckStraight(values []int) bool {
	if len(values) != 5 {
		return false
	}
	sorted := append([]int{}, values...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	consecutive := true
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i]-sorted[i+1] != 1 {
			consecutive = false
			break
		}
	}
	return consecutive || isWheel(sorted)
}

func isWheel(desc []int) bool {
	return len(desc) == 5 && desc[0] == 14 && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2
}

func rankWithCount(counts map[Rank]int, n int) (Rank, bool) {
	for r, c := range counts {
		if c == n {
			return r, true
		}
	}
	return 0, false
}

// ranksWithCount returns matching ranks, highest first.
func ranksWithCount(counts map[Rank]int, n int) []Rank {
	out := []Rank{}
	for r, c := range counts {
		if c == n {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
