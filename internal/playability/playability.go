package playability

import (
	"fmt"
	"math"

	"github.com/arcanaland/setsheet/internal/card"
)

// MaxScore is the score of the most played card of a batch
const MaxScore = 5

// InvalidBatchError is returned when a score is requested but the batch has no
// usable rank data to normalize against.
type InvalidBatchError struct {
	MaxRank int
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("cannot compute playability: batch max EDHREC rank is %d", e.MaxRank)
}

// Ranker normalizes EDHREC ranks against the extremes of one card batch
type Ranker struct {
	MinRank int
	MaxRank int
	Ranked  int
}

// NewRanker scans the batch for the lowest and highest EDHREC ranks
func NewRanker(cards []card.Card) *Ranker {
	r := &Ranker{}
	for _, c := range cards {
		if !c.HasRank() {
			continue
		}
		rank := *c.EDHRECRank
		if r.Ranked == 0 || rank < r.MinRank {
			r.MinRank = rank
		}
		if r.Ranked == 0 || rank > r.MaxRank {
			r.MaxRank = rank
		}
		r.Ranked++
	}
	return r
}

// Score maps the card's rank to 0..5 between the batch extremes: the lowest rank
// scores 5 and the highest 0. A batch whose ranked cards share one rank scores 5.
// ok is false for cards without a rank.
func (r *Ranker) Score(c card.Card) (score int, ok bool, err error) {
	if !c.HasRank() {
		return 0, false, nil
	}
	if r.MaxRank <= 0 {
		return 0, false, &InvalidBatchError{MaxRank: r.MaxRank}
	}
	if r.MaxRank <= r.MinRank {
		return MaxScore, true, nil
	}

	// Round half to even: a scaled 2.5 rounds to 2
	spread := float64(r.MaxRank - r.MinRank)
	scaled := math.RoundToEven(float64(*c.EDHRECRank-r.MinRank) / spread * MaxScore)
	score = MaxScore - int(scaled)

	return min(max(score, 0), MaxScore), true, nil
}

// Format renders a score as "N/5"
func Format(score int) string {
	return fmt.Sprintf("%d/%d", score, MaxScore)
}
