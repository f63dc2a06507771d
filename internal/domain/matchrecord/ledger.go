package matchrecord

import "github.com/riskibarqy/scorekeeper/internal/domain/scoring"

// Ledger collects the point-by-point log of a match as it is played.
type Ledger struct {
	points []ledgerPoint
	sets   []SetSummary
}

type ledgerPoint struct {
	setNumber int
	point     Point
}

// SetSummary is a finished set without its points.
type SetSummary struct {
	SetNumber  int
	FinalScore SetScore
	WinnerID   int
}

// Checkpoint marks a ledger length that Truncate can return to.
type Checkpoint struct {
	points int
	sets   int
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Apply appends the point described by outcome, closing the set when it was won.
func (l *Ledger) Apply(outcome scoring.PointOutcome) {
	if !outcome.Applied {
		return
	}

	sequence := 1
	if n := len(l.points); n > 0 && l.points[n-1].setNumber == outcome.SetNumber {
		sequence = l.points[n-1].point.Sequence + 1
	}
	l.points = append(l.points, ledgerPoint{
		setNumber: outcome.SetNumber,
		point: Point{
			Sequence:     sequence,
			ScorerID:     outcome.ScorerID,
			Player1Score: outcome.Player1Score,
			Player2Score: outcome.Player2Score,
		},
	})

	if outcome.SetWon {
		l.sets = append(l.sets, SetSummary{
			SetNumber: outcome.SetNumber,
			FinalScore: SetScore{
				Player1Score: outcome.Player1Score,
				Player2Score: outcome.Player2Score,
			},
			WinnerID: outcome.SetWinnerID,
		})
	}
}

// RestoreLedger rebuilds a ledger from finished sets and the points of the
// set still in play.
func RestoreLedger(sets []Set, current []Point, currentSetNumber int) *Ledger {
	l := NewLedger()
	for _, set := range sets {
		for _, p := range set.Points {
			l.points = append(l.points, ledgerPoint{setNumber: set.SetNumber, point: p})
		}
		l.sets = append(l.sets, SetSummary{
			SetNumber:  set.SetNumber,
			FinalScore: set.FinalScore,
			WinnerID:   set.WinnerID,
		})
	}
	for _, p := range current {
		l.points = append(l.points, ledgerPoint{setNumber: currentSetNumber, point: p})
	}
	return l
}

func (l *Ledger) Checkpoint() Checkpoint {
	return Checkpoint{points: len(l.points), sets: len(l.sets)}
}

// Truncate rewinds the ledger to cp. A checkpoint beyond the current length
// is ignored.
func (l *Ledger) Truncate(cp Checkpoint) {
	if cp.points <= len(l.points) {
		l.points = l.points[:cp.points]
	}
	if cp.sets <= len(l.sets) {
		l.sets = l.sets[:cp.sets]
	}
}

func (l *Ledger) Reset() {
	l.points = nil
	l.sets = nil
}

// Sets returns the finished sets with their points.
func (l *Ledger) Sets() []Set {
	out := make([]Set, 0, len(l.sets))
	for _, summary := range l.sets {
		out = append(out, Set{
			SetNumber:  summary.SetNumber,
			Points:     l.pointsFor(summary.SetNumber),
			FinalScore: summary.FinalScore,
			WinnerID:   summary.WinnerID,
		})
	}
	return out
}

// CurrentSetPoints returns the points of the set still in play.
func (l *Ledger) CurrentSetPoints() []Point {
	if len(l.points) == 0 {
		return nil
	}
	last := l.points[len(l.points)-1].setNumber
	for _, summary := range l.sets {
		if summary.SetNumber == last {
			return nil
		}
	}
	return l.pointsFor(last)
}

func (l *Ledger) pointsFor(setNumber int) []Point {
	var out []Point
	for _, p := range l.points {
		if p.setNumber == setNumber {
			out = append(out, p.point)
		}
	}
	return out
}
