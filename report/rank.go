package report

import (
	"github.com/petar/GoLLRB/llrb"
)

// Entry is one ranked run.  Gap is the distance between the best value the
// run found and the function's known optimum.
type Entry struct {
	Name    string
	PopSize int
	Best    float64
	Gap     float64
	Solved  bool
	seq     int
}

func (e Entry) Less(than llrb.Item) bool {
	o := than.(Entry)
	if e.Gap != o.Gap {
		return e.Gap < o.Gap
	}
	return e.seq < o.seq
}

// Ranking orders runs by their gap to the optimum, smallest first.  Runs with
// equal gaps keep the order in which they were added.
type Ranking struct {
	tree *llrb.LLRB
	n    int
}

func NewRanking() *Ranking {
	return &Ranking{tree: llrb.New()}
}

func (r *Ranking) Add(e Entry) {
	e.seq = r.n
	r.n++
	r.tree.InsertNoReplace(e)
}

func (r *Ranking) Len() int { return r.tree.Len() }

// Top returns up to k entries in rank order.  A negative k returns all of
// them.
func (r *Ranking) Top(k int) []Entry {
	if k < 0 || k > r.tree.Len() {
		k = r.tree.Len()
	}
	if k == 0 {
		return nil
	}

	entries := make([]Entry, 0, k)
	r.tree.AscendGreaterOrEqual(r.tree.Min(), func(i llrb.Item) bool {
		entries = append(entries, i.(Entry))
		return len(entries) < k
	})
	return entries
}
