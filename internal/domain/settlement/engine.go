// Package settlement computes the payments that bring a zero-sum set of
// balances back to zero.
//
// The engine repeatedly pairs the largest debtor with the largest creditor
// and settles the smaller of the two amounts. Every step zeroes at least one
// side, so k non-zero balances produce at most k-1 instructions. This is not
// guaranteed to be the global minimum.
//
// Ties between equal balances are broken by insertion order: the working set
// behaves like an ordered multiset where equal keys are inserted after the
// existing ones. Participants are first inserted in name order, and a
// partially settled participant is re-inserted behind its equals. The debtor
// picked is the earliest inserted among the most negative; the creditor is
// the latest inserted among the most positive.
package settlement

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"tally.com/internal/domain/entity"
)

// Plan is the output of one settlement run.
type Plan struct {
	Instructions []entity.Instruction
	// Final holds the end balance of every participant that took part in
	// the run, in name order. All amounts are zero on success.
	Final []entity.Balance
}

type position struct {
	participant string
	amount      int64
	seq         int
}

func (p position) less(o position) bool {
	if p.amount != o.amount {
		return p.amount < o.amount
	}
	return p.seq < o.seq
}

// workingSet keeps positions ordered by (amount, seq).
type workingSet struct {
	items   []position
	nextSeq int
}

func (w *workingSet) insert(participant string, amount int64) {
	p := position{participant: participant, amount: amount, seq: w.nextSeq}
	w.nextSeq++
	i := sort.Search(len(w.items), func(i int) bool { return p.less(w.items[i]) })
	w.items = append(w.items, position{})
	copy(w.items[i+1:], w.items[i:])
	w.items[i] = p
}

// popExtremes removes and returns the lowest and highest positions.
func (w *workingSet) popExtremes() (low, high position) {
	low = w.items[0]
	high = w.items[len(w.items)-1]
	w.items = w.items[1 : len(w.items)-1]
	return low, high
}

// checkBalanced rejects inputs whose exact sum is not zero. MinInt64 is
// rejected as well since its magnitude has no int64 representation.
func checkBalanced(balances []entity.Balance) error {
	sum := decimal.Zero
	for _, b := range balances {
		if b.Amount == math.MinInt64 {
			return fmt.Errorf("%w: balance of %s is out of range", entity.ErrUnbalancedLedger, b.Participant)
		}
		sum = sum.Add(decimal.NewFromInt(b.Amount))
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: sum is %s", entity.ErrUnbalancedLedger, sum)
	}
	return nil
}

// Settle computes the instructions that zero out balances. emit, when not
// nil, is called for every instruction as soon as it is generated.
// The input slice is not modified.
func Settle(balances []entity.Balance, emit func(entity.Instruction)) (*Plan, error) {
	if err := checkBalanced(balances); err != nil {
		return nil, err
	}

	nonZero := make([]entity.Balance, 0, len(balances))
	for _, b := range balances {
		if b.Amount != 0 {
			nonZero = append(nonZero, b)
		}
	}
	sort.SliceStable(nonZero, func(i, j int) bool {
		return nonZero[i].Participant < nonZero[j].Participant
	})

	plan := &Plan{}
	if len(nonZero) == 0 {
		return plan, nil
	}

	set := &workingSet{items: make([]position, 0, len(nonZero))}
	final := make(map[string]int64, len(nonZero))
	for _, b := range nonZero {
		set.insert(b.Participant, b.Amount)
		final[b.Participant] = b.Amount
	}

	for len(set.items) > 0 {
		if len(set.items) == 1 {
			p := set.items[0]
			return nil, fmt.Errorf("%w: %s left with %d", entity.ErrUnbalancedLedger, p.participant, p.amount)
		}

		low, high := set.popExtremes()
		if low.amount >= 0 || high.amount <= 0 {
			return nil, fmt.Errorf("%w: no debtor/creditor pair between %s and %s",
				entity.ErrUnbalancedLedger, low.participant, high.participant)
		}

		settled := min(-low.amount, high.amount)
		ins := entity.Instruction{From: low.participant, To: high.participant, Amount: settled}
		plan.Instructions = append(plan.Instructions, ins)
		if emit != nil {
			emit(ins)
		}

		low.amount += settled
		high.amount -= settled
		final[low.participant] = low.amount
		final[high.participant] = high.amount

		if low.amount != 0 {
			set.insert(low.participant, low.amount)
		}
		if high.amount != 0 {
			set.insert(high.participant, high.amount)
		}
	}

	plan.Final = make([]entity.Balance, 0, len(nonZero))
	for _, b := range nonZero {
		plan.Final = append(plan.Final, entity.Balance{Participant: b.Participant, Amount: final[b.Participant]})
	}
	return plan, nil
}
