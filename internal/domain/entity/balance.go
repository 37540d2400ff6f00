package entity

// Balance is the signed net position of one participant.
// Positive means others owe them, negative means they owe others.
type Balance struct {
	Participant string `json:"participant"`
	Amount      int64  `json:"amount"`
}

// Total sums the amounts of all balances.
func Total(balances []Balance) int64 {
	var sum int64
	for _, b := range balances {
		sum += b.Amount
	}
	return sum
}
