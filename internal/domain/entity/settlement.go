package entity

// Instruction tells From to pay To the given Amount.
type Instruction struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// SettlementResult is the outcome of one settlement run.
type SettlementResult struct {
	RunID        string        `json:"run_id"`
	Instructions []Instruction `json:"instructions"`
}

// Count returns the number of instructions emitted by the run.
func (r *SettlementResult) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Instructions)
}
