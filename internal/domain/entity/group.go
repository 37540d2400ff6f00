package entity

const (
	MinGroupSize = 2
	MaxGroupSize = 50
)

// ValidateGroupSize checks that a group of n people can be tracked.
func ValidateGroupSize(n int) error {
	if n < MinGroupSize {
		return ErrGroupTooSmall
	}
	if n > MaxGroupSize {
		return ErrGroupTooLarge
	}
	return nil
}
