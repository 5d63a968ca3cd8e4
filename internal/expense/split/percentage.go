package split

import "math"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Method returns the split method identifier
func (s *PercentageStrategy) Method() Method {
	return MethodPercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, params Params) error {
	if len(params.Participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	// Check that all participants have percentages and they sum to 100
	var totalPercentage float64
	for _, p := range params.Participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		totalPercentage += *p.Percentage
	}

	// Allow for small floating point errors (99.99 to 100.01)
	if math.Abs(totalPercentage-100) > Tolerance {
		return ErrPercentageSum
	}

	return nil
}

// Compute divides the total amount based on each participant's percentage
func (s *PercentageStrategy) Compute(totalAmount float64, params Params) ([]Share, error) {
	if err := s.Validate(totalAmount, params); err != nil {
		return nil, err
	}

	shares := make([]Share, len(params.Participants))
	for i, p := range params.Participants {
		pct := *p.Percentage
		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     roundToTwoDecimals(totalAmount * pct / 100),
			Percentage: &pct,
		}
	}

	return shares, nil
}
