package split

import "math"

// =============================================================================
// CUSTOM SPLIT STRATEGY
// Each participant owes a caller-supplied exact amount (must sum to total)
// =============================================================================

// CustomStrategy implements the Strategy interface for custom amount splits
type CustomStrategy struct{}

// Method returns the split method identifier
func (s *CustomStrategy) Method() Method {
	return MethodCustom
}

// Validate checks if the inputs are valid for a custom split
func (s *CustomStrategy) Validate(totalAmount float64, params Params) error {
	if len(params.Participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	// Check that all participants have amounts and they sum to the total
	var totalCustom float64
	for _, p := range params.Participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		totalCustom += *p.Amount
	}

	// Allow for small floating point errors
	if math.Abs(totalCustom-totalAmount) > Tolerance {
		return ErrAmountSum
	}

	return nil
}

// Compute returns the caller-supplied amounts, rounded to 2 decimals
func (s *CustomStrategy) Compute(totalAmount float64, params Params) ([]Share, error) {
	if err := s.Validate(totalAmount, params); err != nil {
		return nil, err
	}

	shares := make([]Share, len(params.Participants))
	for i, p := range params.Participants {
		shares[i] = Share{
			UserID: p.UserID,
			Amount: roundToTwoDecimals(*p.Amount),
		}
	}

	return shares, nil
}
