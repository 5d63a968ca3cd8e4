package split

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Method returns the split method identifier
func (s *EqualStrategy) Method() Method {
	return MethodEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount float64, params Params) error {
	if len(params.Participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// Compute divides the total amount evenly among all participants.
// Each share is rounded independently; the rounding residual is NOT
// redistributed, so the sum may drift from the total by up to the
// global tolerance. Callers reconcile against that tolerance.
func (s *EqualStrategy) Compute(totalAmount float64, params Params) ([]Share, error) {
	if err := s.Validate(totalAmount, params); err != nil {
		return nil, err
	}

	perPerson := roundToTwoDecimals(totalAmount / float64(len(params.Participants)))

	shares := make([]Share, len(params.Participants))
	for i, p := range params.Participants {
		shares[i] = Share{
			UserID: p.UserID,
			Amount: perPerson,
		}
	}

	return shares, nil
}
