package split

// =============================================================================
// ITEMIZED SPLIT STRATEGY
// Shares are the sum of item prices assigned to each participant, plus
// tax and tip distributed equally or proportionally
// =============================================================================

// ItemizedStrategy implements the Strategy interface for itemized splits
type ItemizedStrategy struct{}

// Method returns the split method identifier
func (s *ItemizedStrategy) Method() Method {
	return MethodItemized
}

// Validate checks if the inputs are valid for an itemized split
func (s *ItemizedStrategy) Validate(totalAmount float64, params Params) error {
	if len(params.Participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if len(params.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range params.Items {
		if item.Price < 0 {
			return ErrNegativeAmount
		}
	}
	for _, extra := range []*Extra{params.Tax, params.Tip} {
		if extra == nil {
			continue
		}
		if extra.Amount < 0 {
			return ErrNegativeAmount
		}
		if extra.SplitMethod != ExtraEqual && extra.SplitMethod != ExtraProportional {
			return ErrExtraMethod
		}
	}
	return nil
}

// Compute sums each participant's assigned item prices, then layers tax
// and tip on top. Tax is allocated against the item subtotal; tip runs
// afterwards, against subtotal-plus-tax. Each allocation is rounded at
// the point of assignment, so the share total may drift from the
// expense total by up to the global tolerance.
func (s *ItemizedStrategy) Compute(totalAmount float64, params Params) ([]Share, error) {
	if err := s.Validate(totalAmount, params); err != nil {
		return nil, err
	}

	totals := make(map[int64]float64, len(params.Participants))
	for _, p := range params.Participants {
		totals[p.UserID] = 0
	}

	// Sum items assigned to each participant. Items assigned to nobody,
	// or to someone outside the participant set, contribute nothing.
	for _, item := range params.Items {
		if item.AssignedTo == nil {
			continue
		}
		if _, ok := totals[*item.AssignedTo]; ok {
			totals[*item.AssignedTo] += item.Price
		}
	}

	if params.Tax != nil {
		s.allocateExtra(params.Tax, params.Participants, totals)
	}
	if params.Tip != nil {
		s.allocateExtra(params.Tip, params.Participants, totals)
	}

	shares := make([]Share, len(params.Participants))
	for i, p := range params.Participants {
		shares[i] = Share{
			UserID: p.UserID,
			Amount: roundToTwoDecimals(totals[p.UserID]),
			Items:  itemsAssignedTo(p.UserID, params.Items),
		}
	}

	return shares, nil
}

// allocateExtra distributes a tax or tip charge into the running totals.
// Proportional allocation uses each participant's running total at the
// time of the call, which is what makes tip-after-tax compound.
func (s *ItemizedStrategy) allocateExtra(extra *Extra, participants []Participant, totals map[int64]float64) {
	if extra.SplitMethod == ExtraEqual {
		perPerson := extra.Amount / float64(len(participants))
		for _, p := range participants {
			totals[p.UserID] += roundToTwoDecimals(perPerson)
		}
		return
	}

	var runningTotal float64
	for _, p := range participants {
		runningTotal += totals[p.UserID]
	}
	for _, p := range participants {
		proportion := 0.0
		if runningTotal > 0 {
			proportion = totals[p.UserID] / runningTotal
		}
		totals[p.UserID] += roundToTwoDecimals(extra.Amount * proportion)
	}
}

// itemsAssignedTo filters the bill down to one participant's items
func itemsAssignedTo(userID int64, items []LineItem) []LineItem {
	var assigned []LineItem
	for _, item := range items {
		if item.AssignedTo != nil && *item.AssignedTo == userID {
			assigned = append(assigned, item)
		}
	}
	return assigned
}
