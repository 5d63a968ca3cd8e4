package split

import (
	"errors"
	"fmt"
	"math"
)

// Method identifies how an expense is divided among participants
type Method string

const (
	MethodEqual      Method = "equal"
	MethodPercentage Method = "percentage"
	MethodCustom     Method = "custom"
	MethodItemized   Method = "itemized"
)

// ExtraMethod identifies how a tax or tip charge is distributed
type ExtraMethod string

const (
	ExtraEqual        ExtraMethod = "equal"
	ExtraProportional ExtraMethod = "proportional"
)

// Participant carries the per-member inputs for a split calculation.
// Percentage and Amount are only read by the methods that need them.
type Participant struct {
	UserID     int64    `json:"user_id"`
	Percentage *float64 `json:"percentage,omitempty"` // for percentage method
	Amount     *float64 `json:"amount,omitempty"`     // for custom method
}

// LineItem is a single line on an itemized bill
type LineItem struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	AssignedTo *int64  `json:"assigned_to,omitempty"` // unassigned items contribute to nobody
}

// Extra is a tax or tip charge layered on top of an itemized bill
type Extra struct {
	Amount      float64     `json:"amount"`
	SplitMethod ExtraMethod `json:"split_method"`
}

// Params bundles the method-specific inputs. Each strategy validates
// exhaustively that the fields it requires are present and consistent.
type Params struct {
	Participants []Participant
	Items        []LineItem // itemized only
	Tax          *Extra     // itemized only
	Tip          *Extra     // itemized only
}

// Share is the calculated obligation of a single participant.
// The payer gets a share too; their own share is skipped when shares
// are applied to the ledger, not here.
type Share struct {
	UserID     int64      `json:"user_id"`
	Amount     float64    `json:"amount"`
	Percentage *float64   `json:"percentage,omitempty"`
	Items      []LineItem `json:"items,omitempty"`
}

// Strategy is the interface that all split methods implement
type Strategy interface {
	// Compute calculates every participant's share of the total.
	// Pure: no storage access, deterministic for identical inputs.
	Compute(totalAmount float64, params Params) ([]Share, error)

	// Method returns the identifier for this strategy
	Method() Method

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, params Params) error
}

// Factory creates split strategies based on the requested method
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given method
func (f *Factory) Create(method Method) (Strategy, error) {
	switch method {
	case MethodEqual:
		return &EqualStrategy{}, nil
	case MethodPercentage:
		return &PercentageStrategy{}, nil
	case MethodCustom:
		return &CustomStrategy{}, nil
	case MethodItemized:
		return &ItemizedStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown split method %q", ErrValidation, method)
	}
}

// CreateFromString creates a strategy from a string method (useful for API requests)
func (f *Factory) CreateFromString(method string) (Strategy, error) {
	return f.Create(Method(method))
}

// Tolerance is the rounding slack allowed when reconciling a set of
// shares against the expense total, in currency units.
const Tolerance = 0.01

// ErrValidation is the base for every input-validation failure in this
// package. Callers branch with errors.Is.
var ErrValidation = errors.New("invalid split input")

var (
	ErrNoParticipants       = fmt.Errorf("%w: at least one participant is required", ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: total amount must be positive", ErrValidation)
	ErrMissingPercentage    = fmt.Errorf("%w: percentage required for every participant", ErrValidation)
	ErrPercentageOutOfRange = fmt.Errorf("%w: percentage must be between 0 and 100", ErrValidation)
	ErrPercentageSum        = fmt.Errorf("%w: percentages must add up to 100", ErrValidation)
	ErrMissingAmount        = fmt.Errorf("%w: amount required for every participant", ErrValidation)
	ErrNegativeAmount       = fmt.Errorf("%w: amounts cannot be negative", ErrValidation)
	ErrAmountSum            = fmt.Errorf("%w: custom amounts must equal the total", ErrValidation)
	ErrNoItems              = fmt.Errorf("%w: items are required for an itemized split", ErrValidation)
	ErrExtraMethod          = fmt.Errorf("%w: tax/tip split method must be equal or proportional", ErrValidation)
)

// roundToTwoDecimals rounds a float to 2 decimal places
func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
