package booking

import (
    "fmt"
    "math"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// Charge computes the token cost of count billing units at the rates
// in p.  It is a pure function: same inputs, same charge, no hidden
// state.  The rate bucket follows the caller's chosen unit; the
// engine never swaps a cheaper bucket in.  Rates and charges are
// whole tokens throughout, so there is no floating point anywhere in
// the ledger path.
func Charge(p *model.SlotPricing, unit string, count uint32) (uint32, error) {
    var rate uint32
    switch unit {
    case model.UnitHour:
        rate = p.Hourly
    case model.UnitDay:
        rate = p.Daily
    case model.UnitMonth:
        rate = p.Monthly
    default:
        return 0, fmt.Errorf("%w: unknown billing unit %q", repository.ErrValidation, unit)
    }
    if count == 0 {
        return 0, fmt.Errorf("%w: duration_count is required", repository.ErrValidation)
    }
    total := uint64(rate) * uint64(count)
    if total > math.MaxUint32 {
        return 0, fmt.Errorf("%w: charge overflows token ledger", repository.ErrValidation)
    }
    return uint32(total), nil
}
