// Package booking implements the slot reservation and settlement
// engine: the single component allowed to create bookings, move
// tokens between wallets and flip slot availability.  Everything in
// this package runs either as pure computation (pricing, duration
// arithmetic) or inside one database transaction per operation.
package booking

import (
    "fmt"
    "math"
    "time"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// DurationSpec describes the time window a driver asks for.  The
// billing unit is chosen by the driver and never auto-optimized.
// Either Count or End must be set: when End is set, the count is
// derived by rounding the window up to whole billing units.  A zero
// Start means "from now".
type DurationSpec struct {
    Unit  string    // HOUR, DAY or MONTH
    Count uint32    // number of billing units; 0 when End is used
    Start time.Time // window start; zero value means now
    End   time.Time // optional explicit window end
}

// maxCount caps the purchasable units per booking so a typo cannot
// drain a wallet or occupy a stall for decades.
const maxCount = 1000

// unitSpan returns the calendar end of a window of count units
// starting at start.  Days and months follow the calendar rather
// than fixed durations, matching how the rates are quoted.
func unitSpan(unit string, start time.Time, count uint32) time.Time {
    switch unit {
    case model.UnitHour:
        return start.Add(time.Duration(count) * time.Hour)
    case model.UnitDay:
        return start.AddDate(0, 0, int(count))
    case model.UnitMonth:
        return start.AddDate(0, int(count), 0)
    }
    return start
}

// UnitsCeil converts an arbitrary window into a whole number of
// billing units, rounding up.  A window of 90 minutes billed hourly
// costs 2 hours; 25 hours billed daily costs 2 days.  This is the
// documented rounding policy: the platform never bills fractions of
// a unit and never rounds down.
func UnitsCeil(d time.Duration, unit string) (uint32, error) {
    if d <= 0 {
        return 0, fmt.Errorf("%w: window must be positive", repository.ErrValidation)
    }
    var span time.Duration
    switch unit {
    case model.UnitHour:
        span = time.Hour
    case model.UnitDay:
        span = 24 * time.Hour
    case model.UnitMonth:
        // Months are calendar-based when computing end times; for
        // rounding an explicit window we bill per started 30-day span.
        span = 30 * 24 * time.Hour
    default:
        return 0, fmt.Errorf("%w: unknown billing unit %q", repository.ErrValidation, unit)
    }
    n := int64(math.Ceil(float64(d) / float64(span)))
    if n > maxCount {
        return 0, fmt.Errorf("%w: duration exceeds %d %s units", repository.ErrValidation, maxCount, unit)
    }
    return uint32(n), nil
}

// resolve validates the spec against the current time and returns
// the concrete (start, end, count).  All failures wrap
// repository.ErrValidation; nothing has been locked yet when this
// runs.
func (s DurationSpec) resolve(now time.Time) (start, end time.Time, count uint32, err error) {
    switch s.Unit {
    case model.UnitHour, model.UnitDay, model.UnitMonth:
    default:
        return start, end, 0, fmt.Errorf("%w: unknown billing unit %q", repository.ErrValidation, s.Unit)
    }

    start = s.Start
    if start.IsZero() {
        start = now
    }
    start = start.UTC().Truncate(time.Minute)
    // Allow a small clock skew, otherwise "start now" requests from
    // clients with a slightly slow clock would be rejected.
    if start.Before(now.Add(-5 * time.Minute)) {
        return start, end, 0, fmt.Errorf("%w: start_time is in the past", repository.ErrValidation)
    }

    switch {
    case s.Count > 0 && !s.End.IsZero():
        return start, end, 0, fmt.Errorf("%w: provide duration_count or end_time, not both", repository.ErrValidation)
    case s.Count > 0:
        if s.Count > maxCount {
            return start, end, 0, fmt.Errorf("%w: duration_count exceeds %d", repository.ErrValidation, maxCount)
        }
        count = s.Count
    case !s.End.IsZero():
        count, err = UnitsCeil(s.End.UTC().Sub(start), s.Unit)
        if err != nil {
            return start, end, 0, err
        }
    default:
        return start, end, 0, fmt.Errorf("%w: duration_count is required", repository.ErrValidation)
    }

    end = unitSpan(s.Unit, start, count)
    return start, end, count, nil
}
