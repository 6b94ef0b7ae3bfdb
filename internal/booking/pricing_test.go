package booking

import (
    "errors"
    "math"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

func testRates() *model.SlotPricing {
    return &model.SlotPricing{Hourly: 8, Daily: 50, Monthly: 900}
}

func TestChargePerUnit(t *testing.T) {
    // 3 hours at 8 tokens/hour is exactly 24 tokens.
    got, err := Charge(testRates(), model.UnitHour, 3)
    require.NoError(t, err)
    assert.Equal(t, uint32(24), got)

    got, err = Charge(testRates(), model.UnitDay, 2)
    require.NoError(t, err)
    assert.Equal(t, uint32(100), got)

    got, err = Charge(testRates(), model.UnitMonth, 1)
    require.NoError(t, err)
    assert.Equal(t, uint32(900), got)
}

func TestChargeIsDeterministic(t *testing.T) {
    first, err := Charge(testRates(), model.UnitHour, 7)
    require.NoError(t, err)
    for i := 0; i < 10; i++ {
        again, err := Charge(testRates(), model.UnitHour, 7)
        require.NoError(t, err)
        assert.Equal(t, first, again)
    }
}

func TestChargeUsesRequestedBucketOnly(t *testing.T) {
    // 24 hours billed hourly costs 24*8=192, not the cheaper daily
    // rate of 50.  The engine never swaps buckets for the caller.
    got, err := Charge(testRates(), model.UnitHour, 24)
    require.NoError(t, err)
    assert.Equal(t, uint32(192), got)
}

func TestChargeRejections(t *testing.T) {
    _, err := Charge(testRates(), "WEEK", 1)
    assert.True(t, errors.Is(err, repository.ErrValidation))

    _, err = Charge(testRates(), model.UnitHour, 0)
    assert.True(t, errors.Is(err, repository.ErrValidation))
}

func TestChargeOverflow(t *testing.T) {
    rates := &model.SlotPricing{Hourly: math.MaxUint32}
    _, err := Charge(rates, model.UnitHour, 2)
    assert.True(t, errors.Is(err, repository.ErrValidation))
}
