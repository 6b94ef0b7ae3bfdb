package booking

import (
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestResolveCountFromNow(t *testing.T) {
    spec := DurationSpec{Unit: model.UnitHour, Count: 3}
    start, end, count, err := spec.resolve(testNow)
    require.NoError(t, err)
    assert.Equal(t, testNow, start)
    assert.Equal(t, testNow.Add(3*time.Hour), end)
    assert.Equal(t, uint32(3), count)
}

func TestResolveCalendarUnits(t *testing.T) {
    // Days and months follow the calendar, so a 1-month window that
    // crosses a month boundary lands on the same day number.
    start := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
    spec := DurationSpec{Unit: model.UnitMonth, Count: 1, Start: start}
    _, end, _, err := spec.resolve(start)
    require.NoError(t, err)
    assert.Equal(t, start.AddDate(0, 1, 0), end)

    spec = DurationSpec{Unit: model.UnitDay, Count: 2, Start: start}
    _, end, _, err = spec.resolve(start)
    require.NoError(t, err)
    assert.Equal(t, start.AddDate(0, 0, 2), end)
}

func TestResolveEndRoundsUp(t *testing.T) {
    // 90 minutes billed hourly is 2 whole hours; the platform never
    // bills a fraction of a unit and never rounds down.
    spec := DurationSpec{Unit: model.UnitHour, End: testNow.Add(90 * time.Minute)}
    _, end, count, err := spec.resolve(testNow)
    require.NoError(t, err)
    assert.Equal(t, uint32(2), count)
    assert.Equal(t, testNow.Add(2*time.Hour), end)

    // 25 hours billed daily is 2 days.
    spec = DurationSpec{Unit: model.UnitDay, End: testNow.Add(25 * time.Hour)}
    _, _, count, err = spec.resolve(testNow)
    require.NoError(t, err)
    assert.Equal(t, uint32(2), count)
}

func TestResolveRejections(t *testing.T) {
    cases := map[string]DurationSpec{
        "unknown unit":     {Unit: "WEEK", Count: 1},
        "no count or end":  {Unit: model.UnitHour},
        "count and end":    {Unit: model.UnitHour, Count: 2, End: testNow.Add(time.Hour)},
        "count over cap":   {Unit: model.UnitHour, Count: maxCount + 1},
        "past start":       {Unit: model.UnitHour, Count: 1, Start: testNow.Add(-time.Hour)},
        "end before start": {Unit: model.UnitHour, End: testNow.Add(-time.Minute)},
    }
    for name, spec := range cases {
        t.Run(name, func(t *testing.T) {
            _, _, _, err := spec.resolve(testNow)
            assert.True(t, errors.Is(err, repository.ErrValidation), "got %v", err)
        })
    }
}

func TestResolveToleratesClockSkew(t *testing.T) {
    spec := DurationSpec{Unit: model.UnitHour, Count: 1, Start: testNow.Add(-2 * time.Minute)}
    _, _, _, err := spec.resolve(testNow)
    assert.NoError(t, err)
}

func TestUnitsCeil(t *testing.T) {
    n, err := UnitsCeil(time.Hour, model.UnitHour)
    require.NoError(t, err)
    assert.Equal(t, uint32(1), n)

    n, err = UnitsCeil(61*time.Minute, model.UnitHour)
    require.NoError(t, err)
    assert.Equal(t, uint32(2), n)

    _, err = UnitsCeil(0, model.UnitHour)
    assert.True(t, errors.Is(err, repository.ErrValidation))
}
