package recurrence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func formatAll(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

func intPtr(i int) *int { return &i }

func TestExpand_WeeklyUntilEndDate(t *testing.T) {
	end := day(t, "2024-10-22")
	res, err := Expand(Spec{Start: day(t, "2024-10-01"), Interval: 1, Unit: UnitWeek, End: &end})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-10-01", "2024-10-08", "2024-10-15", "2024-10-22"}, formatAll(res.Dates))
	assert.Empty(t, res.Excluded)
}

func TestExpand_WeeklySpacing(t *testing.T) {
	starts := []string{"2024-01-01", "2024-02-28", "2024-07-10", "2024-12-27"}
	for _, start := range starts {
		for interval := 1; interval <= 4; interval++ {
			end := day(t, start).AddDate(0, 6, 0)
			res, err := Expand(Spec{Start: day(t, start), Interval: interval, Unit: UnitWeek, End: &end})
			require.NoError(t, err, "start=%s interval=%d", start, interval)

			for i, d := range res.Dates {
				assert.False(t, IsWeekend(d), "weekend date %s returned", d.Format(DateLayout))
				if i > 0 {
					assert.Equal(t, 24*7*interval, int(d.Sub(res.Dates[i-1]).Hours()), "start=%s interval=%d", start, interval)
				}
			}
		}
	}
}

func TestExpand_MonthlyClampsToMonthEnd(t *testing.T) {
	res, err := Expand(Spec{Start: day(t, "2024-01-31"), Interval: 1, Unit: UnitMonth, Count: intPtr(3)})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-04-30"}, formatAll(res.Dates))
	assert.Equal(t, []string{"2024-03-31"}, formatAll(res.Excluded))
}

func TestExpand_CountSkipsWeekendsWithoutConsumingSlots(t *testing.T) {
	res, err := Expand(Spec{Start: day(t, "2024-06-15"), Interval: 1, Unit: UnitMonth, Count: intPtr(2)})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-15", "2024-08-15"}, formatAll(res.Dates))
	assert.Equal(t, []string{"2024-06-15"}, formatAll(res.Excluded))
}

func TestExpand_EndDateStopsAtBoundaryRegardlessOfExclusions(t *testing.T) {
	// 2024-10-05 is a Saturday, 2024-11-05 a Tuesday.
	end := day(t, "2024-11-30")
	res, err := Expand(Spec{Start: day(t, "2024-10-05"), Interval: 1, Unit: UnitMonth, End: &end})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11-05"}, formatAll(res.Dates))
	assert.Equal(t, []string{"2024-10-05"}, formatAll(res.Excluded))
}

func TestExpand_AllWeekendsFails(t *testing.T) {
	end := day(t, "2024-10-26")
	_, err := Expand(Spec{Start: day(t, "2024-10-05"), Interval: 1, Unit: UnitWeek, End: &end})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = Expand(Spec{Start: day(t, "2024-10-05"), Interval: 1, Unit: UnitWeek, Count: intPtr(3)})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestExpand_InvalidSpecs(t *testing.T) {
	start := day(t, "2024-10-01")
	before := day(t, "2024-09-30")
	tooFar := day(t, "2025-10-02")

	cases := []struct {
		name string
		spec Spec
	}{
		{"end before start", Spec{Start: start, Interval: 1, Unit: UnitWeek, End: &before}},
		{"end beyond one year", Spec{Start: start, Interval: 1, Unit: UnitWeek, End: &tooFar}},
		{"zero interval", Spec{Start: start, Interval: 0, Unit: UnitWeek, Count: intPtr(2)}},
		{"unknown unit", Spec{Start: start, Interval: 1, Unit: "day", Count: intPtr(2)}},
		{"both end and count", Spec{Start: start, Interval: 1, Unit: UnitWeek, End: &tooFar, Count: intPtr(2)}},
		{"neither end nor count", Spec{Start: start, Interval: 1, Unit: UnitWeek}},
		{"zero count", Spec{Start: start, Interval: 1, Unit: UnitWeek, Count: intPtr(0)}},
		{"count beyond horizon", Spec{Start: start, Interval: 1, Unit: UnitMonth, Count: intPtr(20)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Expand(c.spec)
			assert.ErrorIs(t, err, ErrInvalidRecurrence)
		})
	}
}

func TestExpand_EndExactlyOneYearAfterStart(t *testing.T) {
	end := day(t, "2025-10-01")
	res, err := Expand(Spec{Start: day(t, "2024-10-01"), Interval: 3, Unit: UnitMonth, End: &end})

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-10-01", "2025-01-01", "2025-04-01", "2025-07-01", "2025-10-01"}, formatAll(res.Dates))
}

func TestExpand_HugeIntervalsStayWithinHorizon(t *testing.T) {
	start := day(t, "2024-10-01")
	intervals := []int{54, 1000, math.MaxInt / 7, math.MaxInt/7 + 1, math.MaxInt/2 + 1, math.MaxInt}

	for _, unit := range []Unit{UnitWeek, UnitMonth} {
		for _, interval := range intervals {
			res, err := Expand(Spec{Start: start, Interval: interval, Unit: unit, Count: intPtr(1)})
			require.NoError(t, err, "unit=%s interval=%d", unit, interval)
			assert.Equal(t, []string{"2024-10-01"}, formatAll(res.Dates), "unit=%s interval=%d", unit, interval)

			_, err = Expand(Spec{Start: start, Interval: interval, Unit: unit, Count: intPtr(3)})
			assert.ErrorIs(t, err, ErrInvalidRecurrence, "unit=%s interval=%d", unit, interval)

			end := day(t, "2025-10-01")
			res, err = Expand(Spec{Start: start, Interval: interval, Unit: unit, End: &end})
			require.NoError(t, err, "unit=%s interval=%d", unit, interval)
			assert.Equal(t, []string{"2024-10-01"}, formatAll(res.Dates), "unit=%s interval=%d", unit, interval)
		}
	}
}

func TestExpand_LargestIntervalsThatFit(t *testing.T) {
	// 2024-10-01 plus 52 weeks is 2025-09-30, plus 12 months is 2025-10-01.
	res, err := Expand(Spec{Start: day(t, "2024-10-01"), Interval: 52, Unit: UnitWeek, Count: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-10-01", "2025-09-30"}, formatAll(res.Dates))

	res, err = Expand(Spec{Start: day(t, "2024-10-01"), Interval: 12, Unit: UnitMonth, Count: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-10-01", "2025-10-01"}, formatAll(res.Dates))
}

func TestHorizon(t *testing.T) {
	assert.Equal(t, "2025-10-01", Horizon(day(t, "2024-10-01")).Format(DateLayout))
	assert.Equal(t, "2025-02-28", Horizon(day(t, "2024-02-29")).Format(DateLayout))

	tooFar := day(t, "2025-03-01")
	_, err := Expand(Spec{Start: day(t, "2024-02-29"), Interval: 1, Unit: UnitWeek, End: &tooFar})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	// Feb 28 2025 is a Friday and still inside the horizon.
	res, err := Expand(Spec{Start: day(t, "2024-02-29"), Interval: 12, Unit: UnitMonth, Count: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-29", "2025-02-28"}, formatAll(res.Dates))
}

func TestCandidates_Restartable(t *testing.T) {
	spec := Spec{Start: day(t, "2024-10-01"), Interval: 2, Unit: UnitWeek, Count: intPtr(3)}

	var first, second []time.Time
	for d := range spec.Candidates() {
		first = append(first, d)
		if len(first) == 3 {
			break
		}
	}
	for d := range spec.Candidates() {
		second = append(second, d)
		if len(second) == 3 {
			break
		}
	}

	assert.Equal(t, formatAll(first), formatAll(second))
	assert.Equal(t, []string{"2024-10-01", "2024-10-15", "2024-10-29"}, formatAll(first))
}
