package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sgbadvisor/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestCouponDatesWorkedExample tests the SGBSEP27 schedule: maturity
// 2027-09-01 evaluated on 2024-01-15 pays on every 1 March and 1 September
// through maturity.
func TestCouponDatesWorkedExample(t *testing.T) {
	dates := CouponDates(date(2027, time.September, 1), date(2024, time.January, 15))

	expected := []time.Time{
		date(2024, time.March, 1),
		date(2024, time.September, 1),
		date(2025, time.March, 1),
		date(2025, time.September, 1),
		date(2026, time.March, 1),
		date(2026, time.September, 1),
		date(2027, time.March, 1),
		date(2027, time.September, 1),
	}
	assert.Equal(t, expected, dates)
}

// TestCouponDatesTwoPerFullYear tests that bonds more than a year out pay
// twice per full remaining year, six months apart.
func TestCouponDatesTwoPerFullYear(t *testing.T) {
	maturity := date(2030, time.June, 15)
	dates := CouponDates(maturity, date(2024, time.June, 16))

	// 2024-12-15 through 2030-06-15: 12 coupons over 6 remaining half-years.
	require.Len(t, dates, 12)
	for i := 1; i < len(dates); i++ {
		gap := dates[i].Sub(dates[i-1])
		assert.InDelta(t, 182, gap.Hours()/24, 4, "coupons %d and %d not ~6 months apart", i-1, i)
	}
}

// TestCouponDatesMonthWrap tests the other-month wrap for maturities in
// July-December.
func TestCouponDatesMonthWrap(t *testing.T) {
	// Maturity in November; other month must be May, not month 17.
	dates := CouponDates(date(2026, time.November, 18), date(2026, time.January, 1))
	require.Len(t, dates, 2)
	assert.Equal(t, time.May, dates[0].Month())
	assert.Equal(t, time.November, dates[1].Month())

	// Maturity in March; other month is September.
	dates = CouponDates(date(2026, time.March, 9), date(2025, time.December, 31))
	require.Len(t, dates, 1)
	assert.Equal(t, time.March, dates[0].Month())
}

// TestCouponDatesDayClamping tests day-of-month clamping for short months.
func TestCouponDatesDayClamping(t *testing.T) {
	// Maturity on 31 August; the other coupon month is February.
	dates := CouponDates(date(2029, time.August, 31), date(2029, time.January, 1))
	require.Len(t, dates, 2)
	// 2029 is not a leap year: 31 February clamps to 28.
	assert.Equal(t, date(2029, time.February, 28), dates[0])
	assert.Equal(t, date(2029, time.August, 31), dates[1])

	// Leap year clamps to 29.
	dates = CouponDates(date(2028, time.August, 31), date(2028, time.January, 1))
	require.Len(t, dates, 2)
	assert.Equal(t, date(2028, time.February, 29), dates[0])

	// Day 31 in a 30-day month clamps to 30.
	dates = CouponDates(date(2027, time.December, 31), date(2027, time.May, 1))
	require.Len(t, dates, 2)
	assert.Equal(t, date(2027, time.June, 30), dates[0])
	assert.Equal(t, date(2027, time.December, 31), dates[1])
}

// TestCouponDatesMaturityOnly tests a bond whose only remaining coupon is the
// maturity payment itself.
func TestCouponDatesMaturityOnly(t *testing.T) {
	dates := CouponDates(date(2024, time.September, 1), date(2024, time.August, 20))
	require.Len(t, dates, 1)
	assert.Equal(t, date(2024, time.September, 1), dates[0])
}

// TestCouponDatesNoneEligible tests a near-maturity bond with no coupon left
// strictly after the evaluation date except none at all.
func TestCouponDatesNoneEligible(t *testing.T) {
	// Evaluated on the maturity date itself: eval < d fails for every date.
	dates := CouponDates(date(2024, time.September, 1), date(2024, time.September, 1))
	assert.Empty(t, dates)
}

// TestBuildScheduleShape tests the invariants of the generated series: first
// flow strictly negative on the evaluation date, last strictly positive at
// maturity, coupons in between.
func TestBuildScheduleShape(t *testing.T) {
	bond := domain.SGB{
		Symbol:       "SGBSEP27",
		LTP:          7900.02,
		IssuePrice:   5400,
		InterestRate: 2.75,
		MaturityDate: date(2027, time.September, 1),
	}

	flows := BuildSchedule(bond, 7956.00, date(2024, time.January, 15))
	require.Len(t, flows, 10)

	assert.Equal(t, date(2024, time.January, 15), flows[0].Date)
	assert.Equal(t, -7900.02, flows[0].Amount)

	for _, f := range flows[1 : len(flows)-1] {
		assert.InDelta(t, 148.5, f.Amount, 1e-9) // 5400 * 2.75 / 100
	}

	last := flows[len(flows)-1]
	assert.Equal(t, date(2027, time.September, 1), last.Date)
	assert.Equal(t, 7956.00, last.Amount)
}

// TestBuildScheduleMinimumTwoFlows tests that even with zero eligible coupons
// the series still has the acquisition and redemption flows.
func TestBuildScheduleMinimumTwoFlows(t *testing.T) {
	bond := domain.SGB{
		Symbol:       "SGBSEP24",
		LTP:          7000,
		IssuePrice:   5000,
		InterestRate: 2.5,
		MaturityDate: date(2024, time.September, 1),
	}

	flows := BuildSchedule(bond, 7100, date(2024, time.September, 1))
	require.Len(t, flows, 2)
	assert.Negative(t, flows[0].Amount)
	assert.Positive(t, flows[1].Amount)
}

// TestEngineComputeXIRR tests the end-to-end worked example.
func TestEngineComputeXIRR(t *testing.T) {
	engine := New(zerolog.Nop())
	bond := domain.SGB{
		Symbol:       "SGBSEP27",
		LTP:          7900.02,
		IssuePrice:   5400,
		InterestRate: 2.75,
		MaturityDate: date(2027, time.September, 1),
	}

	got := engine.ComputeXIRR(bond, 7956.00, date(2024, time.January, 15))
	assert.Greater(t, got, 2.0)
	assert.Less(t, got, 8.0)
	// Rounded to 3 decimal places.
	assert.InDelta(t, got, math.Round(got*1000)/1000, 1e-12)
}

// TestEngineZeroSentinel tests the non-convergence path: a bond evaluated on
// its own maturity date has a rootless two-flow series.
func TestEngineZeroSentinel(t *testing.T) {
	engine := New(zerolog.Nop())
	bond := domain.SGB{
		Symbol:       "SGBSEP24",
		LTP:          7000,
		IssuePrice:   5000,
		InterestRate: 2.5,
		MaturityDate: date(2024, time.September, 1),
	}

	got := engine.ComputeXIRR(bond, 7100, date(2024, time.September, 1))
	assert.Equal(t, 0.0, got)
}
