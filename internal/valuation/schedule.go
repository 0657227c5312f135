package valuation

import (
	"time"

	"github.com/aristath/sgbadvisor/internal/domain"
	"github.com/aristath/sgbadvisor/pkg/formulas"
)

// daysIn returns the number of days in (year, month).
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// couponMonths returns the bond's two annual interest-payment months: the
// maturity month and the month six calendar months away, wrapped within 1-12.
func couponMonths(maturity time.Time) (time.Month, time.Month) {
	m := maturity.Month()
	other := m + 6
	if m > 6 {
		other = m - 6
	}
	return other, m
}

// CouponDates returns the remaining interest-payment dates for a bond held
// from evalDate to maturity, in ascending order.
//
// For each year from evalDate's to maturity's and each of the two coupon
// months, the candidate date uses the maturity day-of-month clamped to the
// month's length (day 31 in a 30-day month pays on the 30th). A candidate is
// kept when evalDate < d <= maturity: the maturity date itself is included
// because the final coupon is paid together with redemption.
func CouponDates(maturity, evalDate time.Time) []time.Time {
	otherMonth, maturityMonth := couponMonths(maturity)

	var dates []time.Time
	for year := evalDate.Year(); year <= maturity.Year(); year++ {
		for _, month := range [2]time.Month{otherMonth, maturityMonth} {
			day := maturity.Day()
			if last := daysIn(year, month); day > last {
				day = last
			}
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if evalDate.Before(d) && !d.After(maturity) {
				dates = append(dates, d)
			}
		}
	}

	// The two coupon months straddle the year, so within one calendar year
	// the "other" month may come after the maturity month.
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
	return dates
}

// BuildSchedule constructs the full dated cash-flow series for buying the
// bond at its last traded price on evalDate and holding to maturity:
//
//	-LTP on evalDate, +coupon on each remaining payment date, and the
//	redemption value (the reference gold price, assumed unchanged) at
//	maturity.
//
// The series always has at least the acquisition and redemption flows.
func BuildSchedule(bond domain.SGB, goldPrice float64, evalDate time.Time) []formulas.CashFlow {
	evalDate = midnight(evalDate)
	maturity := midnight(bond.MaturityDate)

	coupon := bond.IssuePrice * bond.InterestRate / 100

	flows := make([]formulas.CashFlow, 0, 2+2*(maturity.Year()-evalDate.Year()+1))
	flows = append(flows, formulas.CashFlow{Date: evalDate, Amount: -bond.LTP})
	for _, d := range CouponDates(maturity, evalDate) {
		flows = append(flows, formulas.CashFlow{Date: d, Amount: coupon})
	}
	flows = append(flows, formulas.CashFlow{Date: maturity, Amount: goldPrice})

	return flows
}

// midnight truncates a timestamp to its calendar date in UTC.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
