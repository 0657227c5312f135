// Package domain holds the core entities of the advisor.
// The domain layer is pure: no scraping, browser or notification dependencies.
package domain

import (
	"fmt"
	"time"
)

// SGB is one tradable Sovereign Gold Bond: the join of a scraped NSE listing
// row with its static issue terms from the scrips registry.
//
// An SGB carries no yield field. Valuation produces a Recommendation instead,
// so a half-valued entity is never visible to any component.
type SGB struct {
	Symbol       string    // Ticker on the National Stock Exchange
	BSESymbol    string    // Ticker on the Bombay Stock Exchange
	LTP          float64   // Last traded price on NSE
	IssuePrice   float64   // Price at which RBI issued the bond; interest accrues on this
	InterestRate float64   // Coupon rate in percent, paid on IssuePrice (2.5 or 2.75)
	MaturityDate time.Time // Date the RBI redeems the bond
}

// String implements fmt.Stringer.
func (s SGB) String() string {
	return fmt.Sprintf("%s - Issued at ₹%v - LTP ₹%v - %v%% interest - %s",
		s.Symbol, s.IssuePrice, s.LTP, s.InterestRate, s.MaturityDate.Format("2006-01-02"))
}

// Recommendation is a fully valued bond. XIRR is the annualized yield in
// percent, rounded to 3 decimal places; 0 means the solver did not converge
// for this bond.
type Recommendation struct {
	SGB
	XIRR float64
}

// Result is the output contract handed to notifiers: the ranked bond list
// plus the reference gold price and the evaluation timestamp.
//
// An empty Bonds slice is a valid outcome (nothing qualified for trading
// today) and must be rendered as "no recommendations", not treated as a
// failure.
type Result struct {
	Bonds       []Recommendation
	GoldPrice   float64
	GeneratedAt time.Time
}
