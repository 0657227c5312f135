// Package formulas contains the financial math used by the advisor.
package formulas

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// CashFlow is one dated amount in an irregular cash-flow series.
// Outflows are negative, inflows positive.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// daysPerYear is the day-count convention used by the XIRR discount factor.
const daysPerYear = 365.0

// Newton-Raphson / bisection parameters.
const (
	maxNewtonIterations    = 100
	maxBisectionIterations = 200
	convergenceTolerance   = 1e-9
	// Bracket scanned for a sign change when Newton fails. Rates below -100%
	// are meaningless for a bond; 10 (=1000%) comfortably covers the top end.
	bracketLow  = -0.999999
	bracketHigh = 10.0
)

// yearFractions returns each flow's distance in years from the earliest flow
// date, using actual-day / 365 day counting.
func yearFractions(flows []CashFlow) []float64 {
	earliest := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(earliest) {
			earliest = f.Date
		}
	}

	fractions := make([]float64, len(flows))
	for i, f := range flows {
		fractions[i] = f.Date.Sub(earliest).Hours() / 24 / daysPerYear
	}
	return fractions
}

// NPV computes the net present value of the series at the given annual rate.
//
// Formula: NPV(r) = Σ amount_i / (1+r)^t_i  where t_i is the flow's distance
// in years from the earliest flow date.
func NPV(rate float64, flows []CashFlow) float64 {
	if len(flows) == 0 {
		return 0
	}

	fractions := yearFractions(flows)
	terms := make([]float64, len(flows))
	for i, f := range flows {
		terms[i] = f.Amount / math.Pow(1+rate, fractions[i])
	}
	return floats.Sum(terms)
}

// npvDerivative computes d(NPV)/d(rate) for Newton-Raphson.
func npvDerivative(rate float64, flows []CashFlow, fractions []float64) float64 {
	terms := make([]float64, len(flows))
	for i, f := range flows {
		terms[i] = -fractions[i] * f.Amount / math.Pow(1+rate, fractions[i]+1)
	}
	return floats.Sum(terms)
}

// XIRR solves for the annual rate that zeroes the NPV of an irregular dated
// cash-flow series. Returns the rate as a decimal (0.10 = 10%) and whether a
// root was found.
//
// The series must contain at least one inflow and one outflow; otherwise NPV
// has no root and ok is false. Newton-Raphson from a 10% guess is tried
// first, with a bracketing scan plus bisection as the fallback for series
// where Newton diverges.
func XIRR(flows []CashFlow) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}

	hasPositive, hasNegative := false, false
	for _, f := range flows {
		if f.Amount > 0 {
			hasPositive = true
		}
		if f.Amount < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0, false
	}

	fractions := yearFractions(flows)

	if rate, ok := newton(flows, fractions); ok && math.Abs(NPV(rate, flows)) < 1e-6 {
		return rate, true
	}
	return bisect(flows)
}

func newton(flows []CashFlow, fractions []float64) (float64, bool) {
	rate := 0.1
	for i := 0; i < maxNewtonIterations; i++ {
		value := NPV(rate, flows)
		derivative := npvDerivative(rate, flows, fractions)
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, false
		}

		next := rate - value/derivative
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			// Stepped outside the domain of (1+r)^t.
			return 0, false
		}

		if math.Abs(next-rate) < convergenceTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

// bisect scans the bracket for a sign change of NPV and bisects it.
func bisect(flows []CashFlow) (float64, bool) {
	const scanSteps = 1000

	lo, hi := bracketLow, bracketHigh
	loValue := NPV(lo, flows)

	step := (hi - lo) / scanSteps
	found := false
	for i := 1; i <= scanSteps; i++ {
		x := lo + float64(i)*step
		value := NPV(x, flows)
		if loValue*value <= 0 && !math.IsNaN(value) {
			hi = x
			found = true
			break
		}
		lo = x
		loValue = value
	}
	if !found {
		return 0, false
	}

	for i := 0; i < maxBisectionIterations; i++ {
		mid := (lo + hi) / 2
		value := NPV(mid, flows)
		if math.Abs(value) < convergenceTolerance || (hi-lo)/2 < convergenceTolerance {
			return mid, true
		}
		if loValue*value < 0 {
			hi = mid
		} else {
			lo = mid
			loValue = value
		}
	}
	return (lo + hi) / 2, true
}
