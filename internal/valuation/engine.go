// Package valuation estimates the realized yield of holding an SGB to
// maturity, assuming redemption at the current reference gold price.
package valuation

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/domain"
	"github.com/aristath/sgbadvisor/pkg/formulas"
)

// Engine computes per-bond yields.
type Engine struct {
	log zerolog.Logger
}

// New creates a valuation engine.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "valuation").Logger()}
}

// ComputeXIRR returns the annualized yield in percent, rounded to 3 decimal
// places, of buying the bond at its last traded price on evalDate and holding
// it to maturity.
//
// A series the solver cannot root (degenerate sign pattern) yields the 0
// sentinel and an error-level log; the caller's batch continues.
func (e *Engine) ComputeXIRR(bond domain.SGB, goldPrice float64, evalDate time.Time) float64 {
	flows := BuildSchedule(bond, goldPrice, evalDate)

	rate, ok := formulas.XIRR(flows)
	if !ok {
		e.log.Error().
			Str("symbol", bond.Symbol).
			Int("flows", len(flows)).
			Msg("Could not calculate XIRR")
		e.log.Debug().
			Str("symbol", bond.Symbol).
			Interface("schedule", flows).
			Msg("Cash-flow dump for failed XIRR")
		return 0
	}

	return math.Round(rate*100*1000) / 1000
}
