// Package advisor composes scraping and valuation into the ranked
// recommendation list handed to the notifiers.
package advisor

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/domain"
)

// BondLister supplies the SGBs currently trading, joined with their issue
// terms.
type BondLister interface {
	ListBonds() ([]domain.SGB, error)
}

// GoldPricer supplies the reference gold price used as the redemption value.
type GoldPricer interface {
	GoldPrice() (float64, error)
}

// Valuer computes one bond's annualized yield in percent.
type Valuer interface {
	ComputeXIRR(bond domain.SGB, goldPrice float64, evalDate time.Time) float64
}

// Service is the ranking pipeline.
type Service struct {
	bonds  BondLister
	gold   GoldPricer
	engine Valuer
	now    func() time.Time
	log    zerolog.Logger
}

// New creates the pipeline service.
func New(bonds BondLister, gold GoldPricer, engine Valuer, log zerolog.Logger) *Service {
	return &Service{
		bonds:  bonds,
		gold:   gold,
		engine: engine,
		now:    time.Now,
		log:    log.With().Str("component", "advisor").Logger(),
	}
}

// Run executes one full pipeline pass, strictly sequentially: the SGB
// listing fetch, then the gold price fetch, then valuation of each bond,
// then a stable sort descending by yield (ties keep fetch order).
//
// An empty ranked list is a valid result — the fetch succeeded but nothing
// had positive trading volume. A fetch failure aborts the run with no
// partial result.
func (s *Service) Run() (*domain.Result, error) {
	bonds, err := s.bonds.ListBonds()
	if err != nil {
		return nil, fmt.Errorf("SGB listing fetch failed: %w", err)
	}

	goldPrice, err := s.gold.GoldPrice()
	if err != nil {
		return nil, fmt.Errorf("gold price fetch failed: %w", err)
	}

	evalDate := s.now()

	ranked := make([]domain.Recommendation, 0, len(bonds))
	for _, bond := range bonds {
		ranked = append(ranked, domain.Recommendation{
			SGB:  bond,
			XIRR: s.engine.ComputeXIRR(bond, goldPrice, evalDate),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].XIRR > ranked[j].XIRR
	})

	if len(ranked) == 0 {
		s.log.Info().Msg("Fetch succeeded but no SGB qualified for ranking")
	} else {
		s.log.Info().
			Str("top", ranked[0].Symbol).
			Float64("xirr", ranked[0].XIRR).
			Int("bonds", len(ranked)).
			Msg("Ranked SGBs by XIRR")
	}

	return &domain.Result{
		Bonds:       ranked,
		GoldPrice:   goldPrice,
		GeneratedAt: evalDate,
	}, nil
}
