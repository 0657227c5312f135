// Package scraper acquires live SGB prices and the reference gold price from
// their third-party sites through a real browser. Both sites are unreliable;
// every fetch goes through a bounded retry loop and a run-scoped cache.
//
// The boundary is deliberately narrow — raw text tokens in, typed records
// out — so the browser implementation can be swapped without touching the
// valuation engine.
package scraper

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/domain"
	"github.com/aristath/sgbadvisor/internal/scrips"
)

const (
	nseURL = "https://www.nseindia.com/market-data/sovereign-gold-bond"

	// The NSE page frequently fails to load when it is the browser's first
	// navigation. Loading the exchange's home page first works around it.
	nseWarmupURL = "https://www.nseindia.com"

	// The data table is rendered client-side after page load; column 1 is
	// the symbol, column 7 the last traded price, column 11 the volume.
	nseNameSelector   = "#sgbTable > tbody > tr > td:nth-child(1)"
	nsePriceSelector  = "#sgbTable > tbody > tr > td:nth-child(7)"
	nseVolumeSelector = "#sgbTable > tbody > tr > td:nth-child(11)"

	symbolPrefix = "SGB"

	cacheKeyListing = "nse:listing"
)

// NSEClient fetches the SGB listing from the NSE market-data page.
type NSEClient struct {
	cfg      BrowserConfig
	registry *scrips.Registry
	cache    *Cache
	log      zerolog.Logger
}

// NewNSEClient creates an NSE listing client.
func NewNSEClient(cfg BrowserConfig, registry *scrips.Registry, cache *Cache, log zerolog.Logger) *NSEClient {
	return &NSEClient{
		cfg:      cfg,
		registry: registry,
		cache:    cache,
		log:      log.With().Str("client", "nse").Logger(),
	}
}

// ListBonds returns every SGB currently trading on NSE, joined with its
// issue terms. The first successful result is memoized for the rest of the
// run. Exhausting the retry budget returns a *FetchExhaustedError.
func (c *NSEClient) ListBonds() ([]domain.SGB, error) {
	if v, ok := c.cache.get(cacheKeyListing); ok {
		return v.([]domain.SGB), nil
	}

	bonds, err := fetchWithRetry(c.log, nseURL, DefaultMaxAttempts, c.fetchOnce, nil)
	if err != nil {
		return nil, err
	}

	c.cache.set(cacheKeyListing, bonds)
	c.log.Info().Int("bonds", len(bonds)).Msg("Fetched SGB listing from NSE")
	return bonds, nil
}

// fetchOnce runs one full attempt: fresh browser, navigate, bounded wait for
// the table, extract and join the rows.
func (c *NSEClient) fetchOnce(attempt int) ([]domain.SGB, error) {
	s, err := newSession(c.cfg)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if err := s.stripHeadlessUserAgent(); err != nil {
		c.log.Warn().Err(err).Msg("Could not adjust user agent")
	}

	c.log.Info().Str("url", nseURL).Int("attempt", attempt).Msg("Fetching NSE SGB page")

	// Warm-up navigation; a failure here is irrelevant if the real page loads.
	_ = s.navigate(nseWarmupURL, c.cfg.NavigationTimeout)

	if err := s.navigate(nseURL, c.cfg.SelectorTimeout); err != nil {
		return nil, err
	}
	if err := s.waitVisible(nsePriceSelector, c.cfg.SelectorTimeout); err != nil {
		return nil, err
	}

	names, err := s.texts(nseNameSelector)
	if err != nil {
		return nil, err
	}
	prices, err := s.texts(nsePriceSelector)
	if err != nil {
		return nil, err
	}
	volumes, err := s.texts(nseVolumeSelector)
	if err != nil {
		return nil, err
	}

	return c.joinRows(names, prices, volumes), nil
}

// joinRows filters the raw table tokens and joins them against the scrips
// registry. A row qualifies only with the expected symbol prefix, a
// non-empty price and a strictly positive volume — zero or dash volume means
// the bond is not trading and must not be valued. A row whose symbol is
// missing from the registry is logged and skipped, never fatal.
func (c *NSEClient) joinRows(names, prices, volumes []string) []domain.SGB {
	n := len(names)
	if len(prices) < n {
		n = len(prices)
	}
	if len(volumes) < n {
		n = len(volumes)
	}

	var bonds []domain.SGB
	for i := 0; i < n; i++ {
		name := strings.TrimSpace(names[i])
		price := strings.TrimSpace(prices[i])
		volume := strings.TrimSpace(volumes[i])

		if !strings.HasPrefix(name, symbolPrefix) || price == "" || volume == "" || volume == "-" {
			continue
		}

		vol, err := strconv.ParseInt(stripSeparators(volume), 10, 64)
		if err != nil {
			c.log.Warn().Str("symbol", name).Str("volume", volume).Msg("Skipping row with unparseable volume")
			continue
		}
		if vol <= 0 {
			continue
		}

		ltp, err := parsePrice(price)
		if err != nil {
			c.log.Warn().Str("symbol", name).Str("price", price).Msg("Skipping row with unparseable price")
			continue
		}

		row, ok := c.registry.Lookup(name)
		if !ok {
			c.log.Warn().Str("symbol", name).Msg("Symbol not in scrips table, skipping")
			continue
		}

		bonds = append(bonds, domain.SGB{
			Symbol:       row.SymbolNSE,
			BSESymbol:    row.SymbolBSE,
			LTP:          ltp,
			IssuePrice:   row.IssuePrice,
			InterestRate: row.InterestRate,
			MaturityDate: row.MaturityDate,
		})
	}
	return bonds
}

// stripSeparators removes thousands separators and surrounding noise from a
// numeric token.
func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	return strings.TrimSpace(s)
}

// parsePrice parses a scraped price token ("7,900.02", "₹ 7956.00").
func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(stripSeparators(s), 64)
}
