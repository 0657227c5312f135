package scraper

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	// RBI redeems SGBs at the price published by IBJA.
	ibjaURL       = "https://www.ibja.co/"
	ibjaBackupURL = "https://ibjarates.com/"

	ibjaGoldSelector       = "#lblFineGold999"
	ibjaBackupGoldSelector = "#GoldRatesCompare999"

	// The IBJA site is slow rather than flaky; give it more room than NSE.
	ibjaNavigationTimeout = 100 * time.Second
	ibjaSelectorTimeout   = 50 * time.Second

	cacheKeyGold = "ibja:gold"
)

// GoldClient fetches the reference price of 999 fine gold from IBJA, falling
// back to the mirror site when the primary does not render.
type GoldClient struct {
	cfg   BrowserConfig
	cache *Cache
	log   zerolog.Logger
}

// NewGoldClient creates an IBJA gold price client.
func NewGoldClient(cfg BrowserConfig, cache *Cache, log zerolog.Logger) *GoldClient {
	return &GoldClient{
		cfg:   cfg,
		cache: cache,
		log:   log.With().Str("client", "ibja").Logger(),
	}
}

// GoldPrice returns the current IBJA 999 fine gold price per gram. The first
// successful result is memoized for the rest of the run. After each transient
// failure of the primary site the backup site is tried once before the next
// primary attempt; exhausting everything returns a *FetchExhaustedError.
func (c *GoldClient) GoldPrice() (float64, error) {
	if v, ok := c.cache.get(cacheKeyGold); ok {
		return v.(float64), nil
	}

	price, err := fetchWithRetry(c.log, ibjaURL, DefaultMaxAttempts, c.fetchPrimary, c.fetchBackup)
	if err != nil {
		return 0, err
	}

	c.cache.set(cacheKeyGold, price)
	c.log.Info().Float64("price", price).Msg("Fetched price of gold from IBJA")
	return price, nil
}

// fetchPrimary reads the price from ibja.co, which renders it after page
// load and needs an explicit wait.
func (c *GoldClient) fetchPrimary(attempt int) (float64, error) {
	s, err := newSession(c.cfg)
	if err != nil {
		return 0, err
	}
	defer s.close()

	if err := s.disableJavaScript(); err != nil {
		c.log.Warn().Err(err).Msg("Could not disable JavaScript")
	}

	c.log.Info().Str("url", ibjaURL).Int("attempt", attempt).Msg("Fetching IBJA page")

	if err := s.navigate(ibjaURL, ibjaNavigationTimeout); err != nil {
		return 0, err
	}

	token, err := s.text(ibjaGoldSelector, ibjaSelectorTimeout)
	if err != nil {
		return 0, err
	}
	return parseGoldToken(token)
}

// fetchBackup reads the price from the mirror, which serves it in the
// initial HTML; no DOM-ready wait is needed beyond finding the element.
func (c *GoldClient) fetchBackup(attempt int) (float64, error) {
	s, err := newSession(c.cfg)
	if err != nil {
		return 0, err
	}
	defer s.close()

	if err := s.disableJavaScript(); err != nil {
		c.log.Warn().Err(err).Msg("Could not disable JavaScript")
	}

	c.log.Info().Str("url", ibjaBackupURL).Int("attempt", attempt).Msg("Fetching IBJA backup page")

	if err := s.navigate(ibjaBackupURL, ibjaNavigationTimeout); err != nil {
		return 0, err
	}

	token, err := s.text(ibjaBackupGoldSelector, c.cfg.SelectorTimeout)
	if err != nil {
		return 0, err
	}
	return parseGoldToken(token)
}

// parseGoldToken parses a scraped price token like "₹ 7,956.00".
func parseGoldToken(token string) (float64, error) {
	price, err := parsePrice(token)
	if err != nil {
		return 0, fmt.Errorf("unparseable gold price %q: %w", token, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive gold price %q", token)
	}
	return price, nil
}
