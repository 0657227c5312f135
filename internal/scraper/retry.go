package scraper

import (
	"errors"

	"github.com/rs/zerolog"
)

// DefaultMaxAttempts is the retry ceiling per source. The NSE site fails to
// load often enough that fewer attempts regularly lose the whole run.
const DefaultMaxAttempts = 10

// attemptFunc runs one fetch attempt. The attempt number is passed for
// logging only.
type attemptFunc[T any] func(attempt int) (T, error)

// fetchWithRetry runs primary up to maxAttempts times with no backoff; each
// attempt is fully independent. Only ErrSiteNotLoaded failures are retried —
// any other error is fatal immediately. When a fallback is configured, it is
// tried once right after each transient primary failure, before the next
// primary attempt.
//
// Exhausting every attempt returns a *FetchExhaustedError.
func fetchWithRetry[T any](log zerolog.Logger, source string, maxAttempts int, primary, fallback attemptFunc[T]) (T, error) {
	var zero T

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := primary(attempt)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrSiteNotLoaded) {
			return zero, err
		}
		log.Warn().
			Err(err).
			Str("source", source).
			Int("attempt", attempt).
			Msg("Site not loaded")

		if fallback == nil {
			continue
		}

		result, err = fallback(attempt)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrSiteNotLoaded) {
			return zero, err
		}
		log.Warn().
			Err(err).
			Str("source", source).
			Int("attempt", attempt).
			Msg("Fallback source not loaded either")
	}

	return zero, &FetchExhaustedError{Source: source, Attempts: maxAttempts}
}
