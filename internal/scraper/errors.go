package scraper

import (
	"errors"
	"fmt"
)

// ErrSiteNotLoaded marks a transient failure: the page or its data table did
// not render within the bounded wait. It is the only error kind the retry
// loop retries; anything else is treated as fatal for the run.
var ErrSiteNotLoaded = errors.New("site not loaded")

// FetchExhaustedError is returned after every attempt (and the fallback,
// where one is configured) has failed. It is fatal: no caller retries it and
// no partial data is substituted.
type FetchExhaustedError struct {
	Source   string
	Attempts int
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("could not fetch data from %s - tried %d time(s)", e.Source, e.Attempts)
}
