package wallapop

import "fmt"

// ErrNoListingData reports that a whole browser session produced zero
// recognizable listing responses — endpoint/structure change, a block
// (403/429) or a captcha page instead of JSON. Only surfaced as an error in
// strict mode; otherwise the caller receives whatever was collected.
type ErrNoListingData struct {
	Keyword string
}

func (e ErrNoListingData) Error() string {
	return fmt.Sprintf("no listing data detected for %q: possible endpoint change, block or non-JSON response", e.Keyword)
}

// ErrNavigation reports that the search page could not be loaded at all,
// even by the best-effort fallback.
type ErrNavigation struct {
	URL string
	Err error
}

func (e ErrNavigation) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e ErrNavigation) Unwrap() error {
	return e.Err
}
