package tactcdn

import (
	"errors"
	"fmt"
)

// ErrNoCDN and ErrNoVersion name an empty CDN table and a version table with
// no row for the requested region. Client does not return them: CDNs and
// Versions return the parsed table whatever its rows.
var (
	// ErrNoCDN names a CDN table for a product with no rows.
	ErrNoCDN = errors.New("tactcdn: no CDN entries for product")
	// ErrNoVersion names a version table with no row for the requested
	// region.
	ErrNoVersion = errors.New("tactcdn: no version entry for region")
)

// FetchFailedError is returned when an HTTP fetch does not succeed after
// retrying, carrying the URL and status for diagnosis.
type FetchFailedError struct {
	URL    string
	Status int
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("tactcdn: fetch failed for %s: status %d", e.URL, e.Status)
}
