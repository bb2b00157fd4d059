package archiveindex

import "errors"

// ErrEmpty is returned when the input is empty. A non-empty input shorter
// than one page is not an error: Parse returns no entries for it.
var ErrEmpty = errors.New("archiveindex: empty input")
