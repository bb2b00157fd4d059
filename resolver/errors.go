package resolver

import "errors"

var (
	// ErrNoCDN is returned when the patch service's CDN table has no usable entry.
	ErrNoCDN = errors.New("resolver: no usable CDN entry")
	// ErrNoVersion is returned when the patch service's version table has no entry for the region.
	ErrNoVersion = errors.New("resolver: no version entry for region")
	// ErrNoEncodingHash is returned when buildConfig has no encoding field.
	ErrNoEncodingHash = errors.New("resolver: build config has no encoding hash")
	// ErrEncodingTableNotLoaded names a lookup made before the encoding table
	// is loaded. No lookup returns it: candidateEKeys treats a missing table
	// like a missing entry and falls through to the CKey itself.
	ErrEncodingTableNotLoaded = errors.New("resolver: encoding table not loaded")
	// ErrRootNotAvailable names a build whose buildConfig has no root field.
	// ByPath does not return it: with no manifest loaded, ByPath returns nil.
	ErrRootNotAvailable = errors.New("resolver: root manifest not available")
	// ErrNotFound is returned by GetFile when no candidate EKey resolves through the index.
	ErrNotFound = errors.New("resolver: content key not found")
)
