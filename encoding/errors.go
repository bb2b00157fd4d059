package encoding

import "errors"

// ErrBadSignature is returned when the input does not begin with "EN".
var ErrBadSignature = errors.New("encoding: bad signature")

// ErrShortHeader is returned when the 22-byte fixed header doesn't fit.
var ErrShortHeader = errors.New("encoding: header too short")
