package far

import "github.com/meigma/far/internal/format"

// FormatError describes a structural problem in a container: the bytes do
// not conform to the FAR layout. Use errors.As to distinguish it from
// plain I/O failures.
type FormatError = format.FormatError

// Sentinel errors wrapped by FormatError.
var (
	// ErrNotFAR is returned when the signature or version does not match.
	ErrNotFAR = format.ErrNotFAR

	// ErrTruncated is returned when a structure extends past end of file.
	ErrTruncated = format.ErrTruncated
)
