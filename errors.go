package tagparser

import (
	"github.com/kalmuthu/tagparser/internal/types"
)

// OutOfBoundsError is an alias to types.OutOfBoundsError for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type CorruptedFileError = types.CorruptedFileError

// UnsupportedWriteError is an alias to types.UnsupportedWriteError for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type UnsupportedWriteError = types.UnsupportedWriteError

// Warning is an alias to types.Warning for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning

// Severity is an alias to types.Severity.
type Severity = types.Severity

const (
	SeverityInfo     = types.SeverityInfo
	SeverityWarning  = types.SeverityWarning
	SeverityCritical = types.SeverityCritical
)

// TruncatedError is an alias to types.TruncatedError.
type TruncatedError = types.TruncatedError

// InvalidDataError is an alias to types.InvalidDataError.
type InvalidDataError = types.InvalidDataError

// ConversionError is an alias to types.ConversionError.
type ConversionError = types.ConversionError

// Sentinel error kinds usable with errors.Is.
var (
	ErrIo                  = types.ErrIo
	ErrTruncated           = types.ErrTruncated
	ErrInvalidData         = types.ErrInvalidData
	ErrUnsupportedVersion  = types.ErrUnsupportedVersion
	ErrUnsupportedHandler  = types.ErrUnsupportedHandler
)
