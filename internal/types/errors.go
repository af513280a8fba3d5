package types

import (
	"errors"
	"fmt"
)

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// UnsupportedFormatError is returned when a file's format is not recognized
// or not supported by the parser that was asked to read it.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Severity classifies how seriously a diagnostic should be taken.
//
// Parsers never abort on a Warning or Info; a Critical diagnostic means the
// block that produced it was skipped, but the file as a whole is still
// usable.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityCritical:
		return "critical"
	default:
		return "warning"
	}
}

// Warning represents a non-fatal issue encountered during parsing.
//
// Warnings indicate problems that don't prevent metadata extraction but
// may indicate corrupted or unusual data. Examples include:
//   - Missing optional fields
//   - Invalid encoding in a tag
//   - Corrupted artwork
//   - Unknown tag keys
//
// Warnings are collected in File.Warnings during parsing.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "metadata", "technical", "chapters", "artwork"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64

	// Severity of the diagnostic. Zero value (SeverityInfo) is used by
	// call sites that predate severity tracking.
	Severity Severity
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[%s] %s (at offset %d): %s", w.Severity, w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Severity, w.Stage, w.Message)
}

// Sentinel error kinds. Format back-ends wrap one of these with fmt.Errorf's
// %w so callers can classify a failure with errors.Is regardless of which
// back-end produced it.
var (
	// ErrIo marks an underlying stream failure; always fatal for the
	// current operation.
	ErrIo = errors.New("io error")

	// ErrTruncated marks data that ended before a structure was complete.
	// Fatal for the affected block, recoverable for the file if that block
	// is optional.
	ErrTruncated = errors.New("truncated data")

	// ErrInvalidData marks a structural violation (bad signature, reserved
	// field, mismatched size). Fatal for the affected tag.
	ErrInvalidData = errors.New("invalid data")

	// ErrUnsupportedVersion marks a recognized-but-unhandled format
	// version. Warning only; parsing continues with best effort.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrUnsupportedHandler marks an MP4 hdlr atom whose handler type is
	// not mdirappl. Warning only.
	ErrUnsupportedHandler = errors.New("unsupported handler")
)

// TruncatedError reports a structure that ended before it was fully readable.
type TruncatedError struct {
	What   string
	Offset int64
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %s at offset %d: need %d bytes, have %d", e.What, e.Offset, e.Need, e.Have)
}

func (e *TruncatedError) Unwrap() error { return ErrTruncated }

// InvalidDataError reports a structural violation within an otherwise
// reachable block (bad signature, reserved field, size mismatch).
type InvalidDataError struct {
	What   string
	Offset int64
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid %s at offset %d: %s", e.What, e.Offset, e.Reason)
}

func (e *InvalidDataError) Unwrap() error { return ErrInvalidData }

// ConversionError reports that a TagValue accessor could not produce the
// requested view of a value because no lossless conversion exists.
type ConversionError struct {
	FromKind string
	ToKind   string
	Reason   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %s", e.FromKind, e.ToKind, e.Reason)
}

// UnsupportedWriteError indicates write is not supported for this format.
type UnsupportedWriteError struct {
	Reason string
	Format Format
}

func (e *UnsupportedWriteError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("write not supported for %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("write not supported for %s", e.Format)
}
