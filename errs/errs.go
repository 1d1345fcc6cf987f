// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package errs defines the error taxonomy shared by every ENCS
// component. Errors are values: callers should use errors.As to
// recover an *Error and inspect its Kind rather than matching on
// message text.
package errs

import "fmt"

// Kind classifies an *Error by the taxonomy in the ENCS design.
type Kind int

const (
	// FileRead is an OS-level failure reading an input file.
	FileRead Kind = iota
	// FileWrite is an OS-level failure writing an output file.
	FileWrite
	// AlgorithmError is a failure returned by a compression codec.
	AlgorithmError
	// InvalidFormat is a container, chunk-framing, or size-check failure.
	InvalidFormat
	// IntegrityViolation is a per-chunk CRC-32 mismatch on decode.
	IntegrityViolation
	// Configuration is an invalid input, empty file, non-regular
	// file, or other runtime initialization failure.
	Configuration
	// MemoryLimit is a projected memory ceiling violation.
	MemoryLimit
	// FeatureUnavailable is a requested capability that isn't compiled in.
	FeatureUnavailable
)

func (k Kind) String() string {
	switch k {
	case FileRead:
		return "file read"
	case FileWrite:
		return "file write"
	case AlgorithmError:
		return "algorithm error"
	case InvalidFormat:
		return "invalid format"
	case IntegrityViolation:
		return "integrity violation"
	case Configuration:
		return "configuration"
	case MemoryLimit:
		return "memory limit"
	case FeatureUnavailable:
		return "feature unavailable"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every ENCS component.
// It is deliberately a struct, not a hierarchy of types: callers
// switch on Kind.
type Error struct {
	Kind  Kind
	Op    string // operation that failed, e.g. "compress_file"
	Path  string // file path, if applicable
	Codec string // codec name, if applicable (AlgorithmError)
	Err   error  // wrapped cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Codec != "" {
		msg += fmt.Sprintf(" (codec %s)", e.Codec)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind (one of
// the Err* values below), so that errors.Is(err,
// errs.ErrIntegrityViolation) idioms work.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && e.Kind == Kind(k)
}

type kindSentinel Kind

// Sentinel values usable with errors.Is, e.g.:
//
//	if errors.Is(err, errs.ErrIntegrityViolation) { ... }
const (
	ErrFileRead           = kindSentinel(FileRead)
	ErrFileWrite          = kindSentinel(FileWrite)
	ErrAlgorithmError     = kindSentinel(AlgorithmError)
	ErrInvalidFormat      = kindSentinel(InvalidFormat)
	ErrIntegrityViolation = kindSentinel(IntegrityViolation)
	ErrConfiguration      = kindSentinel(Configuration)
	ErrMemoryLimit        = kindSentinel(MemoryLimit)
	ErrFeatureUnavailable = kindSentinel(FeatureUnavailable)
)

func (k kindSentinel) Error() string { return Kind(k).String() }

// New builds an *Error of the given kind with an operation label
// and an optional wrapped cause.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPath attaches a file path to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithCodec attaches a codec name to the error.
func (e *Error) WithCodec(codec string) *Error {
	e.Codec = codec
	return e
}
