// Package errs defines the sentinel errors shared by all thejoker packages.
//
// Errors are returned wrapped with additional context; match them with errors.Is.
package errs

import "errors"

// Sample container errors.
var (
	// ErrInvalidKey is returned when a parameter name is outside the closed set
	// {P, M0, e, omega, jitter, K, v0}.
	ErrInvalidKey = errors.New("invalid sample key")
	// ErrShapeMismatch is returned when a value's shape disagrees with the
	// shape already established by the container.
	ErrShapeMismatch = errors.New("shape of new samples must match those already stored")
	// ErrNoSamplesStored is returned by Size and Shape before any key was set.
	ErrNoSamplesStored = errors.New("no samples stored")
	// ErrIncompatibleUnit is returned when a quantity's unit has the wrong physical dimension.
	ErrIncompatibleUnit = errors.New("incompatible unit")
	// ErrMissingKey is returned when an operation needs a key that was never set.
	ErrMissingKey = errors.New("required sample key not set")
	// ErrIndexOutOfRange is returned for a sample index or slice bound outside the stored range.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Likelihood errors.
var (
	// ErrSingularMatrix is returned when the linear system cannot be solved
	// because the precision matrix is exactly singular or the design is empty.
	ErrSingularMatrix = errors.New("singular linear system")
	// ErrInvalidParameters is returned for a nonlinear parameter vector of the wrong length.
	ErrInvalidParameters = errors.New("invalid nonlinear parameter vector")
	// ErrNonPhysical is returned by the orbit physics for non-physical inputs.
	ErrNonPhysical = errors.New("non-physical orbital elements")
	// ErrInvalidNoise is returned when an effective inverse variance is not strictly positive.
	ErrInvalidNoise = errors.New("inverse variance must be strictly positive")
	// ErrInvalidData is returned when an observation set is empty or inconsistent.
	ErrInvalidData = errors.New("invalid observation data")
)

// Storage errors.
var (
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrAttrNotFound       = errors.New("attribute not found")
	ErrInvalidDataset     = errors.New("invalid dataset")
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	ErrChecksumMismatch   = errors.New("dataset checksum mismatch")
)
