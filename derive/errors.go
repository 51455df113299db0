package derive

import (
	"errors"
	"fmt"
)

var (
	// ErrDerivationMismatch is wrapped by every DerivationMismatchError.
	ErrDerivationMismatch = errors.New("derive: host and shader layouts diverge")

	// ErrNondeterministic is returned when the same definition derived
	// twice produces different output.
	ErrNondeterministic = errors.New("derive: derivation is not deterministic")

	// ErrValidatorUnavailable is returned by a validator that cannot run in
	// the current environment. It is never returned for a layout mismatch.
	ErrValidatorUnavailable = errors.New("derive: validator unavailable")

	// ErrNoValidator is returned when no validator could check a unit.
	ErrNoValidator = errors.New("derive: no validator checked the derivation")

	// ErrNoField is returned by Accessor for an unknown field path.
	ErrNoField = errors.New("derive: no such field")

	// ErrFieldKind is returned by Accessor when the field kind does not
	// match the requested access.
	ErrFieldKind = errors.New("derive: field kind mismatch")
)

// DerivationMismatchError reports a field whose offset or size computed on
// the host differs from what a shader compiler computes for the emitted
// declaration. It always aborts the build.
type DerivationMismatchError struct {
	Validator string
	Struct    string
	Field     string // empty for struct-level mismatches
	What      string // "offset", "size", "stride", "members", "name", "missing"
	Want, Got uint32
	Detail    string
}

func (e *DerivationMismatchError) Error() string {
	where := e.Struct
	if e.Field != "" {
		where += "." + e.Field
	}
	if e.Detail != "" {
		return fmt.Sprintf("derive: %s: %s %s mismatch: %s", e.Validator, where, e.What, e.Detail)
	}
	return fmt.Sprintf("derive: %s: %s %s mismatch: host %d, shader %d", e.Validator, where, e.What, e.Want, e.Got)
}

func (e *DerivationMismatchError) Unwrap() error { return ErrDerivationMismatch }
