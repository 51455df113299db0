package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinition is wrapped by every DefinitionError.
	ErrDefinition = errors.New("layout: invalid definition")

	// ErrNameConflict is returned when a catalog already holds a different
	// definition under the same name.
	ErrNameConflict = errors.New("layout: name already defined with a different layout")

	// ErrUnknownStruct is returned when a reference names a struct the
	// catalog does not hold.
	ErrUnknownStruct = errors.New("layout: unknown struct")
)

// DefinitionError reports a definition that violates the layout convention.
// It is raised while deriving, before any artifact is produced.
type DefinitionError struct {
	Struct string
	Field  string // empty when the error concerns the whole struct
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("layout: definition %s: %s", e.Struct, e.Reason)
	}
	return fmt.Sprintf("layout: definition %s.%s: %s", e.Struct, e.Field, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return ErrDefinition }

func definitionError(s, f, format string, args ...any) error {
	return &DefinitionError{Struct: s, Field: f, Reason: fmt.Sprintf(format, args...)}
}
