package factory

import (
	"errors"
	"fmt"
)

// Kind classifies a FactoryError.
type Kind uint8

const (
	KindConfiguration Kind = iota + 1
	KindMutation
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindMutation:
		return "mutation"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// FactoryError is the error surface a factory exposes to its callers.
// Two FactoryErrors match under errors.Is when their kinds match.
type FactoryError struct {
	Kind    Kind
	Message string
}

func (e *FactoryError) Error() string {
	return "factory: " + e.Message
}

func (e *FactoryError) Is(target error) bool {
	t, ok := target.(*FactoryError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidQuantity = &FactoryError{Kind: KindConfiguration, Message: "quantity must be a positive integer"}
	ErrInvalidPatch    = &FactoryError{Kind: KindMutation, Message: "invalid patch"}
	ErrCreation        = &FactoryError{Kind: KindPersistence, Message: "error occurred during creation, check the logs for details"}

	// ErrUnsupported is returned by BackendFuncs when the requested operation has no function.
	ErrUnsupported = errors.New("factory: backend operation not supported")
)

func patchError(field string, format string, args ...any) error {
	return &FactoryError{
		Kind:    KindMutation,
		Message: fmt.Sprintf("invalid patch for %q: %s", field, fmt.Sprintf(format, args...)),
	}
}
