package sexp

import "fmt"

// Error reports a tree that does not match the shape a decoder expected.
// Tree carries the offending subtree and Context is a short label naming the
// value being decoded (e.g. "cache", "last_build_date").
type Error struct {
	Tree    Tree
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid tree for %s: %s: %s", e.Context, Format(e.Tree), e.Err.Error())
	}
	return fmt.Sprintf("invalid tree for %s: %s", e.Context, Format(e.Tree))
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Invalid reports t as an invalid tree in the given context.
func Invalid(t Tree, context string) error {
	return &Error{Tree: t, Context: context}
}

// InvalidCause is Invalid with an underlying cause attached.
func InvalidCause(t Tree, context string, err error) error {
	return &Error{Tree: t, Context: context, Err: err}
}
