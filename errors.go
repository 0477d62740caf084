package route

import "fmt"

// InvalidComponentError is returned when a path or query component fails
// tokenization (§4.1): an unescaped "$" that is not followed by a digit
// run or an identifier, two adjacent parameter tokens with no literal
// between them, or trailing input the tokenizer could not consume.
type InvalidComponentError struct {
	Component string
	cause     error
}

func (e *InvalidComponentError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("route: invalid url component %q: %v", e.Component, e.cause)
	}
	return fmt.Sprintf("route: invalid url component %q", e.Component)
}

func (e *InvalidComponentError) Unwrap() error { return e.cause }

// UnknownParameterError is returned when a named parameter does not match
// any positional name on the handler descriptor and the descriptor has no
// variadic named sink.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("route: unknown parameter name %q", e.Name)
}

// DuplicateParameterError is returned when the same positional index or
// named key is bound twice within one pattern.
type DuplicateParameterError struct {
	Positional bool
	Index      int
	Name       string
}

func (e *DuplicateParameterError) Error() string {
	if e.Positional {
		return fmt.Sprintf("route: parameter index %d already bound in this pattern", e.Index)
	}
	return fmt.Sprintf("route: parameter name %q already bound in this pattern", e.Name)
}

// UndefinedPathParameterError is returned when the handler has a mandatory
// positional parameter (no default) that the pattern never binds, or when
// bound positional indices leave a hole with no default to fill it.
type UndefinedPathParameterError struct {
	Name  string
	Index int
}

func (e *UndefinedPathParameterError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("route: undefined path parameter: %s", e.Name)
	}
	return fmt.Sprintf("route: undefined path parameter: %d", e.Index+1)
}

// DuplicatePortError is returned when both a "host:port" string and an
// explicit port override are supplied to register.
type DuplicatePortError struct{}

func (e *DuplicatePortError) Error() string { return "route: duplicate port specification" }

// BadHostError is returned when a supplied host cannot be parsed, e.g. its
// port suffix is not an integer.
type BadHostError struct {
	Host  string
	cause error
}

func (e *BadHostError) Error() string {
	return fmt.Sprintf("route: bad host %q: %v", e.Host, e.cause)
}

func (e *BadHostError) Unwrap() error { return e.cause }

// MisplacedStarError is returned when "$*" appears anywhere other than as
// the final path component, or anywhere within the query part.
type MisplacedStarError struct {
	InQuery bool
}

func (e *MisplacedStarError) Error() string {
	if e.InQuery {
		return `route: "$*" is not allowed in the query part of a url`
	}
	return `route: "$*" must be the last element of the url path`
}

// NoVariadicError is returned when "$*" is used in a pattern bound to a
// handler descriptor that has no variadic positional sink.
type NoVariadicError struct {
	Handler interface{}
}

func (e *NoVariadicError) Error() string {
	return "route: handler does not accept an arbitrary trailing argument list"
}

// PathError is returned by Build when the supplied parameters cannot fill
// the pattern: a required value is missing (nil or NoDefault), or values
// were supplied that the pattern never references.
type PathError struct {
	Reason string
}

func (e *PathError) Error() string { return "route: " + e.Reason }

func pathErrorf(format string, args ...interface{}) *PathError {
	return &PathError{Reason: fmt.Sprintf(format, args...)}
}
