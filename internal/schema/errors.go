package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Rule names the constraint a document violated.
type Rule string

const (
	MissingField      Rule = "MissingField"
	InvalidTimestamp  Rule = "InvalidTimestamp"
	InvalidNumber     Rule = "InvalidNumber"
	InvalidEnum       Rule = "InvalidEnum"
	InvalidResolution Rule = "InvalidResolution"
	OutOfRange        Rule = "OutOfRange"
	InvalidDateKey    Rule = "InvalidDateKey"
	UnrecognizedShape Rule = "UnrecognizedShape"
	InvalidType       Rule = "InvalidType"
)

var (
	ErrMissingField      = errors.New("missing field")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidEnum       = errors.New("invalid enum value")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrOutOfRange        = errors.New("value out of range")
	ErrInvalidDateKey    = errors.New("invalid date key")
	ErrUnrecognizedShape = errors.New("unrecognized shape")
	ErrInvalidType       = errors.New("invalid type")
)

var ruleErrors = map[Rule]error{
	MissingField:      ErrMissingField,
	InvalidTimestamp:  ErrInvalidTimestamp,
	InvalidNumber:     ErrInvalidNumber,
	InvalidEnum:       ErrInvalidEnum,
	InvalidResolution: ErrInvalidResolution,
	OutOfRange:        ErrOutOfRange,
	InvalidDateKey:    ErrInvalidDateKey,
	UnrecognizedShape: ErrUnrecognizedShape,
	InvalidType:       ErrInvalidType,
}

// Violation is a single failed constraint at a field path such as
// results.<key>.episodes.<guid>.listenerHistogram[3].
type Violation struct {
	Path    string `json:"path"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (v *Violation) Error() string {
	if v.Path == "" {
		return fmt.Sprintf("%s: %s", v.Rule, v.Message)
	}
	return fmt.Sprintf("%s: %s: %s", v.Path, v.Rule, v.Message)
}

// Unwrap exposes the rule's sentinel for errors.Is.
func (v *Violation) Unwrap() error {
	return ruleErrors[v.Rule]
}

// Violations is every constraint a document failed, in traversal order.
type Violations []*Violation

func (vs Violations) Error() string {
	switch len(vs) {
	case 0:
		return "no violations"
	case 1:
		return vs[0].Error()
	}
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%d violations: %s", len(vs), strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is and errors.As see each violation.
func (vs Violations) Unwrap() []error {
	errs := make([]error, len(vs))
	for i, v := range vs {
		errs[i] = v
	}
	return errs
}

// Rules lists the rule of each violation, in order.
func (vs Violations) Rules() []string {
	rules := make([]string, len(vs))
	for i, v := range vs {
		rules[i] = string(v.Rule)
	}
	return rules
}

// Find returns the first violation at path, or nil.
func (vs Violations) Find(path string) *Violation {
	for _, v := range vs {
		if v.Path == path {
			return v
		}
	}
	return nil
}
