/*
Copyright 2025 The Timescale Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package tserrors provides the error type used across the planner
// extension. Every error carries a Code so callers can distinguish user
// mistakes (bad arguments in a query) from catalog inconsistencies and
// internal invariant violations without string matching.
package tserrors

import (
	"errors"
	"fmt"
	"io"
)

// Code classifies an error for the caller.
type Code int

const (
	// CodeUnknown is the code of errors that did not originate here.
	CodeUnknown Code = iota

	// CodeInvalidArgument means the query contains an argument this
	// subsystem cannot plan, e.g. a malformed chunks_in call.
	CodeInvalidArgument

	// CodeNotFound means a catalog entity referenced by the query does
	// not exist.
	CodeNotFound

	// CodeFailedPrecondition means planner state prevents the requested
	// expansion, e.g. unexpected row-locking on the target relation.
	CodeFailedPrecondition

	// CodeUnimplemented means the query uses a shape this subsystem
	// recognizes but does not support.
	CodeUnimplemented

	// CodeInternal means an invariant this subsystem relies on was
	// violated. These always indicate a bug.
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	case CodeUnimplemented:
		return "UNIMPLEMENTED"
	case CodeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

type fundamental struct {
	code Code
	msg  string
}

func (f *fundamental) Error() string { return f.msg }

func (f *fundamental) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s: %s", f.code, f.msg)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, f.msg)
	case 'q':
		fmt.Fprintf(s, "%q", f.msg)
	}
}

// New returns an error with the given code and message.
func New(code Code, msg string) error {
	return &fundamental{code: code, msg: msg}
}

// Errorf formats according to a format specifier and returns the string
// as an error carrying the given code.
func Errorf(code Code, format string, args ...any) error {
	return &fundamental{code: code, msg: fmt.Sprintf(format, args...)}
}

type wrapped struct {
	cause error
	msg   string
}

func (w *wrapped) Error() string { return w.msg + ": " + w.cause.Error() }
func (w *wrapped) Unwrap() error { return w.cause }

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{cause: err, msg: msg}
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{cause: err, msg: fmt.Sprintf(format, args...)}
}

// ErrCode returns the code carried by err or the nearest wrapped cause.
// Errors created outside this package report CodeUnknown.
func ErrCode(err error) Code {
	for err != nil {
		if f, ok := err.(*fundamental); ok {
			return f.code
		}
		err = errors.Unwrap(err)
	}
	return CodeUnknown
}
