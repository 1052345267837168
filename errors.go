package astroeph

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine errors.
type Kind int

const (
	// KindNotAvailable: the model has no data for this body or time. The
	// engine falls back to the next model.
	KindNotAvailable Kind = iota + 1
	// KindOutOfRange: the time lies outside the model's supported interval.
	// The engine falls back only if the next model covers the time.
	KindOutOfRange
	// KindConfig: an invalid flag combination or setting. Never retried.
	KindConfig
	// KindIO: a data file is unreadable or corrupt. Never retried.
	KindIO
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNotAvailable:
		return "not_available"
	case KindOutOfRange:
		return "out_of_range"
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrNotAvailable = errors.New("ephemeris data not available")
	ErrOutOfRange   = errors.New("date outside ephemeris range")
	ErrConfig       = errors.New("invalid configuration")
	ErrIO           = errors.New("ephemeris file unreadable")
)

// Error is returned by every failing engine operation.
type Error struct {
	Kind  Kind
	Op    string // operation, e.g. "calc"
	Body  Body   // -1 when not body specific
	Model Model  // 0 when not model specific
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("astroeph: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	if e.Body >= 0 {
		b.WriteString(e.Body.String())
		b.WriteString(" ")
	}
	if e.Model != 0 {
		fmt.Fprintf(&b, "(%s) ", e.Model)
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotAvailable:
		return e.Kind == KindNotAvailable
	case ErrOutOfRange:
		return e.Kind == KindOutOfRange
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

func newError(kind Kind, op string, body Body, model Model, err error) *Error {
	return &Error{Kind: kind, Op: op, Body: body, Model: model, Err: err}
}

// configError reports an invalid request.
func configError(op string, body Body, format string, args ...any) *Error {
	return newError(KindConfig, op, body, 0, fmt.Errorf(format, args...))
}

// kindOf returns the kind of err, treating foreign errors as I/O failures.
func kindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindIO
}

// withBody stamps body and op onto a provider error.
func withBody(err error, op string, body Body) error {
	var ee *Error
	if errors.As(err, &ee) {
		out := *ee
		out.Op, out.Body = op, body
		return &out
	}
	return newError(KindIO, op, body, 0, err)
}
