// Package status defines the error kinds reported by the geometry core and
// the stable integer codes they map to at the handle boundary.
package status

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. Kinds implement error so that
// errors.Is(err, status.IndexOutOfRange) works on wrapped errors.
type Kind int

const (
	OK Kind = iota
	InvalidHandle
	InvalidDocument
	AlreadyOpen
	UnknownComponent
	UnknownComponentSegment
	UnknownProfile
	IndexOutOfRange
	ParameterOutOfRange
	InvalidParameter
	GeometryExportFailed
	InternalError
)

var kindNames = [...]string{
	OK:                      "ok",
	InvalidHandle:           "invalid handle",
	InvalidDocument:         "invalid document",
	AlreadyOpen:             "already open",
	UnknownComponent:        "unknown component",
	UnknownComponentSegment: "unknown component segment",
	UnknownProfile:          "unknown profile",
	IndexOutOfRange:         "index out of range",
	ParameterOutOfRange:     "parameter out of range",
	InvalidParameter:        "invalid parameter",
	GeometryExportFailed:    "geometry export failed",
	InternalError:           "internal error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error lets a bare Kind be returned or matched as an error.
func (k Kind) Error() string {
	return k.String()
}

// Code returns the stable status code exposed across the handle boundary.
// Zero means success.
func (k Kind) Code() int {
	return int(k)
}

// Error is a kind-tagged failure carrying the operation name and the
// identifiers needed to diagnose it.
type Error struct {
	Kind  Kind
	Op    string // operation, e.g. "wing.EvaluatePoint"
	UID   string // component/segment/profile UID, when known
	Stage string // export stage, when relevant
	Err   error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.UID != "" {
		fmt.Fprintf(&b, " (uid %s)", e.UID)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " [stage %s]", e.Stage)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an error of the given kind with a formatted cause.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind and op. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// From is Wrap for a known non-nil err, returning the concrete type so that
// identifiers can be attached.
func From(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithUID returns a copy of e carrying uid.
func (e *Error) WithUID(uid string) *Error {
	c := *e
	c.UID = uid
	return &c
}

// WithStage returns a copy of e carrying stage.
func (e *Error) WithStage(stage string) *Error {
	c := *e
	c.Stage = stage
	return &c
}

// Annotate prefixes op onto an existing kind-tagged error, keeping its kind.
// Errors without a kind become InternalError.
func Annotate(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		c := *se
		if c.Op == "" {
			c.Op = op
		} else {
			c.Op = op + ": " + c.Op
		}
		return &c
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf reports the kind of err. Untagged errors are InternalError,
// nil is OK.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return InternalError
}

// Code maps err to its stable status code.
func Code(err error) int {
	return KindOf(err).Code()
}
