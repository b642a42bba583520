package console

import (
	"errors"
	"fmt"
)

// Usage messages printed by the interpreter.
const (
	MsgClassMissing  = "** class name missing **"
	MsgClassNotExist = "** class doesn't exist **"
	MsgIDMissing     = "** instance id missing **"
	MsgNoInstance    = "** no instance found **"
	MsgAttrMissing   = "** attribute name missing **"
	MsgValueMissing  = "** value missing **"
	MsgInvalidDict   = "** invalid dictionary format **"
	msgInvalidValue  = "** invalid value for %s **"
	msgReadOnly      = "** attribute %s is read-only **"
	msgUnknownSyntax = "*** Unknown syntax: %s"
)

// ErrUsage is matched by every *UsageError.
var ErrUsage = errors.New("usage error")

// UsageError is a caller mistake: unknown class, missing argument, unknown
// id or a rejected value. It never indicates lost data.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	return e.Msg
}

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

func usage(msg string) error {
	return &UsageError{Msg: msg}
}

func usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsNotFound reports whether err is the "no instance found" usage error.
func IsNotFound(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue) && ue.Msg == MsgNoInstance
}
