package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All
// those error members are directly included into the result set instead
// of including the parent error.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

type multiError []error

var _ error = (multiError)(nil)

func (errs multiError) Error() string {
	switch len(errs) {
	case 0:
		return "<nil>"
	case 1:
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = fmt.Sprintf("\t* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n%s", len(errs), strings.Join(msgs, "\n"))
}

// Unpack implements the unpacker interface.
func (errs multiError) Unpack() []error {
	return errs
}

// Code returns the code of the first error in the set, falling back to
// the external error code for anything not registered. A fail-fast
// execution model means only the first failure ever surfaces.
func (errs multiError) Code() uint32 {
	if len(errs) == 0 {
		return 0
	}
	type coder interface {
		Code() uint32
	}
	if c, ok := errs[0].(coder); ok {
		return c.Code()
	}
	return 1
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if merr, ok := err.(multiError); ok {
		return len(merr) == 0
	}
	return false
}

// unpacker is implemented by errors that wrap several other errors at
// once.
type unpacker interface {
	Unpack() []error
}
