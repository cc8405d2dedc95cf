package errors

import (
	"fmt"
	"testing"
)

func TestRegisterDuplicateCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("reusing an error code must panic")
		}
	}()
	// Code 2 belongs to ErrUnauthorized.
	Register(2, "duplicate registration")
}

func TestErrIs(t *testing.T) {
	cases := map[string]struct {
		kind    *Error
		err     error
		wantIs  bool
	}{
		"instance of the same root": {
			kind:   ErrUnauthorized,
			err:    ErrUnauthorized,
			wantIs: true,
		},
		"wrapped root": {
			kind:   ErrUnauthorized,
			err:    Wrap(ErrUnauthorized, "call rejected"),
			wantIs: true,
		},
		"deeply wrapped root": {
			kind:   ErrNotFound,
			err:    Wrap(Wrap(ErrNotFound, "inner"), "outer"),
			wantIs: true,
		},
		"different root": {
			kind:   ErrUnauthorized,
			err:    Wrap(ErrNotFound, "missing"),
			wantIs: false,
		},
		"stdlib error": {
			kind:   ErrUnauthorized,
			err:    fmt.Errorf("stdlib"),
			wantIs: false,
		},
		"nil kind matches nil error": {
			kind:   nil,
			err:    nil,
			wantIs: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantIs {
				t.Fatalf("want %v, got %v", tc.wantIs, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrappedErrorCode(t *testing.T) {
	type coder interface {
		Code() uint32
	}

	err := Wrapf(ErrOverflow, "%d * %d", 1, 2)
	c, ok := err.(coder)
	if !ok {
		t.Fatal("wrapped error must provide a code")
	}
	if got, want := c.Code(), ErrOverflow.Code(); got != want {
		t.Fatalf("want code %d, got %d", want, got)
	}

	external := Wrap(fmt.Errorf("external failure"), "wrapped")
	if got := external.(coder).Code(); got != 1 {
		t.Fatalf("external errors must use the restricted code, got %d", got)
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("too deep")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want ErrPanic, got %+v", err)
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("appending nils must produce nil, got %+v", err)
	}

	err := Append(nil, ErrEmpty, nil, ErrState)
	u, ok := err.(unpacker)
	if !ok {
		t.Fatalf("want a multi error, got %+v", err)
	}
	if n := len(u.Unpack()); n != 2 {
		t.Fatalf("want 2 errors, got %d", n)
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("Price", ErrAmount, "must be positive"),
		Field("Seller", ErrEmpty, ""),
	)

	if errs := FieldErrors(err, "Price"); len(errs) != 1 {
		t.Fatalf("want one Price error, got %v", errs)
	} else if !ErrAmount.Is(errs[0]) {
		t.Fatalf("want ErrAmount, got %+v", errs[0])
	}
	if errs := FieldErrors(err, "FeeRate"); len(errs) != 0 {
		t.Fatalf("want no FeeRate errors, got %v", errs)
	}
}
