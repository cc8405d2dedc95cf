package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genezys/custody"
	"github.com/genezys/custody/custodytest"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/store"
)

// writingHandler writes a key before returning its configured result.
type writingHandler struct {
	key, value []byte
	err        error
}

var _ custody.Handler = writingHandler{}

func (h writingHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, h.err
}

func (h writingHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, h.err
}

func TestSavepointRollback(t *testing.T) {
	ctx := context.Background()
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "test/any"}}
	key, value := []byte("app:state"), []byte("dirty")

	cases := map[string]struct {
		decorator custody.Decorator
		handler   custody.Handler
		deliver   bool
		written   bool
	}{
		"commit on deliver success": {
			decorator: NewSavepoint().OnDeliver(),
			handler:   writingHandler{key: key, value: value},
			deliver:   true,
			written:   true,
		},
		"rollback on deliver error": {
			decorator: NewSavepoint().OnDeliver(),
			handler:   writingHandler{key: key, value: value, err: errors.ErrHuman.New("boom")},
			deliver:   true,
			written:   false,
		},
		"rollback on check error": {
			decorator: NewSavepoint().OnCheck(),
			handler:   writingHandler{key: key, value: value, err: errors.ErrHuman.New("boom")},
			deliver:   false,
			written:   false,
		},
		"no savepoint without trigger": {
			decorator: NewSavepoint(),
			handler:   writingHandler{key: key, value: value, err: errors.ErrHuman.New("boom")},
			deliver:   true,
			written:   true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			var err error
			if tc.deliver {
				_, err = tc.decorator.Deliver(ctx, db, tx, handlerAsDeliverer{tc.handler})
			} else {
				_, err = tc.decorator.Check(ctx, db, tx, handlerAsChecker{tc.handler})
			}
			_ = err

			raw, gerr := db.Get(key)
			require.NoError(t, gerr)
			if tc.written {
				assert.Equal(t, value, raw)
			} else {
				assert.Nil(t, raw)
			}
		})
	}
}

type handlerAsChecker struct{ h custody.Handler }

func (c handlerAsChecker) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return c.h.Check(ctx, db, tx)
}

type handlerAsDeliverer struct{ h custody.Handler }

func (d handlerAsDeliverer) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return d.h.Deliver(ctx, db, tx)
}

func TestRecovery(t *testing.T) {
	ctx := context.Background()
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "test/any"}}
	db := store.MemStore()

	panicker := panicHandler{}
	_, err := NewRecovery().Deliver(ctx, db, tx, handlerAsDeliverer{panicker})
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = NewRecovery().Check(ctx, db, tx, handlerAsChecker{panicker})
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
}

type panicHandler struct{}

func (panicHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	panic("kaboom")
}

func (panicHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	panic("kaboom")
}
