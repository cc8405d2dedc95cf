/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of model, addressed by a
primary key. Models are stored directly in the KVStore, no
intermediate object layer.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by any entity that can be stored using a
// ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operate on Models.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup is
	// done by the primary key. The result is loaded into the given
	// destination model.
	// This method returns ErrNotFound if the entity does not exist in
	// the database.
	One(db custody.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns whether an entity with given primary key exists,
	// without the cost of loading and deserializing it.
	Has(db custody.ReadOnlyKVStore, key []byte) (bool, error)

	// Put saves given model in the database. The model is validated
	// before it is written.
	Put(db custody.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the
	// database. It returns ErrNotFound if an entity with given key
	// does not exist.
	Delete(db custody.KVStore, key []byte) error
}

// NewModelBucket returns a ModelBucket instance operating on a prefixed
// subspace of the database.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	return &modelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

type modelBucket struct {
	name   string
	prefix []byte
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (mb *modelBucket) dbKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the %q bucket", dest, mb.name)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db custody.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(mb.dbKey(key))
}

func (mb *modelBucket) Put(db custody.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "cannot marshal %T", m)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db custody.KVStore, key []byte) error {
	dbkey := mb.dbKey(key)
	has, err := db.Has(dbkey)
	if err != nil {
		return err
	}
	if !has {
		return errors.Wrapf(errors.ErrNotFound, "no entity in the %q bucket", mb.name)
	}
	return db.Delete(dbkey)
}
