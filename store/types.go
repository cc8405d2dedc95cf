package store

import "github.com/genezys/custody"

// Move references for all storage types into this package
// for shorter names everywhere

type KVStore = custody.KVStore
type ReadOnlyKVStore = custody.ReadOnlyKVStore
type SetDeleter = custody.SetDeleter
type Batch = custody.Batch
type Iterator = custody.Iterator
type CacheableKVStore = custody.CacheableKVStore
type KVCacheWrap = custody.KVCacheWrap
type Model = custody.Model
