package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for a record type stored as JSON
// under a key prefix. Every operation has a transaction-scoped variant so
// several entities can be written in one Badger transaction.
type Entity[T any] struct {
	store    *BadgerStore
	prefix   string
	notFound error
	indexes  []Index[T]
}

// Index defines a secondary index on an entity.
//
// A unique index stores prefix+"idx:"+name+":"+value -> id and rejects a
// second entity with the same value. A multi index stores one key per
// (value, id) pair and is read back with a prefix scan.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
	unique          bool
}

// NewEntity creates a new Entity instance for type T. notFound is returned
// when a lookup misses.
func NewEntity[T any](s *BadgerStore, prefix string, notFound error) *Entity[T] {
	if notFound == nil {
		notFound = ErrNotFound
	}
	return &Entity[T]{
		store:    s,
		prefix:   prefix,
		notFound: notFound,
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen, unique: true})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup
// transformation. The transform is applied to search values before lookup,
// enabling case-insensitive searches.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
		unique:          true,
	})
	return e
}

// WithMultiIndex adds a non-unique secondary index. lookupTransform may be nil.
func (e *Entity[T]) WithMultiIndex(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexBase(name string) string {
	return e.prefix + "idx:" + name + ":"
}

func (e *Entity[T]) indexKey(idx Index[T], value, id string) []byte {
	if idx.unique {
		return []byte(e.indexBase(idx.name) + value)
	}
	return []byte(e.indexBase(idx.name) + value + ":" + id)
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx, value, id), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx, value, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) checkUnique(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		for _, value := range idx.keyGen(entity) {
			_, err := txn.Get(e.indexKey(idx, value, id))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) transform(indexName, value string) (Index[T], string, bool) {
	for _, idx := range e.indexes {
		if idx.name != indexName {
			continue
		}
		if idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
		}
		return idx, value, true
	}
	return Index[T]{}, value, false
}

// createTxn stores a new entity. Returns ErrAlreadyExists if the id or a
// unique index value is taken.
func (e *Entity[T]) createTxn(txn *badger.Txn, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	_, err = txn.Get(e.key(id))
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}

	if err := e.checkUnique(txn, id, entity); err != nil {
		return err
	}
	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, e.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (e *Entity[T]) existsTxn(txn *badger.Txn, id string) (bool, error) {
	_, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateTxn replaces an existing entity and rewrites its index keys.
func (e *Entity[T]) updateTxn(txn *badger.Txn, id string, entity *T) error {
	old, err := e.getTxn(txn, id)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	// Old keys deleted in this txn read as missing, so reused values pass.
	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	if err := e.checkUnique(txn, id, entity); err != nil {
		return err
	}
	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

// deleteTxn removes an entity and its index keys. Missing ids are not an error.
func (e *Entity[T]) deleteTxn(txn *badger.Txn, id string) error {
	entity, err := e.getTxn(txn, id)
	if errors.Is(err, e.notFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := e.deleteIndexes(txn, id, entity); err != nil {
		return err
	}
	if err := txn.Delete(e.key(id)); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// idsByIndexTxn returns the ids stored under an index value, in key order.
func (e *Entity[T]) idsByIndexTxn(txn *badger.Txn, indexName, value string) ([]string, error) {
	idx, value, ok := e.transform(indexName, value)
	if !ok {
		return nil, fmt.Errorf("unknown index %q on %s", indexName, e.prefix)
	}

	if idx.unique {
		item, err := txn.Get([]byte(e.indexBase(indexName) + value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		return []string{string(id)}, nil
	}

	prefix := e.indexBase(indexName) + value + ":"
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		// A longer value sharing this prefix ("a:b" under "a") is skipped.
		if string(it.Item().Key()) != prefix+string(val) {
			continue
		}
		ids = append(ids, string(val))
	}
	return ids, nil
}

func (e *Entity[T]) listTxn(txn *badger.Txn, yield func(*T) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(e.prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
		if strings.HasPrefix(string(it.Item().Key()[len(e.prefix):]), "idx:") {
			continue
		}
		var entity T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		}); err != nil {
			return err
		}
		if !yield(&entity) {
			return nil
		}
	}
	return nil
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.update(func(txn *badger.Txn) error {
		return e.createTxn(txn, id, entity)
	})
}

// Get retrieves an entity by ID.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	return entity, err
}

// GetByIndex retrieves the entity stored under a unique index value.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		ids, err := e.idsByIndexTxn(txn, indexName, value)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return e.notFound
		}
		entity, err = e.getTxn(txn, ids[0])
		return err
	})
	return entity, err
}

// ListByIndex returns every entity stored under an index value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*T
	err := e.store.db.View(func(txn *badger.Txn) error {
		ids, err := e.idsByIndexTxn(txn, indexName, value)
		if err != nil {
			return err
		}
		for _, id := range ids {
			entity, err := e.getTxn(txn, id)
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	return out, err
}

// Update updates an existing entity.
// Returns the entity's not-found error if it does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.update(func(txn *badger.Txn) error {
		return e.updateTxn(txn, id, entity)
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.update(func(txn *badger.Txn) error {
		return e.deleteTxn(txn, id)
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		stopped := false
		err := e.store.db.View(func(txn *badger.Txn) error {
			return e.listTxn(txn, func(entity *T) bool {
				if ctx.Err() != nil {
					return false
				}
				if !yield(entity, nil) {
					stopped = true
					return false
				}
				return true
			})
		})
		if stopped {
			return
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			yield(nil, err)
		}
	}
}
