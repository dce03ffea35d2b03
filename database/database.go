// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package database wraps LevelDB as the key value store under the local item store.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = leveldb.ErrNotFound

// ErrClosed is returned after Close.
var ErrClosed = errors.New("database closed")

// Batch collects writes applied atomically by Update.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Len() int
}

// Config of a LevelDB database.
type Config struct {
	// Path of the database directory, empty for an in-memory database.
	Path string `mapstructure:"path"`
	// Cache in MiB.
	Cache   int `mapstructure:"cache"`
	Handles int `mapstructure:"handles"`
}

// DefaultConfig returns the default config.
func DefaultConfig() Config {
	return Config{Cache: 16, Handles: 16}
}

// LDBDatabase is a wrapper for leveldb database with concurrent access.
type LDBDatabase struct {
	path   string
	logger *zap.Logger

	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens the database described by cfg.
func Open(cfg Config, logger *zap.Logger) (*LDBDatabase, error) {
	if cfg.Path == "" {
		return NewMemDatabase(), nil
	}
	return NewLDBDatabase(cfg.Path, cfg.Cache, cfg.Handles, logger)
}

// NewLDBDatabase returns a LevelDB wrapped object.
func NewLDBDatabase(path string, cache, handles int, logger *zap.Logger) (*LDBDatabase, error) {
	cache = max(cache, 16)
	handles = max(handles, 16)
	logger.Info("opening database",
		zap.String("path", path),
		zap.Int("cache_size", cache),
		zap.Int("num_handles", handles),
	)
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		logger.Warn("recovering corrupted database", zap.String("path", path), zap.Error(err))
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &LDBDatabase{path: path, logger: logger, db: db}, nil
}

// NewMemDatabase returns a memory database instance.
func NewMemDatabase() *LDBDatabase {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		panic("can't open in-memory leveldb: " + err.Error())
	}
	return &LDBDatabase{logger: zap.NewNop(), db: db}
}

// Path returns the path to the database directory.
func (db *LDBDatabase) Path() string {
	return db.path
}

func (db *LDBDatabase) handle() (*leveldb.DB, func(), error) {
	db.mu.RLock()
	if db.db == nil {
		db.mu.RUnlock()
		return nil, nil, ErrClosed
	}
	return db.db, db.mu.RUnlock, nil
}

// Get returns the value of key, ErrNotFound if missing.
func (db *LDBDatabase) Get(key []byte) ([]byte, error) {
	ldb, release, err := db.handle()
	if err != nil {
		return nil, err
	}
	defer release()
	value, err := ldb.Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("get value: %w", err)
	}
	return value, nil
}

// Has returns whether the db contains the key.
func (db *LDBDatabase) Has(key []byte) (bool, error) {
	ldb, release, err := db.handle()
	if err != nil {
		return false, err
	}
	defer release()
	has, err := ldb.Has(key, nil)
	if err != nil {
		return false, fmt.Errorf("check value: %w", err)
	}
	return has, nil
}

// Put stores value under key.
func (db *LDBDatabase) Put(key, value []byte) error {
	ldb, release, err := db.handle()
	if err != nil {
		return err
	}
	defer release()
	if err := ldb.Put(key, value, nil); err != nil {
		return fmt.Errorf("put value: %w", err)
	}
	return nil
}

// Delete removes key.
func (db *LDBDatabase) Delete(key []byte) error {
	ldb, release, err := db.handle()
	if err != nil {
		return err
	}
	defer release()
	if err := ldb.Delete(key, nil); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

// Iterate calls fn for every key with prefix in key order, until fn returns false.
// key and value are only valid during the call.
func (db *LDBDatabase) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	ldb, release, err := db.handle()
	if err != nil {
		return err
	}
	defer release()
	it := ldb.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	return nil
}

// Update applies the writes collected by fn atomically. Nothing is written if fn fails.
func (db *LDBDatabase) Update(fn func(Batch) error) error {
	var batch leveldb.Batch
	if err := fn(&batch); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	ldb, release, err := db.handle()
	if err != nil {
		return err
	}
	defer release()
	if err := ldb.Write(&batch, nil); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Close closes database, flushing writes and denying all new write requests.
func (db *LDBDatabase) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.db == nil {
		return nil
	}
	err := db.db.Close()
	db.db = nil
	if err != nil {
		db.logger.Error("failed to close database", zap.String("path", db.path), zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}
	db.logger.Info("database closed", zap.String("path", db.path))
	return nil
}
