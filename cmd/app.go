package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/database"
	"github.com/szopper/go-szopper/store"
)

const deviceIDFile = "device.id"

var errLocked = errors.New("data dir is used by another szopper process")

// app is the local state a command works on. Only one process may open
// the same data dir.
type app struct {
	logger   *zap.Logger
	deviceID string
	lock     *flock.Flock
	db       *database.LDBDatabase
	store    *store.Store
}

func (c *cli) open() (*app, error) {
	if err := os.MkdirAll(c.cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", c.cfg.DataDir, err)
	}
	lock := flock.New(c.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", c.cfg.LockPath(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", errLocked, c.cfg.DataDir)
	}
	deviceID := c.cfg.DeviceID
	if deviceID == "" {
		if deviceID, err = ensureDeviceID(c.cfg.DataDir); err != nil {
			lock.Unlock()
			return nil, err
		}
	}
	db, err := database.Open(c.cfg.Database, c.logger.Named("db"))
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	a := &app{
		logger:   c.logger.With(zap.String("device", deviceID)),
		deviceID: deviceID,
		lock:     lock,
		db:       db,
		store:    store.New(db, store.WithLogger(c.logger.Named("store"))),
	}
	return a, nil
}

func (a *app) Close() error {
	err := a.db.Close()
	if uerr := a.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}

// ensureDeviceID reads the device id from dir, generating it on first use.
func ensureDeviceID(dir string) (string, error) {
	path := filepath.Join(dir, deviceIDFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if id == "" {
			return "", fmt.Errorf("empty device id in %s", path)
		}
		return id, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read device id: %w", err)
	}
	id := uuid.NewString()
	if err := atomic.WriteFile(path, bytes.NewBufferString(id+"\n")); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}

// withApp runs fn with the opened app and closes it afterwards.
func (c *cli) withApp(fn func(*app) error) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.logger.Warn("failed to close app", zap.Error(err))
		}
	}()
	return fn(a)
}
